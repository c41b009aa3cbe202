package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/app/pqlsp/runtime"
	"github.com/lexcodex/pqlsp/app/pqlsp/tui"
	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/langsvc"
	"github.com/lexcodex/pqlsp/framework/library"
	"github.com/lexcodex/pqlsp/server"
)

// readInput reads a file argument, or stdin when it is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func loadOutline(cmd *cobra.Command, path string) ([]protocol.DocumentSymbol, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	root, err := ast.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return server.BuildOutline(root), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newOutlineCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "outline <tree.json|->",
		Short: "Print the document outline of a parsed syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols, err := loadOutline(cmd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), symbols)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderOutline(symbols))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit LSP DocumentSymbol JSON")
	return cmd
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <tree.json>",
		Short: "Browse the document outline interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols, err := loadOutline(cmd, args[0])
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), filepath.Base(args[0]), symbols)
		},
	}
}

func newSignatureCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "signature <inspected.json|->",
		Short: "Resolve signature help from a cursor inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			inspected, err := inspection.Decode(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				out := cmd.OutOrStdout()
				sc, ok := langsvc.ResolveInvocationContext(inspected)
				if !ok {
					fmt.Fprintln(out, "no active invocation")
					return nil
				}
				if asJSON {
					resp := server.SignatureResponse{Context: sc}
					sig, err := rt.Library.Lookup(ctx, sc.FunctionName)
					switch {
					case err == nil:
						resp.Signature = sig
					case !errors.Is(err, library.ErrNotFound):
						return err
					}
					return printJSON(out, resp)
				}
				help, err := server.BuildSignatureHelp(ctx, rt.Library, inspected)
				if err != nil {
					return err
				}
				if help == nil {
					fmt.Fprintf(out, "%s: no signature in library\n", sc.FunctionName)
					return nil
				}
				info := help.Signatures[0]
				fmt.Fprintln(out, info.Label)
				if int(help.ActiveParameter) < len(info.Parameters) {
					fmt.Fprintf(out, "active parameter: %s\n", info.Parameters[help.ActiveParameter].Label)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the resolved context as JSON")
	return cmd
}
