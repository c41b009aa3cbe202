package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/cobra"

	"github.com/lexcodex/pqlsp/app/pqlsp/runtime"
)

// stdio joins the process's stdin and stdout into the stream an LSP client
// speaks over.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error {
	return errors.Join(os.Stdin.Close(), os.Stdout.Close())
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				var opts []jsonrpc2.ConnOpt
				if flagTrace {
					opts = append(opts, jsonrpc2.LogMessages(rt.Logger))
				}
				rt.Logger.Printf("language server %s starting in %s", runtime.Version, rt.Config.Workspace)
				err := rt.LSPServer().ServeStream(ctx, stdio{}, opts...)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

func newAPICmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Serve outline and signature lookups over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				if addr == "" {
					addr = rt.Config.APIAddr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pqlsp API listening on %s\n", addr)
				err := rt.APIServer().ServeContext(ctx, addr)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the language services as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				rt.Logger.Printf("MCP server %s starting", runtime.Version)
				return mcpserver.ServeStdio(rt.MCPServer())
			})
		},
	}
}
