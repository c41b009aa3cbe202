package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lexcodex/pqlsp/app/pqlsp/runtime"
)

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the function signature library",
	}
	cmd.AddCommand(newLibraryImportCmd(), newLibraryListCmd(), newLibraryRemoveCmd())
	return cmd
}

func newLibraryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalogue.yaml>",
		Short: "Copy a YAML catalogue into the SQLite library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				n, err := rt.ImportCatalogue(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d signatures\n", n)
				return nil
			})
		},
	}
}

func newLibraryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [substring]",
		Short: "List signatures stored in the SQLite library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter string
			if len(args) == 1 {
				filter = args[0]
			}
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				store, err := rt.OpenStore()
				if err != nil {
					return err
				}
				sigs, err := store.List(ctx, filter)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, sig := range sigs {
					fmt.Fprintf(tw, "%s\t%s\n", sig.Name, sig.Label())
				}
				return tw.Flush()
			})
		},
	}
}

func newLibraryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a signature from the SQLite library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				store, err := rt.OpenStore()
				if err != nil {
					return err
				}
				return store.DeleteFunction(ctx, args[0])
			})
		},
	}
}
