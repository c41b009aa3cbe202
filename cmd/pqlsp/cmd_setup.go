package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/pqlsp/app/pqlsp/runtime"
	"github.com/lexcodex/pqlsp/internal/config"
)

func newDoctorCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the parser command and signature catalogues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtime.Runtime) error {
				report := rt.Diagnose(ctx)
				out := cmd.OutOrStdout()
				if asJSON {
					if err := printJSON(out, report); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(out, "workspace: %s\n", report.Workspace)
					fmt.Fprintf(out, "language:  %s\n", report.Language)
					if report.Parser.Error != "" {
						fmt.Fprintf(out, "parser:    %s (%s)\n", report.Parser.Command, report.Parser.Error)
					} else {
						fmt.Fprintf(out, "parser:    %s\n", report.Parser.Path)
					}
					fmt.Fprintf(out, "yaml:      %s (%d functions)\n", report.Library.YAML, report.Library.YAMLFunctions)
					fmt.Fprintf(out, "sqlite:    %s (%d functions)\n", report.Library.SQLite, report.Library.SQLiteFunctions)
					for _, msg := range report.Library.Errors {
						fmt.Fprintf(out, "error:     %s\n", msg)
					}
				}
				if !report.Healthy() {
					return errors.New("environment is not healthy")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the report as JSON")
	return cmd
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := cfg.ConfigPath
			if flagConfig != "" {
				path = flagConfig
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
