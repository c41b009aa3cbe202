package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexcodex/pqlsp/app/pqlsp/runtime"
	"github.com/lexcodex/pqlsp/internal/config"
)

var (
	flagConfig    string
	flagWorkspace string
	flagTrace     bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pqlsp",
		Short:         "Power Query language services: outline and signature help",
		Version:       runtime.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default <workspace>/.pqlsp/config.yaml)")
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "Workspace directory (default current directory)")
	root.PersistentFlags().BoolVar(&flagTrace, "trace", false, "Log every protocol message")

	root.AddCommand(
		newServeCmd(),
		newAPICmd(),
		newMCPCmd(),
		newOutlineCmd(),
		newBrowseCmd(),
		newSignatureCmd(),
		newLibraryCmd(),
		newDoctorCmd(),
		newInitCmd(),
		newConfigCmd(),
	)
	return root
}

// loadConfig resolves the workspace defaults and overlays the config file.
// Only an explicitly requested config file has to exist.
func loadConfig() (config.Config, error) {
	base := config.DefaultConfig()
	if flagWorkspace != "" {
		workspace, err := filepath.Abs(flagWorkspace)
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve workspace: %w", err)
		}
		base = config.ForWorkspace(workspace)
	}
	path := flagConfig
	if path == "" {
		path = base.ConfigPath
	}
	cfg, err := config.Load(path, base)
	if err != nil {
		if os.IsNotExist(err) && flagConfig == "" {
			return base, nil
		}
		return config.Config{}, err
	}
	return cfg, nil
}

func runWithRuntime(cmd *cobra.Command, fn func(context.Context, *runtime.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}
