// Package cli wires the reflow engine to a command-line entry point. It is
// one of the external collaborators of spec.md §1 ("command-line entry")
// and never itself makes scheduling decisions.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/compozy/reflow/pkg/logger"
)

// RootCmd builds the `reflow` root command.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reflow",
		Short: "Finite-capacity production schedule reflow engine",
		Long: "reflow repairs an existing work-order schedule under disruptions by pushing " +
			"affected work orders forward to the earliest feasible time that satisfies every " +
			"hard constraint (dependencies, shift calendars, maintenance windows).",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	root.PersistentFlags().String("log-level", "info", "Logger verbosity: silent|info|debug")
	root.PersistentFlags().Bool("verbose", false, "Shorthand for --log-level=debug")
	root.PersistentFlags().String("config", "", "Path to an optional config file (only its log-level key is read)")

	root.AddCommand(RunCmd())
	return root
}

func initConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("REFLOW")
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	level := v.GetString("log-level")
	if level == "" {
		level, _ = cmd.Flags().GetString("log-level")
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}

	cfg := logger.DefaultConfig()
	cfg.Output = os.Stderr
	switch level {
	case "silent":
		cfg.Level = logger.DisabledLevel
	case "debug":
		cfg.Level = logger.DebugLevel
	default:
		cfg.Level = logger.InfoLevel
	}
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(logger.ContextWithLogger(base, logger.NewLogger(cfg)))
	return nil
}

// Execute runs the CLI, printing errors and returning a process exit status.
func Execute() int {
	if err := RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
