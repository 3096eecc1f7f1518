package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tripplanner/pkg/logger"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "tripctl",
		Short: "Operator CLI for the trip planner",
		Long: `tripctl plans trips against the live POI and weather providers,
estimates travel between coordinates and prepares the Postgres schema.

Configuration is read the same way as the server: .env, then the YAML
file named by --config or CONFIG_PATH, then environment overrides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.configPath != "" {
				return os.Setenv("CONFIG_PATH", flags.configPath)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	cmd.AddCommand(newEstimateCmd())
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newMigrateCmd(flags))
	return cmd
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRootCmd().ExecuteContext(ctx)
}

func (f *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr(), f.logLevel, "text")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
