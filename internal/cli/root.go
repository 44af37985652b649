package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/planboard/internal/tui"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	dataFile   string
	logFile    string
	today      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "planboard",
		Short:        "Terminal dashboard for action plan status reports",
		Long:         `planboard tracks action plans: classify actions as late, on time or done, break them into sub-tasks, chart progress and ask an AI assistant about them.`,
		Version:      "0.1.0",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/planboard/config.yaml)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path")
	flags.StringVar(&opts.dataFile, "data", "", "plan registry YAML file (default: built-in plans)")
	flags.StringVar(&opts.logFile, "log-file", "", "log file path")
	flags.StringVar(&opts.today, "today", "", "reference date YYYY-MM-DD used to classify delays")

	rootCmd.AddCommand(
		newPlansCmd(opts),
		newActionsCmd(opts),
		newExportCmd(opts),
		newAskCmd(opts),
		newSettingsCmd(opts),
		newConfigCmd(opts),
	)
	return rootCmd
}

func runDashboard(cmd *cobra.Command, opts *options) error {
	e, err := newEnv(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer e.Close()

	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	e.logger.Info("starting dashboard", "db", e.cfg.DBPath, "persistent", e.persistent)
	return tui.Run(cmd.Context(), tui.Deps{
		Registry:       e.registry,
		Tasks:          e.tasks,
		Settings:       e.store,
		NewClient:      e.newClient,
		Now:            e.now,
		RequestTimeout: e.cfg.AI.RequestTimeout,
		ExportDir:      exportDir,
		Logger:         e.logger,
	})
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
