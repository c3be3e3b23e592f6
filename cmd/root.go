package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/logging"
	"github.com/newhook/playlog/internal/project"
	plsignal "github.com/newhook/playlog/internal/signal"
)

var (
	// rootCtx holds the signal-cancellable context for the application
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// flagProject overrides project discovery from the working directory
	flagProject string
	// flagLogLevel overrides [logging] level for this invocation
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "playlog",
	Short: "Parse and browse ansible-playbook transcripts",
	Long: `playlog parses ansible-playbook output into per-host results, plays and tasks,
stores successful runs in a project database and serves them over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = plsignal.WithSignalCancel(context.Background())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
// This should be used by all subcommands instead of context.Background().
func GetContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// openProject finds the project named by --project, or the one enclosing the working directory.
func openProject(ctx context.Context) (*project.Project, error) {
	proj, err := project.Find(ctx, flagProject)
	if err != nil {
		return nil, fmt.Errorf("not in a project directory: %w", err)
	}
	if flagLogLevel != "" {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			proj.Close()
			return nil, err
		}
		logging.SetLevel(level)
	}
	return proj, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "project directory (default: auto-detect from cwd)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug log level (overrides logging.level)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(viewCmd)
}
