package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/project"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect or change the run database schema",
	Long: `Schema migrations are applied automatically whenever the project is opened.
These subcommands exist for inspection and for stepping back after a bad upgrade.`,
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "List applied schema versions",
			Args:  cobra.NoArgs,
			RunE:  withProject(migrateStatus),
		},
		&cobra.Command{
			Use:   "up",
			Short: "Apply any pending schema versions",
			Args:  cobra.NoArgs,
			RunE:  withProject(migrateUp),
		},
		&cobra.Command{
			Use:   "rollback",
			Short: "Revert the newest applied schema version",
			Args:  cobra.NoArgs,
			RunE:  withProject(migrateRollback),
		},
	)
	rootCmd.AddCommand(migrateCmd)
}

// withProject adapts fn to a cobra RunE that opens and closes the enclosing project.
func withProject(fn func(ctx context.Context, cmd *cobra.Command, proj *project.Project) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := GetContext()
		proj, err := openProject(ctx)
		if err != nil {
			return err
		}
		defer proj.Close()
		return fn(ctx, cmd, proj)
	}
}

func migrateStatus(ctx context.Context, cmd *cobra.Command, proj *project.Project) error {
	versions, err := db.MigrationStatus(ctx, proj.DB.DB)
	if err != nil {
		return fmt.Errorf("failed to read schema versions: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(versions) == 0 {
		fmt.Fprintln(out, "No migrations applied.")
		return nil
	}
	fmt.Fprintf(out, "Applied migrations (%d):\n", len(versions))
	for _, v := range versions {
		fmt.Fprintf(out, "  %s\n", v)
	}
	return nil
}

func migrateUp(ctx context.Context, cmd *cobra.Command, proj *project.Project) error {
	// Opening the project already migrated, so this only matters if files changed underneath.
	if err := db.RunMigrations(ctx, proj.DB.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
	return nil
}

func migrateRollback(ctx context.Context, cmd *cobra.Command, proj *project.Project) error {
	if err := db.RollbackMigration(ctx, proj.DB.DB); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Rolled back one migration.")
	return nil
}
