package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a playlog project",
	Long: `Create a .playlog/ directory holding a documented config.toml and an empty run database.

Example:
  playlog init
  playlog init ~/runs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	proj, err := project.Create(GetContext(), dir)
	if err != nil {
		return err
	}
	defer proj.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Created project %q at %s\n", proj.Config.Project.Name, proj.Root)
	return nil
}
