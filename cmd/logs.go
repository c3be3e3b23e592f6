package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/ingest"
)

var flagImportTitle string

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Parse a transcript and store the run",
	Long: `Parse an ansible-playbook transcript and store it in the project database.
The title defaults to the file name. Transcripts that fail to parse are not stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	Long:  `List stored runs, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored run",
	Long:  `Show the hosts, plays and tasks of a stored run.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored run",
	Long:  `Delete a stored run together with its hosts, plays and tasks.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	importCmd.Flags().StringVarP(&flagImportTitle, "title", "t", "", "run title (default: file name)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	importer := ingest.NewImporter(proj.DB, proj.Config.Parser.Options())

	var log *db.Log
	switch {
	case flagImportTitle == "" && args[0] != "-":
		log, err = importer.ImportFile(ctx, args[0])
	case flagImportTitle == "":
		return errors.New("--title is required when reading from stdin")
	default:
		raw, readErr := readTranscript(args[0], cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}
		log, err = importer.Import(ctx, flagImportTitle, raw)
	}
	if err != nil {
		var parseErr *ingest.ParseError
		if errors.As(err, &parseErr) && parseErr.Result.Failure != nil && parseErr.Result.Failure.Preview != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Input began with:\n%s\n", parseErr.Result.Failure.Preview)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d hosts, %s)\n", log.ID, len(log.Hosts), log.ParserType)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	logs, err := proj.DB.ListLogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	writeLogList(cmd.OutOrStdout(), logs)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	log, err := proj.DB.GetLog(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", args[0], err)
	}
	tasks, err := proj.DB.ListTasks(ctx, log.ID)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	writeLogDetail(cmd.OutOrStdout(), log, tasks)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	if err := proj.DB.DeleteLog(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
