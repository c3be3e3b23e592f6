package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import transcripts as they land in a directory",
	Long: `Watch a directory and import every file matching watcher.pattern once it has been
quiet for watcher.debounce_ms. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	importer := ingest.NewImporter(proj.DB, proj.Config.Parser.Options())
	w, err := watcher.New(watcher.Config{
		Dir:         dir,
		Pattern:     proj.Config.Watcher.GetPattern(),
		DebounceDur: proj.Config.Watcher.GetDebounce(),
	}, importer.ImportFile)
	if err != nil {
		return err
	}

	results := w.Broker().Subscribe(ctx)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s for %s\n", dir, proj.Config.Watcher.GetPattern())
	for evt := range results {
		r := evt.Payload
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(out, "imported %s as %s (%d hosts)\n", r.Path, r.Log.ID, len(r.Log.Hosts))
	}
	return nil
}
