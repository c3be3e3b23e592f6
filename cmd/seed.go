package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/mock"
)

var (
	flagSeedCount       int
	flagSeedSeed        uint64
	flagSeedHosts       int
	flagSeedPlays       int
	flagSeedTasks       int
	flagSeedSerial      int
	flagSeedFailureRate float64
	flagSeedTimestamped bool
	flagSeedOut         string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic runs",
	Long: `Generate synthetic ansible-playbook transcripts. By default the runs are imported
into the project database; with --out they are written as .log files instead, which
is handy for exercising watch.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&flagSeedCount, "count", "n", 5, "number of runs")
	seedCmd.Flags().Uint64Var(&flagSeedSeed, "seed", 1, "random seed")
	seedCmd.Flags().IntVar(&flagSeedHosts, "hosts", 3, "hosts per run")
	seedCmd.Flags().IntVar(&flagSeedPlays, "plays", 2, "plays per run")
	seedCmd.Flags().IntVar(&flagSeedTasks, "tasks", 4, "tasks per play")
	seedCmd.Flags().IntVar(&flagSeedSerial, "serial", 0, "batch size for serial plays (0 runs all hosts together)")
	seedCmd.Flags().Float64Var(&flagSeedFailureRate, "failure-rate", 0.05, "chance a task fails on a host")
	seedCmd.Flags().BoolVar(&flagSeedTimestamped, "timestamped", false, "prefix lines with log timestamps")
	seedCmd.Flags().StringVar(&flagSeedOut, "out", "", "write transcripts to this directory instead of importing")
}

func seedOptions() mock.Options {
	return mock.Options{
		Hosts:        flagSeedHosts,
		Plays:        flagSeedPlays,
		TasksPerPlay: flagSeedTasks,
		Serial:       flagSeedSerial,
		FailureRate:  flagSeedFailureRate,
		Timestamped:  flagSeedTimestamped,
		Start:        time.Now().UTC().Truncate(time.Second),
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	gen := mock.New(flagSeedSeed)
	out := cmd.OutOrStdout()

	if flagSeedOut != "" {
		if err := os.MkdirAll(flagSeedOut, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for i := range flagSeedCount {
			run := gen.Generate(seedOptions())
			path := filepath.Join(flagSeedOut, fmt.Sprintf("%03d-%s.log", i+1, slugify(run.Title)))
			if err := os.WriteFile(path, []byte(run.Content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(out, "wrote %s\n", path)
		}
		return nil
	}

	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	importer := ingest.NewImporter(proj.DB, proj.Config.Parser.Options())
	for range flagSeedCount {
		run := gen.Generate(seedOptions())
		log, err := importer.Import(ctx, run.Title, run.Content)
		if err != nil {
			return fmt.Errorf("failed to import %q: %w", run.Title, err)
		}
		fmt.Fprintf(out, "imported %s %s\n", log.ID, run.Title)
	}
	return nil
}
