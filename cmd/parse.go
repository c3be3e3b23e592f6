package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/logparser"
)

var (
	flagParseJSON    bool
	flagParsePreview int
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse a transcript without storing it",
	Long: `Parse an ansible-playbook transcript and print a summary of hosts, plays and tasks.
Use - to read from stdin and --json to print the full result.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&flagParseJSON, "json", false, "print the full parse result as JSON")
	parseCmd.Flags().IntVar(&flagParsePreview, "preview-chars", logparser.DefaultPreviewChars, "characters of input echoed back on failure")
}

func runParse(cmd *cobra.Command, args []string) error {
	raw, err := readTranscript(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	res := logparser.ParseWithOptions(raw, logparser.Options{PreviewChars: flagParsePreview})

	out := cmd.OutOrStdout()
	if flagParseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else if res.Success {
		writeResultSummary(out, res)
	}

	if !res.Success {
		return res.Failure
	}
	return nil
}

// readTranscript reads path, or stdin when path is "-".
func readTranscript(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}
