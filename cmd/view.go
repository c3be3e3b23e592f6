package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/logparser"
	"github.com/newhook/playlog/internal/tui"
)

var flagNoMouse bool

var viewCmd = &cobra.Command{
	Use:   "view <file|->",
	Short: "Browse a transcript interactively",
	Long:  `Parse a transcript and open it in a terminal viewer. Nothing is stored.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	viewCmd.Flags().BoolVar(&flagNoMouse, "no-mouse", false, "disable mouse support in the viewer")
}

func runView(cmd *cobra.Command, args []string) error {
	raw, err := readTranscript(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	res := logparser.Parse(raw)
	if !res.Success {
		return res.Failure
	}

	title := "stdin"
	if args[0] != "-" {
		title = filepath.Base(args[0])
	}
	return tui.Run(title, res, !flagNoMouse)
}
