package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/logparser"
)

const messageWidth = 72

func writeResultSummary(w io.Writer, res logparser.Result) {
	fmt.Fprintf(w, "Format: %s\n", res.Format)
	if res.Timestamp != nil {
		fmt.Fprintf(w, "Run at: %s\n", res.Timestamp.Format(time.RFC3339))
	}

	fmt.Fprintf(w, "\nHosts (%d):\n", len(res.Hosts))
	for _, h := range res.Hosts {
		fmt.Fprintf(w, "  %-24s %-8s %s\n", h.Hostname, h.Status(), formatCounts(h.Counts))
	}

	fmt.Fprintf(w, "\nPlays (%d):\n", len(res.Plays))
	for _, p := range res.Plays {
		fmt.Fprintf(w, "  %-40s line %s\n", p.Name, formatLine(p.Line))
	}

	fmt.Fprintf(w, "\nTasks (%d):\n", len(res.Tasks))
	for _, t := range res.Tasks {
		fmt.Fprintf(w, "  [%s] %s\n", t.Play, t.Name)
		hosts := make([]string, 0, len(t.Results))
		for h := range t.Results {
			hosts = append(hosts, h)
		}
		sort.Strings(hosts)
		for _, h := range hosts {
			writeTaskResult(w, h, t.Results[h].Status, t.Results[h].Message)
		}
	}
}

func writeLogList(w io.Writer, logs []db.LogSummary) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No runs stored")
		return
	}

	fmt.Fprintf(w, "%-36s %-20s %-12s %-6s %s\n", "ID", "UPLOADED", "FORMAT", "HOSTS", "TITLE")
	fmt.Fprintf(w, "%-36s %-20s %-12s %-6s %s\n", "--", "--------", "------", "-----", "-----")
	for _, l := range logs {
		fmt.Fprintf(w, "%-36s %-20s %-12s %-6d %s\n",
			l.ID,
			l.UploadedAt.Local().Format("2006-01-02 15:04:05"),
			l.ParserType,
			l.HostCount,
			truncate.StringWithTail(l.Title, 40, "..."),
		)
	}
}

func writeLogDetail(w io.Writer, log *db.Log, tasks []db.TaskRecord) {
	fmt.Fprintf(w, "%s\n", log.Title)
	fmt.Fprintf(w, "  ID:       %s\n", log.ID)
	fmt.Fprintf(w, "  Uploaded: %s\n", log.UploadedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "  Format:   %s\n", log.ParserType)
	if log.RunTimestamp != nil {
		fmt.Fprintf(w, "  Run at:   %s\n", log.RunTimestamp.Format(time.RFC3339))
	}

	fmt.Fprintf(w, "\nHosts (%d):\n", len(log.Hosts))
	for _, h := range log.Hosts {
		fmt.Fprintf(w, "  %-24s %-8s %s\n", h.Hostname, h.Status, formatCounts(h.Counts))
		for _, p := range h.Plays {
			fmt.Fprintf(w, "    play %-34s line %s\n", p.Name, formatLine(p.Line))
		}
	}

	fmt.Fprintf(w, "\nTasks (%d):\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(w, "  [%s] %s\n", t.Play, t.Name)
		for _, r := range t.Results {
			writeTaskResult(w, r.Hostname, r.Status, r.Message)
		}
	}
}

func writeTaskResult(w io.Writer, host string, status logparser.Status, message string) {
	fmt.Fprintf(w, "    %-12s %s\n", status, host)
	if message == "" {
		return
	}
	fmt.Fprintln(w, indent.String(wordwrap.String(message, messageWidth), 8))
}

func formatCounts(c logparser.Counts) string {
	return fmt.Sprintf("ok=%d changed=%d failed=%d unreachable=%d skipped=%d rescued=%d ignored=%d",
		c.OK, c.Changed, c.Failed, c.Unreachable, c.Skipped, c.Rescued, c.Ignored)
}

func formatLine(line *int) string {
	if line == nil {
		return "-"
	}
	return fmt.Sprint(*line)
}

// slugify turns a run title into a file name stem.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
