package logparser

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// TimestampLayout is the time layout of the ansible log_path prefix.
const TimestampLayout = "2006-01-02 15:04:05,000"

const timestampSeparator = " | "

var (
	// timestampPattern matches the ansible log_path line prefix.
	// Format: 2024-01-15 10:30:00,123 | ...
	// or:     2024-01-15 10:30:00,123 p=4242 u=deploy n=ansible | ...
	timestampPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3})(?: p=\d+ u=\S* n=\S+)? \|`)
)

// Normalize converts every line ending to \n and removes ANSI colour codes.
// It returns false if nothing but whitespace remains.
func Normalize(content string) (string, bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	if strings.Contains(content, "\x1b") {
		content = ansi.Strip(content)
	}
	return content, strings.TrimSpace(content) != ""
}

// DetectFormat classifies content by its first non-blank line.
func DetectFormat(content string) Format {
	for line := range strings.SplitSeq(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if timestampPattern.MatchString(strings.TrimSpace(line)) {
			return FormatTimestamped
		}
		return FormatRaw
	}
	return FormatRaw
}

// StripTimestamps removes the log_path prefix from each line.
// Input:  "2024-01-15 10:30:00,000 | TASK [ping]"
// Output: "TASK [ping]"
// Lines without the prefix, or without a separator after it, are kept as they are.
func StripTimestamps(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !timestampPattern.MatchString(line) {
			continue
		}
		if idx := strings.Index(line, timestampSeparator); idx != -1 {
			lines[i] = line[idx+len(timestampSeparator):]
		}
	}
	return strings.Join(lines, "\n")
}

// RunTimestamp returns the time of the last prefixed line, or nil if there is none.
func RunTimestamp(content string) *time.Time {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		m := timestampPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		ts, err := time.ParseInLocation(TimestampLayout, m[1], time.UTC)
		if err != nil {
			continue
		}
		return &ts
	}
	return nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
