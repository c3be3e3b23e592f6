// Package logparser turns the console transcript of an ansible-playbook run into
// hosts, plays, and per-host task results.
//
// Two transcript shapes are understood: raw stdout and the timestamped log written
// when log_path is set. Parsing is pure and safe for concurrent use.
package logparser

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// DefaultPreviewChars is the number of input runes kept in a Failure preview.
const DefaultPreviewChars = 500

// Options tune Parse.
type Options struct {
	// PreviewChars bounds Failure.Preview. Zero means DefaultPreviewChars.
	PreviewChars int
}

// Parse parses a transcript with default options.
func Parse(content string) Result {
	return ParseWithOptions(content, Options{})
}

// ParseWithOptions detects the transcript format and extracts its run record.
// It never panics: every input yields either a successful Result or one whose
// Failure is EmptyContent, NoHostsFound, or UnexpectedFailure.
func ParseWithOptions(content string, opts Options) (res Result) {
	previewChars := opts.PreviewChars
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}

	var format Format
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Format: format,
				Failure: &Failure{
					Kind:    ErrUnexpectedFailure,
					Detail:  fmt.Sprint(r),
					Trace:   string(debug.Stack()),
					Preview: preview(content, previewChars),
				},
			}
		}
	}()

	normalized, ok := Normalize(content)
	if !ok {
		return Result{
			Failure: &Failure{
				Kind:   ErrEmptyContent,
				Detail: "The provided log content is empty or contains only whitespace",
			},
		}
	}

	format = DetectFormat(normalized)

	return assembleFn(normalized, format, content, previewChars)
}

// assembleFn is replaced in tests to exercise panic recovery.
var assembleFn = assemble

func assemble(normalized string, format Format, original string, previewChars int) Result {
	text := normalized
	if format == FormatTimestamped {
		text = StripTimestamps(normalized)
	}
	lines := strings.Split(text, "\n")

	hosts := ExtractRecap(lines)
	if len(hosts) == 0 {
		return Result{
			Format: format,
			Failure: &Failure{
				Kind:    ErrNoHostsFound,
				Detail:  "The parser could not find any PLAY RECAP section",
				Preview: preview(original, previewChars),
			},
		}
	}

	scanner := scanTasks(lines)
	res := Result{
		Success: true,
		Format:  format,
		Hosts:   hosts,
		Plays:   IndexPlays(lines, scanner.plays),
		Tasks:   scanner.result(),
	}
	if format == FormatTimestamped {
		res.Timestamp = RunTimestamp(normalized)
	}
	return res
}
