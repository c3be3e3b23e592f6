package logparser

import "regexp"

var playPattern = regexp.MustCompile(`PLAY \[([^\]]+)\]`)

// IndexPlays records the first header of each distinct play name, in text order.
// Names in known that never appear as a header are appended with a nil Line so that
// no play is dropped.
func IndexPlays(lines []string, known []string) []Play {
	var plays []Play
	found := make(map[string]bool)

	for i, line := range lines {
		m := playPattern.FindStringSubmatch(line)
		if m == nil || found[m[1]] {
			continue
		}
		found[m[1]] = true
		line := i + 1
		plays = append(plays, Play{Name: m[1], Order: len(plays), Line: &line})
	}

	for _, name := range known {
		if found[name] {
			continue
		}
		found[name] = true
		plays = append(plays, Play{Name: name, Order: len(plays)})
	}

	return plays
}
