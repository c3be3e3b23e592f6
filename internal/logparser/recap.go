package logparser

import (
	"regexp"
	"strconv"
	"strings"
)

const recapHeader = "PLAY RECAP"

// recapLinePattern matches: web1 : ok=3 changed=1 unreachable=0 failed=0 ...
// Only the first field has to look like key=value; parseRecapLine skips the rest it cannot use.
var recapLinePattern = regexp.MustCompile(`^(\S+)\s*:\s*(\S+=.*)$`)

// ExtractRecap parses every PLAY RECAP section. Counts for a hostname that appears
// in more than one section are summed. Hosts are returned in order of first appearance.
func ExtractRecap(lines []string) []Host {
	var order []string
	totals := make(map[string]Counts)

	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), recapHeader) {
			continue
		}

		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		for ; j < len(lines); j++ {
			hostname, counts, ok := parseRecapLine(lines[j])
			if !ok {
				break
			}
			if _, seen := totals[hostname]; !seen {
				order = append(order, hostname)
			}
			totals[hostname] = totals[hostname].Add(counts)
		}
		i = j - 1
	}

	hosts := make([]Host, 0, len(order))
	for _, name := range order {
		hosts = append(hosts, Host{Hostname: name, Counts: totals[name]})
	}
	return hosts
}

// parseRecapLine parses a single recap row. Unknown keys are ignored.
func parseRecapLine(line string) (string, Counts, bool) {
	m := recapLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", Counts{}, false
	}

	var c Counts
	for _, field := range strings.Fields(m[2]) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch key {
		case "ok":
			c.OK = n
		case "changed":
			c.Changed = n
		case "failed":
			c.Failed = n
		case "unreachable":
			c.Unreachable = n
		case "skipped":
			c.Skipped = n
		case "rescued":
			c.Rescued = n
		case "ignored":
			c.Ignored = n
		}
	}
	return m[1], c, true
}
