package logparser

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// JSONBlockLookahead caps how many lines a multi-line "=> {" block may span.
	JSONBlockLookahead = 100
	// MsgFallbackLookahead caps the raw "msg" search after a failed result line.
	MsgFallbackLookahead = 50
)

const arrowMarker = "=> {"

var msgPattern = regexp.MustCompile(`"msg":\s*"((?:[^"\\]|\\.)*)"`)

// msgStrategy looks for a failure message anchored at lines[i].
type msgStrategy func(lines []string, i int) (string, bool)

var msgStrategies = []msgStrategy{
	inlineMsg,
	blockMsg,
	nextLineMsg,
	fallbackMsg,
}

// ExtractFailureMessage recovers a human readable message for the failed or fatal
// result at lines[i]. It returns "" when nothing could be recovered.
func ExtractFailureMessage(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	for _, strategy := range msgStrategies {
		if msg, ok := strategy(lines, i); ok {
			return msg
		}
	}
	return ""
}

// inlineMsg parses a complete JSON object after "=> " on the result line.
func inlineMsg(lines []string, i int) (string, bool) {
	fragment, ok := arrowFragment(lines[i])
	if !ok {
		return "", false
	}
	return msgFromJSON(fragment)
}

// blockMsg joins the fragment on the result line with the lines that follow it,
// up to the brace that closes the object.
func blockMsg(lines []string, i int) (string, bool) {
	fragment, ok := arrowFragment(lines[i])
	if !ok {
		return "", false
	}
	return msgFromJSON(collectBlock(fragment, lines, i+1, i+JSONBlockLookahead))
}

// nextLineMsg handles output where "=> {" starts the line after the result.
func nextLineMsg(lines []string, i int) (string, bool) {
	if i+1 >= len(lines) {
		return "", false
	}
	next := strings.TrimSpace(lines[i+1])
	if !strings.HasPrefix(next, arrowMarker) {
		return "", false
	}
	fragment := strings.TrimSpace(next[len("=> "):])
	return msgFromJSON(collectBlock(fragment, lines, i+2, i+JSONBlockLookahead))
}

// fallbackMsg returns the first raw "msg": "..." value near the result line.
func fallbackMsg(lines []string, i int) (string, bool) {
	end := min(i+MsgFallbackLookahead, len(lines))
	for j := i; j < end; j++ {
		line := strings.TrimSpace(lines[j])
		if strings.HasPrefix(line, "TASK [") || strings.HasPrefix(line, "PLAY [") || strings.HasPrefix(line, handlerHeader) {
			break
		}
		if m := msgPattern.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func arrowFragment(line string) (string, bool) {
	idx := strings.Index(line, arrowMarker)
	if idx == -1 {
		return "", false
	}
	return strings.TrimSpace(line[idx+len("=> "):]), true
}

// collectBlock appends trimmed lines[from:end) to first until the braces opened by first
// are balanced again.
func collectBlock(first string, lines []string, from, end int) string {
	parts := []string{first}
	depth := braceDepth(first, 0)
	end = min(end, len(lines))
	for j := from; j < end && depth > 0; j++ {
		line := strings.TrimSpace(lines[j])
		parts = append(parts, line)
		depth = braceDepth(line, depth)
	}
	return strings.Join(parts, "\n")
}

// braceDepth adjusts depth by the braces in s that sit outside JSON strings.
func braceDepth(s string, depth int) int {
	inString, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{':
			depth++
		case r == '}':
			depth--
		}
	}
	return depth
}

// msgFromJSON reads the msg field of a JSON object. A list of strings is joined with
// newlines and any other non-string value is returned as its JSON text.
func msgFromJSON(text string) (string, bool) {
	if !gjson.Valid(text) {
		return "", false
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return "", false
	}
	msg := doc.Get("msg")
	if !msg.Exists() {
		return "", false
	}

	var out string
	if msg.IsArray() {
		items := msg.Array()
		parts := make([]string, len(items))
		for k, item := range items {
			parts[k] = item.String()
		}
		out = strings.Join(parts, "\n")
	} else {
		out = msg.String()
	}
	return out, out != ""
}
