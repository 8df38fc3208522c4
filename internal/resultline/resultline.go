// Package resultline parses the "path:line:content" lines emitted by
// the search pipeline into structured matches.
package resultline

import (
	"strconv"
	"strings"
)

// Match is one structured search hit
type Match struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Content string `json:"content"`
}

// NormalizePath rewrites backslashes to forward slashes so output
// carries a single canonical separator. Idempotent.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// grammar is one total parse function for a line shape. Variants are
// tried in registration order; the first success wins.
type grammar func(line string) (Match, bool)

// Drive-letter paths embed a colon ("C:\x\f.py:10:text"), so that
// shape is tried before the plain unix split regardless of host OS;
// ranked output may have been produced on a different machine.
var grammars = []grammar{parseDriveLetter, parseUnix}

// Parse extracts a Match from one pipeline output line. It is total:
// malformed lines return ok=false and are skipped by the caller.
func Parse(line string) (Match, bool) {
	for _, g := range grammars {
		if m, ok := g(line); ok {
			return m, true
		}
	}
	return Match{}, false
}

func parseDriveLetter(line string) (Match, bool) {
	if len(line) < 2 || line[1] != ':' || !isASCIIAlpha(line[0]) {
		return Match{}, false
	}
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return Match{}, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return Match{}, false
	}
	return Match{
		File:    NormalizePath(parts[0] + ":" + parts[1]),
		Line:    n,
		Content: strings.TrimSpace(parts[3]),
	}, true
}

func parseUnix(line string) (Match, bool) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 3 {
		return Match{}, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return Match{}, false
	}
	return Match{
		File:    NormalizePath(parts[0]),
		Line:    n,
		Content: strings.TrimSpace(parts[2]),
	}, true
}

func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
