// Package query inspects filter strings for likely regex misuse. The
// fuzzy filter language is not regex, and agents routinely send regex
// anyway; the classifier flags those filters and proposes a rewrite.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// FallbackHint is suggested when no usable terms survive the rewrite
const FallbackHint = "try using space-separated words"

// Verdict is the classifier's judgment for a single filter string
type Verdict struct {
	LooksLikeRegex   bool
	SuggestedRewrite string
}

var (
	bracketClass    = regexp.MustCompile(`\[.+\]`)
	braceQuantifier = regexp.MustCompile(`\{\d+,?\d*\}`)
	capturingGroup  = regexp.MustCompile(`\(.+\)`)
)

// Classify decides whether filter is regex-shaped and, if so, derives
// a best-effort rewrite into space-separated fuzzy terms. Pure string
// function; advisory only, the caller still runs the original filter.
func Classify(filter string) Verdict {
	if !looksLikeRegex(filter) {
		return Verdict{}
	}
	return Verdict{
		LooksLikeRegex:   true,
		SuggestedRewrite: suggestTerms(filter),
	}
}

func looksLikeRegex(text string) bool {
	if strings.Contains(text, ".*") || strings.Contains(text, ".+") {
		return true
	}
	// Any backslash: escape sequences like \w \d \s \. all count
	if strings.Contains(text, `\`) {
		return true
	}
	if strings.Contains(text, "(?") {
		return true
	}
	if bracketClass.MatchString(text) {
		return true
	}
	if braceQuantifier.MatchString(text) {
		return true
	}
	if capturingGroup.MatchString(text) {
		return true
	}
	// Anchors at the string edges read as regex intent; interior ^ and $
	// are legitimate fuzzy-syntax prefix/suffix markers on single terms
	if strings.HasPrefix(text, "^") || strings.HasSuffix(text, "$") {
		return true
	}
	return false
}

var (
	wildcards       = regexp.MustCompile(`\.[*+]`)
	escapedSpace    = regexp.MustCompile(`\\s\+?`)
	escapedClass    = regexp.MustCompile(`\\[wd]\+?`)
	escapedDot      = regexp.MustCompile(`\\\.`)
	bracketChars    = regexp.MustCompile(`[\[\]\(\)\{\}]`)
	leftoverEscapes = regexp.MustCompile(`\\.?`)
	multiSpace      = regexp.MustCompile(`\s+`)
	wordRun         = regexp.MustCompile(`\w+`)
)

// suggestTerms strips regex syntax out of pattern, leaving whatever
// literal terms the author probably meant.
func suggestTerms(pattern string) string {
	fuzzy := pattern
	fuzzy = wildcards.ReplaceAllString(fuzzy, " ")
	fuzzy = escapedSpace.ReplaceAllString(fuzzy, " ")
	fuzzy = escapedClass.ReplaceAllString(fuzzy, "")
	fuzzy = escapedDot.ReplaceAllString(fuzzy, "")
	fuzzy = braceQuantifier.ReplaceAllString(fuzzy, "")
	fuzzy = bracketChars.ReplaceAllString(fuzzy, "")
	fuzzy = leftoverEscapes.ReplaceAllString(fuzzy, "")
	fuzzy = strings.TrimPrefix(fuzzy, "^")
	fuzzy = strings.TrimSuffix(fuzzy, "$")
	fuzzy = strings.ReplaceAll(fuzzy, "_", " ")
	fuzzy = strings.TrimSpace(multiSpace.ReplaceAllString(fuzzy, " "))

	if fuzzy == "" {
		// Last resort: pull out whatever word runs the pattern contains
		words := wordRun.FindAllString(pattern, -1)
		fuzzy = strings.Join(words, " ")
	}
	if fuzzy == "" {
		return FallbackHint
	}
	return fuzzy
}

// Warning formats the user-facing regex-misuse warning for a flagged
// filter. Callers attach it to results without blocking the search.
func Warning(filter string, v Verdict) string {
	return fmt.Sprintf(
		"The 'filter' parameter contains regex-like patterns (%q). "+
			"This parameter expects fzf fuzzy search terms, not regex. Try: %q",
		filter, v.SuggestedRewrite)
}
