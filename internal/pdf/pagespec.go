package pdf

import (
	"fmt"
	"strconv"
	"strings"

	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
)

// PageRef is one resolved page: a 0-based index plus the label shown
// to the caller (roman numerals survive, physical numbers otherwise).
type PageRef struct {
	Index int
	Label string
}

// ParsePages resolves a comma-separated page specification against a
// document of pageCount pages. Tokens are physical page numbers
// ("14"), roman-numeral labels ("v", "xii"), or inclusive ranges of
// either ("1-5", "v-vii"). Duplicates are dropped, order preserved.
func ParsePages(spec string, pageCount int) ([]PageRef, error) {
	var refs []PageRef
	seen := make(map[int]bool)

	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		resolved, err := parseToken(tok, pageCount)
		if err != nil {
			return nil, err
		}
		for _, r := range resolved {
			if !seen[r.Index] {
				seen[r.Index] = true
				refs = append(refs, r)
			}
		}
	}

	if len(refs) == 0 {
		return nil, fzerrors.NewBadRequest("pages").WithReason("no valid pages specified")
	}
	return refs, nil
}

func parseToken(tok string, pageCount int) ([]PageRef, error) {
	if start, end, isRange := strings.Cut(tok, "-"); isRange {
		lo, loRoman, ok := resolvePage(strings.TrimSpace(start), pageCount)
		if !ok {
			return nil, invalidSpec(tok)
		}
		hi, hiRoman, ok := resolvePage(strings.TrimSpace(end), pageCount)
		if !ok || hi < lo {
			return nil, invalidSpec(tok)
		}
		roman := loRoman && hiRoman
		refs := make([]PageRef, 0, hi-lo+1)
		for n := lo; n <= hi; n++ {
			refs = append(refs, PageRef{Index: n - 1, Label: pageLabel(n, roman)})
		}
		return refs, nil
	}

	n, roman, ok := resolvePage(tok, pageCount)
	if !ok {
		return nil, invalidSpec(tok)
	}
	return []PageRef{{Index: n - 1, Label: pageLabel(n, roman)}}, nil
}

// resolvePage turns a single token into a 1-based page number. The
// second result reports whether the token was a roman numeral.
func resolvePage(tok string, pageCount int) (int, bool, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n < 1 || n > pageCount {
			return 0, false, false
		}
		return n, false, true
	}
	if n, ok := romanValue(tok); ok {
		if n < 1 || n > pageCount {
			return 0, false, false
		}
		return n, true, true
	}
	return 0, false, false
}

func pageLabel(n int, roman bool) string {
	if roman {
		return strings.ToLower(toRoman(n))
	}
	return strconv.Itoa(n)
}

func invalidSpec(tok string) error {
	return fzerrors.NewBadRequest("pages").WithReason(fmt.Sprintf(
		"invalid page specification %q, not a page label or valid page number", tok))
}

var romanDigits = map[byte]int{
	'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000,
}

// romanValue parses a roman numeral, case-insensitive. Validation is
// round-trip: the value must render back to the same numeral, which
// rejects malformed sequences like "iiii" or "vx".
func romanValue(s string) (int, bool) {
	lower := strings.ToLower(s)
	total := 0
	for i := 0; i < len(lower); i++ {
		v, ok := romanDigits[lower[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(lower) {
			if next, ok := romanDigits[lower[i+1]]; ok && next > v {
				total -= v
				continue
			}
		}
		total += v
	}
	if total <= 0 || strings.ToLower(toRoman(total)) != lower {
		return 0, false
	}
	return total, true
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
