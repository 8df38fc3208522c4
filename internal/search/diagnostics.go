package search

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/query"
)

// diagnose explains an empty result by re-running the enumerator
// alone: zero candidate lines means the path is wrong, anything else
// means the filter was too strict. noun is "files" or "lines".
func (s *Service) diagnose(ctx context.Context, rg string, enumArgs []string, filter, noun string) string {
	out, err := pipeline.Output(ctx, pipeline.Stage{Path: rg, Args: enumArgs}, 0, 1)
	if err != nil {
		// Diagnostics are best effort; the empty result already stands
		s.logf("diagnostic enumerator re-run failed: %v", err)
		return ""
	}

	count := countLines(out)
	if count == 0 {
		return fmt.Sprintf("no %s found, check that the search path exists", noun)
	}

	msg := fmt.Sprintf("%d %s found but the fuzzy filter matched none of them", count, noun)
	if v := query.Classify(filter); v.LooksLikeRegex {
		msg += fmt.Sprintf(". The filter looks like a regex; try: %q", v.SuggestedRewrite)
	}
	return msg
}

func countLines(out []byte) int {
	count := 0
	for _, line := range bytes.Split(out, []byte{'\n'}) {
		if len(line) > 0 {
			count++
		}
	}
	return count
}
