package search

import (
	"context"
	"strings"

	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/resultline"
)

// ContentResult is the outcome of a content search
type ContentResult struct {
	Matches    []resultline.Match `json:"matches"`
	Warnings   []string           `json:"warnings,omitempty"`
	Diagnostic string             `json:"diagnostic,omitempty"`
}

// Flags that only make sense for line output; stripped before reusing
// caller rg flags with --files enumeration.
var lineOnlyFlags = map[string]bool{
	"-n":              true,
	"--line-number":   true,
	"-H":              true,
	"--with-filename": true,
	"--no-heading":    true,
}

// Content emits every line under the request root through the
// enumerator and fuzzy-filters the stream. By default the filter
// matches on path and content fields, never on line numbers;
// ContentOnly narrows matching to content alone.
func (s *Service) Content(ctx context.Context, req Request) (*ContentResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	s.applyDefaults(&req)
	rg, err := s.requireRg()
	if err != nil {
		return nil, err
	}
	fzf, err := s.requireFzf()
	if err != nil {
		return nil, err
	}

	root := req.root()
	limit := s.cfg.ClampLimit(req.Limit)
	warnings := s.warningsFor(req.Filter)

	if req.Multiline {
		var extra []string
		for _, flag := range strings.Fields(req.RgFlags) {
			if !lineOnlyFlags[flag] {
				extra = append(extra, flag)
			}
		}
		records, err := s.multilineRecords(ctx, rg, root, req.Hidden, extra)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return &ContentResult{Matches: []resultline.Match{}, Warnings: warnings}, nil
		}

		out, err := pipeline.Filter(ctx, pipeline.Stage{
			Path: fzf,
			Args: []string{"--filter", req.Filter, "--read0", "--print0"},
		}, records)
		if err != nil {
			return nil, err
		}

		matches := s.multilineMatches(out, limit)
		return &ContentResult{Matches: matches, Warnings: warnings}, nil
	}

	enumArgs := []string{"--line-number", "--no-heading", "--color=never"}
	if req.Hidden {
		enumArgs = append(enumArgs, "--hidden")
	}
	enumArgs = append(enumArgs, strings.Fields(req.RgFlags)...)
	enumArgs = append(enumArgs, s.globArgs()...)
	enumArgs = append(enumArgs, ".", root)

	// Field 2 is the line number; it never participates in matching
	nth := "--nth=1,3.."
	if req.ContentOnly {
		nth = "--nth=3.."
	}

	out, err := pipeline.Run(ctx,
		pipeline.Stage{Path: rg, Args: enumArgs},
		pipeline.Stage{Path: fzf, Args: []string{"--filter", req.Filter, "--delimiter", ":", nth}},
	)
	if err != nil {
		return nil, err
	}

	matches := []resultline.Match{}
	dropped := 0
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		m, ok := resultline.Parse(line)
		if !ok {
			dropped++
			continue
		}
		matches = append(matches, m)
		if len(matches) == limit {
			break
		}
	}
	if dropped > 0 {
		s.logf("content search dropped %d unparseable result lines", dropped)
	}

	res := &ContentResult{Matches: matches, Warnings: warnings}
	if len(matches) == 0 {
		res.Diagnostic = s.diagnose(ctx, rg, enumArgs, req.Filter, "lines")
	}
	return res, nil
}
