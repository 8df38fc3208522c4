package search

import (
	"context"
	"strings"

	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/resultline"
)

// FilesResult is the outcome of a file-path search. Matches keep the
// ranker's best-first order.
type FilesResult struct {
	Matches    []string `json:"matches"`
	Warnings   []string `json:"warnings,omitempty"`
	Diagnostic string   `json:"diagnostic,omitempty"`
}

// Files lists every file under the request root and fuzzy-filters the
// paths. Multiline mode filters whole file contents instead, returning
// one raw record per matching file.
func (s *Service) Files(ctx context.Context, req Request) (*FilesResult, error) {
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
		records, err := s.multilineRecords(ctx, rg, root, req.Hidden, nil)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return &FilesResult{Matches: []string{}, Warnings: warnings}, nil
		}

		out, err := pipeline.Filter(ctx, pipeline.Stage{
			Path: fzf,
			Args: []string{"--filter", req.Filter, "--read0", "--print0"},
		}, records)
		if err != nil {
			return nil, err
		}

		matches := SplitNulRecords(out)
		if len(matches) > limit {
			matches = matches[:limit]
		}
		return &FilesResult{Matches: matches, Warnings: warnings}, nil
	}

	enumArgs := []string{"--files"}
	if req.Hidden {
		enumArgs = append(enumArgs, "--hidden")
	}
	enumArgs = append(enumArgs, s.globArgs()...)
	enumArgs = append(enumArgs, root)

	out, err := pipeline.Run(ctx,
		pipeline.Stage{Path: rg, Args: enumArgs},
		pipeline.Stage{Path: fzf, Args: []string{"--filter", req.Filter}},
	)
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		matches = append(matches, resultline.NormalizePath(line))
		if len(matches) == limit {
			break
		}
	}

	res := &FilesResult{Matches: matches, Warnings: warnings}
	if len(matches) == 0 {
		res.Diagnostic = s.diagnose(ctx, rg, enumArgs, req.Filter, "files")
	}
	return res, nil
}
