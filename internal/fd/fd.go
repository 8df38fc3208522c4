// Package fd wraps the fd file finder: exact pattern search, and a
// fuzzy filter mode that pipes fd's output through fzf.
package fd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fzmcp/fzmcp/internal/config"
	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/query"
	"github.com/fzmcp/fzmcp/internal/resultline"
	"github.com/fzmcp/fzmcp/internal/search"
	"github.com/fzmcp/fzmcp/internal/toolbin"
)

// Service runs fd-based searches with resolved binary paths
type Service struct {
	tools *toolbin.Toolset
	cfg   *config.Config
}

// NewService creates an fd search service
func NewService(tools *toolbin.Toolset, cfg *config.Config) *Service {
	return &Service{tools: tools, cfg: cfg}
}

// Result is the outcome of either fd tool
type Result struct {
	Matches  []string `json:"matches"`
	Warnings []string `json:"warnings,omitempty"`
}

// SearchRequest is an exact-pattern file search
type SearchRequest struct {
	Pattern string
	Path    string
	Flags   string
}

// FilterRequest is a fuzzy file-name search, optionally over contents
type FilterRequest struct {
	Filter    string
	Pattern   string
	Path      string
	First     bool
	FdFlags   string
	FzfFlags  string
	Multiline bool
}

// Search returns every path matching the fd pattern. The pattern is
// fd's own regex/glob language, passed through untouched.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*Result, error) {
	if req.Pattern == "" {
		return nil, fzerrors.NewBadRequest("pattern")
	}
	fd, err := toolbin.Require(s.tools.Fd, "fd")
	if err != nil {
		return nil, err
	}

	args := strings.Fields(req.Flags)
	args = append(args, req.Pattern, root(req.Path))

	out, err := pipeline.Output(ctx, pipeline.Stage{Path: fd, Args: args})
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, p := range strings.Split(string(out), "\n") {
		if p != "" {
			matches = append(matches, resultline.NormalizePath(p))
		}
	}
	return &Result{Matches: matches}, nil
}

// Filter pipes fd's file list through fzf in headless filter mode.
// Multiline mode fuzzy-matches whole file contents instead of names
// and returns raw NUL-framed records.
func (s *Service) Filter(ctx context.Context, req FilterRequest) (*Result, error) {
	if req.Filter == "" {
		return nil, fzerrors.NewBadRequest("filter")
	}
	fd, err := toolbin.Require(s.tools.Fd, "fd")
	if err != nil {
		return nil, err
	}
	fzf, err := toolbin.Require(s.tools.Fzf, "fzf")
	if err != nil {
		return nil, err
	}

	var warnings []string
	if v := query.Classify(req.Filter); v.LooksLikeRegex {
		warnings = append(warnings, query.Warning(req.Filter, v))
	}

	fdArgs := strings.Fields(req.FdFlags)
	if req.Pattern != "" {
		fdArgs = append(fdArgs, req.Pattern)
	}
	fdArgs = append(fdArgs, root(req.Path))

	var matches []string
	if req.Multiline {
		list, err := pipeline.Output(ctx, pipeline.Stage{Path: fd, Args: fdArgs})
		if err != nil {
			return nil, err
		}
		var paths []string
		for _, p := range strings.Split(string(list), "\n") {
			if p != "" {
				paths = append(paths, p)
			}
		}
		records, err := search.BuildNulRecords(ctx, paths)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return &Result{Matches: []string{}, Warnings: warnings}, nil
		}

		fzfArgs := []string{"--filter", req.Filter, "--read0", "--print0"}
		fzfArgs = append(fzfArgs, strings.Fields(req.FzfFlags)...)
		out, err := pipeline.Filter(ctx, pipeline.Stage{Path: fzf, Args: fzfArgs}, records)
		if err != nil {
			return nil, err
		}
		matches = search.SplitNulRecords(out)
	} else {
		fzfArgs := []string{"--filter", req.Filter}
		fzfArgs = append(fzfArgs, strings.Fields(req.FzfFlags)...)

		out, err := pipeline.Run(ctx,
			pipeline.Stage{Path: fd, Args: fdArgs},
			pipeline.Stage{Path: fzf, Args: fzfArgs},
			0)
		if err != nil {
			return nil, err
		}

		matches = []string{}
		for _, p := range strings.Split(string(out), "\n") {
			if p != "" {
				matches = append(matches, resultline.NormalizePath(p))
			}
		}
	}

	if req.First && len(matches) > 1 {
		matches = matches[:1]
	}
	if matches == nil {
		matches = []string{}
	}
	return &Result{Matches: matches, Warnings: warnings}, nil
}

func root(path string) string {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
