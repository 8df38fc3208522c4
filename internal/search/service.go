// Package search orchestrates the enumerator/ranker pipelines behind
// every fuzzy search tool and shapes their output into uniform results.
package search

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fzmcp/fzmcp/internal/config"
	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
	"github.com/fzmcp/fzmcp/internal/query"
	"github.com/fzmcp/fzmcp/internal/toolbin"
)

// Service runs fuzzy searches with a fixed set of resolved binaries.
// All state is request-scoped; a Service is safe for concurrent use.
type Service struct {
	tools *toolbin.Toolset
	cfg   *config.Config
	logf  func(format string, args ...any)
}

// NewService creates a search service. logf receives debug messages
// (dropped-line counts, pipeline traces) and may be nil.
func NewService(tools *toolbin.Toolset, cfg *config.Config, logf func(string, ...any)) *Service {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Service{tools: tools, cfg: cfg, logf: logf}
}

// Request carries the caller's search parameters. Filter is required;
// everything else has a usable zero value.
type Request struct {
	Filter      string
	Path        string
	Hidden      bool
	Limit       int
	RgFlags     string
	Multiline   bool
	ContentOnly bool
	FileTypes   string
}

func (r *Request) validate() error {
	if r.Filter == "" {
		return fzerrors.NewBadRequest("fuzzy_filter")
	}
	return nil
}

// root resolves the request path to an absolute search root
func (r *Request) root() string {
	p := r.Path
	if p == "" {
		p = "."
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// applyDefaults folds config-level defaults into a request. Bool
// request fields cannot express "explicitly off", so a configured
// default of true always wins.
func (s *Service) applyDefaults(req *Request) {
	if s.cfg.Search.HiddenByDefault {
		req.Hidden = true
	}
	if s.cfg.Search.MultilineByDefault {
		req.Multiline = true
	}
}

func (s *Service) requireRg() (string, error) {
	return toolbin.Require(s.tools.Rg, "rg")
}

func (s *Service) requireFzf() (string, error) {
	return toolbin.Require(s.tools.Fzf, "fzf")
}

// warningsFor returns the regex-misuse warning list for a filter,
// empty when the filter looks like normal fuzzy syntax.
func (s *Service) warningsFor(filter string) []string {
	v := query.Classify(filter)
	if !v.LooksLikeRegex {
		return nil
	}
	return []string{query.Warning(filter, v)}
}

// globArgs translates configured include/exclude patterns into rg
// --glob flags for the piped modes.
func (s *Service) globArgs() []string {
	var args []string
	for _, p := range s.cfg.Include {
		args = append(args, "--glob", p)
	}
	for _, p := range s.cfg.Exclude {
		args = append(args, "--glob", "!"+p)
	}
	return args
}

// keepPath applies include/exclude patterns to a materialized file
// list in the multiline modes, where no enumerator flag can help.
func (s *Service) keepPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, p := range s.cfg.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(s.cfg.Include) == 0 {
		return true
	}
	for _, p := range s.cfg.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
