package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/toolbin"
)

// DocumentMatch is one hit inside a rich document. For PDFs the line
// number reported by the extractor corresponds to a page, so both
// fields carry it.
type DocumentMatch struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Page      int    `json:"page"`
	Content   string `json:"content"`
	MatchText string `json:"match_text"`
}

// DocumentsResult is the outcome of a document search
type DocumentsResult struct {
	Matches  []DocumentMatch `json:"matches"`
	Warnings []string        `json:"warnings,omitempty"`
}

// rgaEvent is the subset of ripgrep-all's JSON-lines output we consume
type rgaEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		LineNumber int `json:"line_number"`
		Lines      struct {
			Text string `json:"text"`
		} `json:"lines"`
	} `json:"data"`
}

// Documents searches PDFs, office documents, and archives through
// ripgrep-all, then fuzzy-filters the extracted text lines.
func (s *Service) Documents(ctx context.Context, req Request) (*DocumentsResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	rga, err := toolbin.Require(s.tools.Rga, "rga")
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

	args := []string{"--json", "--no-heading"}
	for _, ft := range strings.Split(req.FileTypes, ",") {
		if ft = strings.TrimSpace(ft); ft != "" {
			args = append(args, "--rga-adapters", "+"+ft)
		}
	}
	args = append(args, s.globArgs()...)
	args = append(args, ".", root)

	out, err := pipeline.Output(ctx, pipeline.Stage{Path: rga, Args: args}, 0, 1)
	if err != nil {
		return nil, err
	}

	// Reshape the JSON event stream into path:line:text candidates the
	// ranker can score, remembering each candidate's structured form.
	var candidates []string
	byLine := make(map[string]DocumentMatch)
	for _, raw := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		var ev rgaEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil || ev.Type != "match" {
			continue
		}
		text := strings.TrimRight(ev.Data.Lines.Text, "\n")
		formatted := fmt.Sprintf("%s:%d:%s", ev.Data.Path.Text, ev.Data.LineNumber, text)
		candidates = append(candidates, formatted)
		byLine[formatted] = DocumentMatch{
			File:      ev.Data.Path.Text,
			Line:      ev.Data.LineNumber,
			Page:      ev.Data.LineNumber,
			Content:   text,
			MatchText: text,
		}
	}

	if len(candidates) == 0 {
		return &DocumentsResult{Matches: []DocumentMatch{}, Warnings: warnings}, nil
	}

	ranked, err := pipeline.Filter(ctx, pipeline.Stage{
		Path: fzf,
		Args: []string{"--filter", req.Filter},
	}, []byte(strings.Join(candidates, "\n")))
	if err != nil {
		return nil, err
	}

	matches := []DocumentMatch{}
	for _, line := range strings.Split(string(ranked), "\n") {
		if m, ok := byLine[line]; ok {
			matches = append(matches, m)
			if len(matches) == limit {
				break
			}
		}
	}
	return &DocumentsResult{Matches: matches, Warnings: warnings}, nil
}
