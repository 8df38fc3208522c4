package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fzmcp/fzmcp/internal/fd"
	"github.com/fzmcp/fzmcp/internal/pdf"
	"github.com/fzmcp/fzmcp/internal/query"
	"github.com/fzmcp/fzmcp/internal/search"
)

// fuzzySearchParams covers the three fuzzy tools; unused fields keep
// their zero values for the tools that do not accept them.
type fuzzySearchParams struct {
	FuzzyFilter string `json:"fuzzy_filter"`
	Path        string `json:"path"`
	Hidden      bool   `json:"hidden"`
	Limit       int    `json:"limit"`
	RgFlags     string `json:"rg_flags"`
	Multiline   bool   `json:"multiline"`
	ContentOnly bool   `json:"content_only"`
	FileTypes   string `json:"file_types"`
}

func (p fuzzySearchParams) request() search.Request {
	return search.Request{
		Filter:      p.FuzzyFilter,
		Path:        p.Path,
		Hidden:      p.Hidden,
		Limit:       p.Limit,
		RgFlags:     p.RgFlags,
		Multiline:   p.Multiline,
		ContentOnly: p.ContentOnly,
		FileTypes:   p.FileTypes,
	}
}

// filterWarnings recomputes the regex-misuse warning so error
// responses can carry it even though the service call failed.
func filterWarnings(filter string) []string {
	if v := query.Classify(filter); v.LooksLikeRegex {
		return []string{query.Warning(filter, v)}
	}
	return nil
}

func (s *Server) handleFuzzySearchFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p fuzzySearchParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(err)
	}

	res, err := s.searcher.Files(ctx, p.request())
	if err != nil {
		s.diagnosticLogger.Printf("fuzzy_search_files failed: %v", err)
		return createErrorResponse(err, filterWarnings(p.FuzzyFilter)...)
	}
	return createJSONResponse(res)
}

func (s *Server) handleFuzzySearchContent(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p fuzzySearchParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(err)
	}

	res, err := s.searcher.Content(ctx, p.request())
	if err != nil {
		s.diagnosticLogger.Printf("fuzzy_search_content failed: %v", err)
		return createErrorResponse(err, filterWarnings(p.FuzzyFilter)...)
	}
	return createJSONResponse(res)
}

func (s *Server) handleFuzzySearchDocuments(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p fuzzySearchParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(err)
	}

	res, err := s.searcher.Documents(ctx, p.request())
	if err != nil {
		s.diagnosticLogger.Printf("fuzzy_search_documents failed: %v", err)
		return createErrorResponse(err, filterWarnings(p.FuzzyFilter)...)
	}
	return createJSONResponse(res)
}

type searchFilesParams struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
	Flags   string `json:"flags"`
}

func (s *Server) handleSearchFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p searchFilesParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(err)
	}

	res, err := s.finder.Search(ctx, fd.SearchRequest{
		Pattern: p.Pattern,
		Path:    p.Path,
		Flags:   p.Flags,
	})
	if err != nil {
		s.diagnosticLogger.Printf("search_files failed: %v", err)
		return createErrorResponse(err)
	}
	return createJSONResponse(res)
}

type filterFilesParams struct {
	Filter    string `json:"filter"`
	Pattern   string `json:"pattern"`
	Path      string `json:"path"`
	First     bool   `json:"first"`
	FdFlags   string `json:"fd_flags"`
	FzfFlags  string `json:"fzf_flags"`
	Multiline bool   `json:"multiline"`
}

func (s *Server) handleFilterFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p filterFilesParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(err)
	}

	res, err := s.finder.Filter(ctx, fd.FilterRequest{
		Filter:    p.Filter,
		Pattern:   p.Pattern,
		Path:      p.Path,
		First:     p.First,
		FdFlags:   p.FdFlags,
		FzfFlags:  p.FzfFlags,
		Multiline: p.Multiline,
	})
	if err != nil {
		s.diagnosticLogger.Printf("filter_files failed: %v", err)
		return createErrorResponse(err, filterWarnings(p.Filter)...)
	}
	return createJSONResponse(res)
}

type extractPDFParams struct {
	File           string `json:"file"`
	Pages          string `json:"pages"`
	Format         string `json:"format"`
	PreserveLayout bool   `json:"preserve_layout"`
	CleanHTML      *bool  `json:"clean_html"`
}

func (s *Server) handleExtractPDFPages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p extractPDFParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(err)
	}

	cleanHTML := true
	if p.CleanHTML != nil {
		cleanHTML = *p.CleanHTML
	}

	res, err := s.extractor.Extract(ctx, pdf.ExtractRequest{
		File:           p.File,
		Pages:          p.Pages,
		Format:         p.Format,
		PreserveLayout: p.PreserveLayout,
		CleanHTML:      cleanHTML,
	})
	if err != nil {
		s.diagnosticLogger.Printf("extract_pdf_pages failed: %v", err)
		return createErrorResponse(err)
	}
	return createJSONResponse(res)
}
