// Package mcp exposes the fuzzy search tools over the Model Context
// Protocol on stdio.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fzmcp/fzmcp/internal/config"
	"github.com/fzmcp/fzmcp/internal/fd"
	"github.com/fzmcp/fzmcp/internal/pdf"
	"github.com/fzmcp/fzmcp/internal/search"
	"github.com/fzmcp/fzmcp/internal/toolbin"
	"github.com/fzmcp/fzmcp/internal/version"
)

// Server serves the fuzzy search tool suite over MCP
type Server struct {
	cfg              *config.Config
	tools            *toolbin.Toolset
	searcher         *search.Service
	finder           *fd.Service
	extractor        *pdf.Extractor
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger
}

// NewServer wires the search services to an MCP server instance. The
// binary set is resolved once here and injected everywhere; missing
// binaries surface per-tool on first use, not at startup, so a host
// without rga can still run the file search tools.
func NewServer(cfg *config.Config) *Server {
	// File-based logging keeps stdio clean for the protocol
	diagnosticLogger := NewDiagnosticLogger(true)

	tools := toolbin.Resolve(cfg.Tools)
	diagnosticLogger.Printf("resolved binaries: rg=%q fzf=%q fd=%q rga=%q mutool=%q pandoc=%q",
		tools.Rg, tools.Fzf, tools.Fd, tools.Rga, tools.Mutool, tools.Pandoc)

	s := &Server{
		cfg:              cfg,
		tools:            tools,
		searcher:         search.NewService(tools, cfg, diagnosticLogger.Printf),
		finder:           fd.NewService(tools, cfg),
		extractor:        pdf.NewExtractor(tools, cfg),
		diagnosticLogger: diagnosticLogger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "fzmcp",
		Version: version.Info(),
	}, nil)
	s.registerTools()

	return s
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name: "fuzzy_search_files",
		Description: "Search for files by fuzzy-matching their paths (rg --files | fzf).\n\n" +
			"NO REGEX: fuzzy_filter uses fzf syntax - space-separated terms are ANDed, " +
			"'|' is OR, '!term' excludes, '^'/'$' anchor, 'term disables fuzzy matching.\n" +
			"Multiline mode matches whole file contents and returns full records.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"fuzzy_filter": {Type: "string", Description: "fzf fuzzy query (NOT regex). Required."},
				"path":         {Type: "string", Description: "Directory to search. Defaults to current dir."},
				"hidden":       {Type: "boolean", Description: "Include hidden files. Default false."},
				"limit":        {Type: "integer", Description: "Max results. Default 20."},
				"multiline":    {Type: "boolean", Description: "Match whole file contents instead of paths. Default false."},
			},
			Required: []string{"fuzzy_filter"},
		},
	}, s.handleFuzzySearchFiles)

	s.server.AddTool(&mcp.Tool{
		Name: "fuzzy_search_content",
		Description: "Search every line of every file, fuzzy-filtered (rg | fzf).\n\n" +
			"NO REGEX in fuzzy_filter - spaces separate AND patterns. By default the " +
			"filter matches file paths and content but never line numbers; set " +
			"content_only to match content alone. rg_flags passes extra ripgrep flags " +
			"through (-t py, -i, -C 3, --max-filesize 1M, ...).",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"fuzzy_filter": {Type: "string", Description: "fzf fuzzy query (NOT regex). Required."},
				"path":         {Type: "string", Description: "Directory/file to search. Defaults to current dir."},
				"hidden":       {Type: "boolean", Description: "Search hidden files. Default false."},
				"limit":        {Type: "integer", Description: "Max results. Default 20."},
				"rg_flags":     {Type: "string", Description: "Extra flags forwarded to ripgrep."},
				"multiline":    {Type: "boolean", Description: "Treat whole files as records. Default false."},
				"content_only": {Type: "boolean", Description: "Match only content, ignore file paths. Default false."},
			},
			Required: []string{"fuzzy_filter"},
		},
	}, s.handleFuzzySearchContent)

	s.server.AddTool(&mcp.Tool{
		Name: "fuzzy_search_documents",
		Description: "Search PDFs, Office documents, e-books, and archives through " +
			"ripgrep-all, fuzzy-filtered with fzf. For PDFs the line number " +
			"approximates the page.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"fuzzy_filter": {Type: "string", Description: "fzf fuzzy query. Required."},
				"path":         {Type: "string", Description: "Directory/file to search. Defaults to current dir."},
				"file_types":   {Type: "string", Description: "Comma-separated adapters to enable (pdf,docx,epub)."},
				"limit":        {Type: "integer", Description: "Max results. Default 20."},
			},
			Required: []string{"fuzzy_filter"},
		},
	}, s.handleFuzzySearchDocuments)

	s.server.AddTool(&mcp.Tool{
		Name: "search_files",
		Description: "Find files by exact pattern with fd. Unlike the fuzzy tools this " +
			"IS pattern matching: regex or glob, fd syntax. Use fuzzy_search_files " +
			"when you only know approximate names.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {Type: "string", Description: "fd regex/glob pattern. Required."},
				"path":    {Type: "string", Description: "Directory to search. Defaults to current dir."},
				"flags":   {Type: "string", Description: "Extra fd flags (e.g. --hidden)."},
			},
			Required: []string{"pattern"},
		},
	}, s.handleSearchFiles)

	s.server.AddTool(&mcp.Tool{
		Name: "filter_files",
		Description: "Fuzzy search file NAMES with fd + fzf. NO REGEX in filter - fzf " +
			"syntax only. Optional fd pattern pre-filters candidates; first returns " +
			"only the best match; multiline searches file contents instead of names.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filter":    {Type: "string", Description: "fzf fuzzy query for names/paths (NOT regex). Required."},
				"pattern":   {Type: "string", Description: "fd pattern to pre-filter candidates."},
				"path":      {Type: "string", Description: "Directory to search. Defaults to current dir."},
				"first":     {Type: "boolean", Description: "Return only the best match. Default false."},
				"fd_flags":  {Type: "string", Description: "Extra fd flags."},
				"fzf_flags": {Type: "string", Description: "Extra fzf flags."},
				"multiline": {Type: "boolean", Description: "Fuzzy-match file contents. Default false."},
			},
			Required: []string{"filter"},
		},
	}, s.handleFilterFiles)

	s.server.AddTool(&mcp.Tool{
		Name: "extract_pdf_pages",
		Description: "Extract pages from a PDF as markdown, html, or plain text. Page " +
			"specs accept physical numbers ('14'), roman numerals ('v', 'xii'), and " +
			"inclusive ranges of either ('1-5', 'v-vii'), comma-separated.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file":            {Type: "string", Description: "Path to the PDF. Required."},
				"pages":           {Type: "string", Description: "Comma-separated page specs. Required."},
				"format":          {Type: "string", Description: "markdown, html, or plain. Default markdown."},
				"preserve_layout": {Type: "boolean", Description: "Try to preserve layout. Default false."},
				"clean_html":      {Type: "boolean", Description: "Strip styling tags. Default true."},
			},
			Required: []string{"file", "pages"},
		},
	}, s.handleExtractPDFPages)
}

// Start runs the server over stdio until the context is canceled
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("fzmcp %s serving on stdio", version.Info())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown releases server resources
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("shutting down")
	return s.diagnosticLogger.Close()
}
