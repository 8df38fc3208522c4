// Package pdf extracts pages from PDF documents through the MuPDF
// command line tool, with optional markdown conversion via pandoc.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fzmcp/fzmcp/internal/config"
	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/toolbin"
)

// Output formats accepted by Extract
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPlain    = "plain"
)

// Extractor pulls page content out of PDFs
type Extractor struct {
	tools *toolbin.Toolset
	cfg   *config.Config
}

// NewExtractor creates a PDF extractor
func NewExtractor(tools *toolbin.Toolset, cfg *config.Config) *Extractor {
	return &Extractor{tools: tools, cfg: cfg}
}

// ExtractRequest names the file, pages, and output shaping
type ExtractRequest struct {
	File           string
	Pages          string
	Format         string
	PreserveLayout bool
	CleanHTML      bool
}

// ExtractResult carries the converted content plus which pages it
// covers. PagesExtracted holds 0-based indices.
type ExtractResult struct {
	Content        string   `json:"content"`
	PagesExtracted []int    `json:"pages_extracted"`
	PageLabels     []string `json:"page_labels"`
	Format         string   `json:"format"`
}

var pageCountRe = regexp.MustCompile(`Pages:\s+(\d+)`)

// Extract renders the requested pages and converts them to the
// requested format. Markdown goes through html and pandoc; plain text
// comes straight from the renderer.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	if req.File == "" {
		return nil, fzerrors.NewBadRequest("file")
	}
	if req.Pages == "" {
		return nil, fzerrors.NewBadRequest("pages")
	}
	format := req.Format
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML && format != FormatPlain {
		return nil, fzerrors.NewBadRequest("format").WithReason(
			fmt.Sprintf("unsupported format %q, expected markdown, html, or plain", format))
	}

	if _, err := os.Stat(req.File); err != nil {
		return nil, fzerrors.NewBadRequest("file").WithReason(
			fmt.Sprintf("PDF file not found: %s", req.File))
	}

	mutool, err := toolbin.Require(e.tools.Mutool, "mutool")
	if err != nil {
		return nil, err
	}

	count, err := e.pageCount(ctx, mutool, req.File)
	if err != nil {
		return nil, err
	}

	refs, err := ParsePages(req.Pages, count)
	if err != nil {
		return nil, err
	}

	// Markdown rendering needs html source for pandoc; without pandoc
	// installed it degrades to plain text, same as the html-less path.
	renderHTML := format == FormatHTML || (format == FormatMarkdown && e.tools.Pandoc != "")

	var parts []string
	for _, ref := range refs {
		content, err := e.renderPage(ctx, mutool, req.File, ref.Index+1, renderHTML)
		if err != nil {
			return nil, err
		}
		if renderHTML {
			if req.CleanHTML {
				content = cleanHTML(content)
			}
			parts = append(parts,
				fmt.Sprintf(`<div class="page" data-page="%d" data-label="%s">`, ref.Index+1, ref.Label),
				content,
				`</div>`)
		} else {
			parts = append(parts,
				fmt.Sprintf("\n[Page %d] (Label: %s)\n", ref.Index+1, ref.Label),
				content)
		}
	}

	var content string
	if renderHTML {
		content = "<html><body>" + strings.Join(parts, "") + "</body></html>"
	} else {
		content = strings.Join(parts, "\n")
	}

	if format == FormatMarkdown && renderHTML {
		content, err = e.toMarkdown(ctx, content, req.CleanHTML)
		if err != nil {
			return nil, err
		}
	}

	indices := make([]int, len(refs))
	labels := make([]string, len(refs))
	for i, ref := range refs {
		indices[i] = ref.Index
		labels[i] = ref.Label
	}

	return &ExtractResult{
		Content:        content,
		PagesExtracted: indices,
		PageLabels:     labels,
		Format:         format,
	}, nil
}

func (e *Extractor) pageCount(ctx context.Context, mutool, file string) (int, error) {
	out, err := pipeline.Output(ctx, pipeline.Stage{
		Path: mutool,
		Args: []string{"info", file},
	})
	if err != nil {
		return 0, err
	}
	m := pageCountRe.FindSubmatch(out)
	if m == nil {
		return 0, fzerrors.NewSubprocess("mutool", 0, "",
			errors.New("could not determine page count from mutool info"))
	}
	return strconv.Atoi(string(m[1]))
}

func (e *Extractor) renderPage(ctx context.Context, mutool, file string, page int, html bool) (string, error) {
	outFormat := "text"
	if html {
		outFormat = "html"
	}
	out, err := pipeline.Output(ctx, pipeline.Stage{
		Path: mutool,
		Args: []string{"draw", "-F", outFormat, "-o", "-", file, strconv.Itoa(page)},
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var (
	styleAttrs = regexp.MustCompile(`\sstyle="[^"]*"`)
	fontTags   = regexp.MustCompile(`</?font[^>]*>`)
	spanOpen   = regexp.MustCompile(`<span[^>]*>`)
	spanClose  = regexp.MustCompile(`</span>`)
)

// cleanHTML strips presentational markup the renderer embeds, keeping
// the converted output free of inline styling noise.
func cleanHTML(content string) string {
	content = styleAttrs.ReplaceAllString(content, "")
	content = fontTags.ReplaceAllString(content, "")
	content = spanOpen.ReplaceAllString(content, "")
	content = spanClose.ReplaceAllString(content, "")
	return content
}

// toMarkdown converts rendered html to GitHub-flavored markdown via
// pandoc, bounded by the configured timeout.
func (e *Extractor) toMarkdown(ctx context.Context, html string, clean bool) (string, error) {
	pandoc, err := toolbin.Require(e.tools.Pandoc, "pandoc")
	if err != nil {
		return "", err
	}

	from, to := "html", "gfm+tex_math_dollars"
	if clean {
		from = "html-native_divs-native_spans"
		to = "gfm+tex_math_dollars-raw_html"
	}
	args := []string{"--from=" + from, "--to=" + to, "--wrap=none"}
	if clean {
		args = append(args, "--strip-comments")
	}

	timeout := time.Duration(e.cfg.Search.PandocTimeoutSec) * time.Second
	convCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := pipeline.Filter(convCtx, pipeline.Stage{Path: pandoc, Args: args}, []byte(html), 0)
	if err != nil {
		if convCtx.Err() == context.DeadlineExceeded {
			return "", fzerrors.NewSubprocess("pandoc", 0, "",
				errors.New("pandoc conversion timed out"))
		}
		return "", err
	}
	return string(out), nil
}
