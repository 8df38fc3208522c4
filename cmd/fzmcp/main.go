package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/fzmcp/fzmcp/internal/config"
	"github.com/fzmcp/fzmcp/internal/fd"
	"github.com/fzmcp/fzmcp/internal/mcp"
	"github.com/fzmcp/fzmcp/internal/pdf"
	"github.com/fzmcp/fzmcp/internal/search"
	"github.com/fzmcp/fzmcp/internal/toolbin"
	"github.com/fzmcp/fzmcp/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.String("root") != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		cfg.Project.Root = absRoot
	}

	return cfg, nil
}

func searchService(c *cli.Context) (*search.Service, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	tools := toolbin.Resolve(cfg.Tools)
	return search.NewService(tools, cfg, nil), cfg, nil
}

// printJSON writes the success payload as indented JSON on stdout
func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// fail prints the failure shape clients expect and exits nonzero
func fail(err error) error {
	_ = printJSON(map[string]string{"error": err.Error()})
	return cli.Exit("", 1)
}

func main() {
	app := &cli.App{
		Name:                   "fzmcp",
		Usage:                  "Fuzzy search tools for AI assistants (rg + fzf over MCP)",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (config is read from here)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Search only files matching glob patterns (e.g. --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g. --exclude '**/node_modules/**')",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search-files",
				Usage:     "Fuzzy search file paths",
				ArgsUsage: "FUZZY_FILTER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Value: ".", Usage: "Directory to search"},
					&cli.BoolFlag{Name: "hidden", Usage: "Include hidden files"},
					&cli.IntFlag{Name: "limit", Value: 0, Usage: "Max results"},
					&cli.BoolFlag{Name: "multiline", Usage: "Match whole file contents"},
				},
				Action: searchFilesCommand,
			},
			{
				Name:      "search-content",
				Usage:     "Fuzzy search every line of every file",
				ArgsUsage: "FUZZY_FILTER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Value: ".", Usage: "Directory/file to search"},
					&cli.BoolFlag{Name: "hidden", Usage: "Search hidden files"},
					&cli.IntFlag{Name: "limit", Value: 0, Usage: "Max results"},
					&cli.StringFlag{Name: "rg-flags", Usage: "Extra ripgrep flags"},
					&cli.BoolFlag{Name: "multiline", Usage: "Treat whole files as records"},
					&cli.BoolFlag{Name: "content-only", Usage: "Match only content, not file paths"},
				},
				Action: searchContentCommand,
			},
			{
				Name:      "search-documents",
				Usage:     "Fuzzy search PDFs and other rich documents (needs rga)",
				ArgsUsage: "FUZZY_FILTER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Value: ".", Usage: "Directory/file to search"},
					&cli.StringFlag{Name: "file-types", Usage: "Comma-separated adapters (pdf,docx,epub)"},
					&cli.IntFlag{Name: "limit", Value: 0, Usage: "Max results"},
				},
				Action: searchDocumentsCommand,
			},
			{
				Name:      "find",
				Usage:     "Find files by exact fd pattern",
				ArgsUsage: "PATTERN",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Value: ".", Usage: "Directory to search"},
					&cli.StringFlag{Name: "flags", Usage: "Extra fd flags"},
				},
				Action: findCommand,
			},
			{
				Name:      "filter",
				Usage:     "Fuzzy filter file names with fd + fzf",
				ArgsUsage: "FILTER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pattern", Usage: "fd pattern to pre-filter candidates"},
					&cli.StringFlag{Name: "path", Value: ".", Usage: "Directory to search"},
					&cli.BoolFlag{Name: "first", Usage: "Return only the best match"},
					&cli.StringFlag{Name: "fd-flags", Usage: "Extra fd flags"},
					&cli.StringFlag{Name: "fzf-flags", Usage: "Extra fzf flags"},
					&cli.BoolFlag{Name: "multiline", Usage: "Fuzzy-match file contents"},
				},
				Action: filterCommand,
			},
			{
				Name:      "extract-pdf",
				Usage:     "Extract PDF pages as markdown, html, or plain text",
				ArgsUsage: "FILE PAGES",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "markdown", Usage: "Output format"},
					&cli.BoolFlag{Name: "preserve-layout", Usage: "Try to preserve layout"},
					&cli.BoolFlag{Name: "no-clean-html", Usage: "Keep styling tags in extracted html"},
				},
				Action: extractPDFCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Run as an MCP server on stdio",
				Action: mcpCommand,
			},
		},
		Action: func(c *cli.Context) error {
			// Auto-detect MCP clients that exec the binary with no args
			if c.Args().Len() == 0 && isMCPMode() {
				return mcpCommand(c)
			}
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s argument is required", name)
	}
	return v, nil
}

func searchFilesCommand(c *cli.Context) error {
	filter, err := requireArg(c, "FUZZY_FILTER")
	if err != nil {
		return err
	}
	svc, _, err := searchService(c)
	if err != nil {
		return err
	}

	res, err := svc.Files(c.Context, search.Request{
		Filter:    filter,
		Path:      c.String("path"),
		Hidden:    c.Bool("hidden"),
		Limit:     c.Int("limit"),
		Multiline: c.Bool("multiline"),
	})
	if err != nil {
		return fail(err)
	}
	return printJSON(res)
}

func searchContentCommand(c *cli.Context) error {
	filter, err := requireArg(c, "FUZZY_FILTER")
	if err != nil {
		return err
	}
	svc, _, err := searchService(c)
	if err != nil {
		return err
	}

	res, err := svc.Content(c.Context, search.Request{
		Filter:      filter,
		Path:        c.String("path"),
		Hidden:      c.Bool("hidden"),
		Limit:       c.Int("limit"),
		RgFlags:     c.String("rg-flags"),
		Multiline:   c.Bool("multiline"),
		ContentOnly: c.Bool("content-only"),
	})
	if err != nil {
		return fail(err)
	}
	return printJSON(res)
}

func searchDocumentsCommand(c *cli.Context) error {
	filter, err := requireArg(c, "FUZZY_FILTER")
	if err != nil {
		return err
	}
	svc, _, err := searchService(c)
	if err != nil {
		return err
	}

	res, err := svc.Documents(c.Context, search.Request{
		Filter:    filter,
		Path:      c.String("path"),
		FileTypes: c.String("file-types"),
		Limit:     c.Int("limit"),
	})
	if err != nil {
		return fail(err)
	}
	return printJSON(res)
}

func findCommand(c *cli.Context) error {
	pattern, err := requireArg(c, "PATTERN")
	if err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	svc := fd.NewService(toolbin.Resolve(cfg.Tools), cfg)

	res, err := svc.Search(c.Context, fd.SearchRequest{
		Pattern: pattern,
		Path:    c.String("path"),
		Flags:   c.String("flags"),
	})
	if err != nil {
		return fail(err)
	}
	return printJSON(res)
}

func filterCommand(c *cli.Context) error {
	filter, err := requireArg(c, "FILTER")
	if err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	svc := fd.NewService(toolbin.Resolve(cfg.Tools), cfg)

	res, err := svc.Filter(c.Context, fd.FilterRequest{
		Filter:    filter,
		Pattern:   c.String("pattern"),
		Path:      c.String("path"),
		First:     c.Bool("first"),
		FdFlags:   c.String("fd-flags"),
		FzfFlags:  c.String("fzf-flags"),
		Multiline: c.Bool("multiline"),
	})
	if err != nil {
		return fail(err)
	}
	return printJSON(res)
}

func extractPDFCommand(c *cli.Context) error {
	file := c.Args().Get(0)
	pages := c.Args().Get(1)
	if file == "" || pages == "" {
		return fmt.Errorf("both FILE and PAGES arguments are required")
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ex := pdf.NewExtractor(toolbin.Resolve(cfg.Tools), cfg)

	res, err := ex.Extract(c.Context, pdf.ExtractRequest{
		File:           file,
		Pages:          pages,
		Format:         c.String("format"),
		PreserveLayout: c.Bool("preserve-layout"),
		CleanHTML:      !c.Bool("no-clean-html"),
	})
	if err != nil {
		return fail(err)
	}
	return printJSON(res)
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = srv.Start(ctx)
	_ = srv.Shutdown(context.Background())
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// isMCPMode detects whether an MCP client launched this process
func isMCPMode() bool {
	if v := os.Getenv("FZMCP_MCP_MODE"); v == "1" || v == "true" {
		return true
	}

	// Non-terminal stdin means a pipe, which means JSON-RPC framing
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		return true
	}

	return false
}
