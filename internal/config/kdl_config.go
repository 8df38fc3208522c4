package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// ConfigFileName is looked up in the project root
const ConfigFileName = ".fzmcp.kdl"

// LoadKDL attempts to load configuration from a .fzmcp.kdl file in
// projectRoot. A missing file is not an error; defaults apply.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ConfigFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", ConfigFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	// Resolve a relative root against the directory holding the config file
	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	} else if cfg.Project.Root == "" || cfg.Project.Root == "." {
		if abs, err := filepath.Abs(projectRoot); err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = projectRoot
		}
	}

	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := DefaultConfig()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "default_limit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.DefaultLimit = v
					}
				case "max_limit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxLimit = v
					}
				case "preview_length":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.PreviewLength = v
					}
				case "pandoc_timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.PandocTimeoutSec = v
					}
				case "hidden_by_default":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.HiddenByDefault = b
					}
				case "multiline_by_default":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.MultilineByDefault = b
					}
				}
			}
		case "tools":
			for _, cn := range n.Children {
				assignSimpleString(cn, "rg", func(v string) { cfg.Tools.Rg = v })
				assignSimpleString(cn, "fzf", func(v string) { cfg.Tools.Fzf = v })
				assignSimpleString(cn, "fd", func(v string) { cfg.Tools.Fd = v })
				assignSimpleString(cn, "rga", func(v string) { cfg.Tools.Rga = v })
				assignSimpleString(cn, "mutool", func(v string) { cfg.Tools.Mutool = v })
				assignSimpleString(cn, "pandoc", func(v string) { cfg.Tools.Pandoc = v })
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

// Helper functions leveraging the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format: exclude { "pattern" } puts strings in child node names
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
