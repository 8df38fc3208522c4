package config

// Default limits applied when the config file says nothing
const (
	DefaultResultLimit    = 20
	DefaultMaxResultLimit = 1000
	DefaultPreviewLength  = 200
	DefaultPandocTimeout  = 30
)

// Config is the complete fzmcp configuration, loaded from .fzmcp.kdl
// when present and from defaults otherwise.
type Config struct {
	Version int     `kdl:"version"`
	Project Project `kdl:"project"`
	Search  Search  `kdl:"search"`
	Tools   Tools   `kdl:"tools"`

	// Glob patterns constraining search scope. Empty include means
	// everything; excludes always apply.
	Include []string `kdl:"include"`
	Exclude []string `kdl:"exclude"`
}

// Project identifies the tree searches run against by default
type Project struct {
	Root string `kdl:"root"`
	Name string `kdl:"name"`
}

// Search holds result shaping knobs shared by all search tools
type Search struct {
	// DefaultLimit caps returned matches when a request names no limit
	DefaultLimit int `kdl:"default_limit"`
	// MaxLimit is the hard ceiling a request limit is clamped to
	MaxLimit int `kdl:"max_limit"`
	// PreviewLength truncates content previews in multiline results
	PreviewLength int `kdl:"preview_length"`
	// PandocTimeoutSec bounds the markdown conversion step of PDF extraction
	PandocTimeoutSec int `kdl:"pandoc_timeout_sec"`
	// HiddenByDefault includes dotfiles without an explicit request flag
	HiddenByDefault bool `kdl:"hidden_by_default"`
	// MultilineByDefault treats files as single records without an explicit flag
	MultilineByDefault bool `kdl:"multiline_by_default"`
}

// Tools overrides the binary names resolved on PATH. Useful on
// distributions that rename binaries (Debian ships fd as fdfind).
type Tools struct {
	Rg     string `kdl:"rg"`
	Fzf    string `kdl:"fzf"`
	Fd     string `kdl:"fd"`
	Rga    string `kdl:"rga"`
	Mutool string `kdl:"mutool"`
	Pandoc string `kdl:"pandoc"`
}

// DefaultConfig returns the configuration used when no .fzmcp.kdl exists
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: "."},
		Search: Search{
			DefaultLimit:     DefaultResultLimit,
			MaxLimit:         DefaultMaxResultLimit,
			PreviewLength:    DefaultPreviewLength,
			PandocTimeoutSec: DefaultPandocTimeout,
		},
		Include: []string{},
		Exclude: []string{},
	}
}

// ClampLimit applies the default and ceiling to a requested result limit
func (c *Config) ClampLimit(requested int) int {
	if requested <= 0 {
		return c.Search.DefaultLimit
	}
	if c.Search.MaxLimit > 0 && requested > c.Search.MaxLimit {
		return c.Search.MaxLimit
	}
	return requested
}
