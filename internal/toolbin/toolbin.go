// Package toolbin resolves the external search binaries once at
// startup so every tool invocation runs with explicit executable paths.
package toolbin

import (
	"os/exec"

	"github.com/fzmcp/fzmcp/internal/config"
	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
)

// Toolset holds resolved executable paths. An empty field means the
// binary was not found; callers check with Require before spawning.
type Toolset struct {
	Rg     string
	Fzf    string
	Fd     string
	Rga    string
	Mutool string
	Pandoc string
}

// Resolve looks up every known binary on PATH, honoring name overrides
// from the tools config section. Absent binaries leave empty fields
// rather than failing; only the tools actually invoked matter.
func Resolve(tools config.Tools) *Toolset {
	ts := &Toolset{
		Rg:     lookup(tools.Rg, "rg"),
		Fzf:    lookup(tools.Fzf, "fzf"),
		Rga:    lookup(tools.Rga, "rga"),
		Mutool: lookup(tools.Mutool, "mutool"),
		Pandoc: lookup(tools.Pandoc, "pandoc"),
	}

	// Debian and Ubuntu package fd under a different name
	ts.Fd = lookup(tools.Fd, "fd")
	if ts.Fd == "" && tools.Fd == "" {
		ts.Fd = lookup("", "fdfind")
	}

	return ts
}

func lookup(override, name string) string {
	if override != "" {
		name = override
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}

// Require returns the resolved path or a missing-binary error naming
// the tool the way a user would install it.
func Require(path, name string) (string, error) {
	if path == "" {
		return "", fzerrors.NewMissingBinary(name)
	}
	return path, nil
}
