package toolbin

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzmcp/fzmcp/internal/config"
	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
)

// writeFakeBinary drops an executable shell stub named name into dir
func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
	return path
}

func TestResolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub binaries are not executable on windows")
	}

	dir := t.TempDir()
	writeFakeBinary(t, dir, "rg")
	writeFakeBinary(t, dir, "fzf")
	t.Setenv("PATH", dir)

	ts := Resolve(config.Tools{})

	assert.Equal(t, filepath.Join(dir, "rg"), ts.Rg)
	assert.Equal(t, filepath.Join(dir, "fzf"), ts.Fzf)
	assert.Empty(t, ts.Rga, "absent binaries resolve to empty")
	assert.Empty(t, ts.Mutool)
}

func TestResolve_FdfindFallback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub binaries are not executable on windows")
	}

	dir := t.TempDir()
	writeFakeBinary(t, dir, "fdfind")
	t.Setenv("PATH", dir)

	ts := Resolve(config.Tools{})
	assert.Equal(t, filepath.Join(dir, "fdfind"), ts.Fd)
}

func TestResolve_Override(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub binaries are not executable on windows")
	}

	dir := t.TempDir()
	writeFakeBinary(t, dir, "my-rg")
	t.Setenv("PATH", dir)

	ts := Resolve(config.Tools{Rg: "my-rg"})
	assert.Equal(t, filepath.Join(dir, "my-rg"), ts.Rg)
}

func TestRequire(t *testing.T) {
	path, err := Require("/usr/bin/rg", "ripgrep")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/rg", path)

	_, err = Require("", "fzf")
	require.Error(t, err)
	var missing *fzerrors.MissingBinaryError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "fzf", missing.Name)
}
