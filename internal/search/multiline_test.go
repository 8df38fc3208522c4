package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzmcp/fzmcp/internal/config"
	"github.com/fzmcp/fzmcp/internal/toolbin"
)

func TestFiles_MultilineReturnsWholeRecords(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha content\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("beta content\n"), 0644))

	dir := t.TempDir()
	tools := &toolbin.Toolset{
		Rg: fakeBinary(t, dir, "rg",
			"echo '"+filepath.Join(root, "a.txt")+"'\necho '"+filepath.Join(root, "b.txt")+"'"),
		Fzf: fakeBinary(t, dir, "fzf", `cat`),
	}
	cfg := config.DefaultConfig()
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(tools, cfg, nil)

	res, err := svc.Files(context.Background(), Request{Filter: "content", Path: root, Multiline: true})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Contains(t, res.Matches[0], "a.txt:\nalpha content")
	assert.Contains(t, res.Matches[1], "b.txt:\nbeta content")
}

func TestFiles_MultilineEmptyTree(t *testing.T) {
	svc := serviceWith(t, `exit 1`, `cat`)

	res, err := svc.Files(context.Background(), Request{Filter: "foo", Multiline: true})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

func TestSplitNulRecords(t *testing.T) {
	out := []byte("a.txt:\nhello\x00b.txt:\nworld\x00")
	records := SplitNulRecords(out)
	assert.Equal(t, []string{"a.txt:\nhello", "b.txt:\nworld"}, records)
}

func TestSplitNulRecords_ReplacesInvalidUTF8(t *testing.T) {
	out := []byte{'a', ':', '\n', 0xff, 0xfe, 0}
	records := SplitNulRecords(out)
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "�")
}

func TestCapRunes(t *testing.T) {
	assert.Equal(t, "abc", capRunes("abc", 5))
	assert.Equal(t, "abc", capRunes("abc", 3))
	assert.Equal(t, "ab...", capRunes("abcd", 2))
	assert.Equal(t, "日本...", capRunes("日本語", 2))
	assert.Equal(t, "abc", capRunes("abc", 0), "non-positive limit disables the cap")
}

func TestKeepPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude = []string{"**/vendor/**", "*.log"}
	cfg.Include = []string{"**/*.go"}
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(&toolbin.Toolset{}, cfg, nil)

	root := "/proj"
	assert.True(t, svc.keepPath(root, "/proj/src/main.go"))
	assert.False(t, svc.keepPath(root, "/proj/src/vendor/dep/a.go"), "excluded wins")
	assert.False(t, svc.keepPath(root, "/proj/build.log"))
	assert.False(t, svc.keepPath(root, "/proj/readme.md"), "not in include set")
}

func TestKeepPath_NoPatternsKeepsEverything(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(&toolbin.Toolset{}, cfg, nil)

	assert.True(t, svc.keepPath("/proj", "/proj/anything.bin"))
}
