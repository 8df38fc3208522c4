package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzmcp/fzmcp/internal/config"
	"github.com/fzmcp/fzmcp/internal/resultline"
	"github.com/fzmcp/fzmcp/internal/toolbin"
)

func TestContent_ParsesRankedLines(t *testing.T) {
	svc := serviceWith(t,
		`printf 'src/a.go:10:func main() {\nsrc/b.go:22:return nil\n'`,
		`cat`)

	res, err := svc.Content(context.Background(), Request{Filter: "func"})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, resultline.Match{File: "src/a.go", Line: 10, Content: "func main() {"}, res.Matches[0])
	assert.Equal(t, resultline.Match{File: "src/b.go", Line: 22, Content: "return nil"}, res.Matches[1])
}

func TestContent_DropsUnparseableLinesWithDebugCount(t *testing.T) {
	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, format)
	}

	dir := t.TempDir()
	tools := &toolbin.Toolset{
		Rg:  fakeBinary(t, dir, "rg", `printf 'good.go:1:ok\ngarbage line\nalso.go:2:fine\n'`),
		Fzf: fakeBinary(t, dir, "fzf", `cat`),
	}
	cfg := config.DefaultConfig()
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(tools, cfg, logf)

	res, err := svc.Content(context.Background(), Request{Filter: "ok"})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "unparseable")
}

func TestContent_LimitApplied(t *testing.T) {
	svc := serviceWith(t,
		`i=1; while [ $i -le 30 ]; do echo "f.go:$i:line $i"; i=$((i+1)); done`,
		`cat`)

	res, err := svc.Content(context.Background(), Request{Filter: "line", Limit: 3})
	require.NoError(t, err)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 1, res.Matches[0].Line)
	assert.Equal(t, 3, res.Matches[2].Line)
}

func TestContent_EmptyRootDiagnostic(t *testing.T) {
	svc := serviceWith(t, `exit 1`, `cat`)

	res, err := svc.Content(context.Background(), Request{Filter: "anything"})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Contains(t, res.Diagnostic, "no lines found")
}

func TestContent_StrictFilterDiagnosticWithCount(t *testing.T) {
	svc := serviceWith(t, `printf 'a.go:1:x\na.go:2:y\n'`, `grep -v .`)

	res, err := svc.Content(context.Background(), Request{Filter: "zzz"})
	require.NoError(t, err)
	assert.Contains(t, res.Diagnostic, "2 lines found")
}

func TestContent_Multiline(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"),
		[]byte("first line\nsecond line\n"), 0644))

	dir := t.TempDir()
	// Enumerator lists the real file; ranker passes every record through
	tools := &toolbin.Toolset{
		Rg:  fakeBinary(t, dir, "rg", "echo '"+filepath.Join(root, "notes.txt")+"'"),
		Fzf: fakeBinary(t, dir, "fzf", `cat`),
	}

	cfg := config.DefaultConfig()
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(tools, cfg, nil)

	res, err := svc.Content(context.Background(), Request{
		Filter: "first", Path: root, Multiline: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "notes.txt")), res.Matches[0].File)
	assert.Equal(t, 1, res.Matches[0].Line)
	assert.Equal(t, "first line\nsecond line", res.Matches[0].Content)
}

func TestContent_MultilinePreviewCapped(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("x", 500)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), []byte(long), 0644))

	dir := t.TempDir()
	tools := &toolbin.Toolset{
		Rg:  fakeBinary(t, dir, "rg", "echo '"+filepath.Join(root, "big.txt")+"'"),
		Fzf: fakeBinary(t, dir, "fzf", `cat`),
	}
	cfg := config.DefaultConfig()
	cfg.Search.PreviewLength = 40
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(tools, cfg, nil)

	res, err := svc.Content(context.Background(), Request{
		Filter: "x", Path: root, Multiline: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, strings.Repeat("x", 40)+"...", res.Matches[0].Content)
}

func TestContent_MultilinePreviewCapKeepsRunesWhole(t *testing.T) {
	root := t.TempDir()
	// Byte 40 lands inside the first three-byte rune
	long := strings.Repeat("x", 39) + strings.Repeat("日", 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "cjk.txt"), []byte(long), 0644))

	dir := t.TempDir()
	tools := &toolbin.Toolset{
		Rg:  fakeBinary(t, dir, "rg", "echo '"+filepath.Join(root, "cjk.txt")+"'"),
		Fzf: fakeBinary(t, dir, "fzf", `cat`),
	}
	cfg := config.DefaultConfig()
	cfg.Search.PreviewLength = 40
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(tools, cfg, nil)

	res, err := svc.Content(context.Background(), Request{
		Filter: "x", Path: root, Multiline: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.True(t, utf8.ValidString(res.Matches[0].Content))
	assert.Equal(t, strings.Repeat("x", 39)+"日...", res.Matches[0].Content)
}

func TestContent_MultilineSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok.txt"), []byte("hello\n"), 0644))

	dir := t.TempDir()
	missing := filepath.Join(root, "gone.txt")
	tools := &toolbin.Toolset{
		Rg: fakeBinary(t, dir, "rg",
			"echo '"+missing+"'\necho '"+filepath.Join(root, "ok.txt")+"'"),
		Fzf: fakeBinary(t, dir, "fzf", `cat`),
	}
	cfg := config.DefaultConfig()
	require.NoError(t, config.ValidateConfig(cfg))
	svc := NewService(tools, cfg, nil)

	res, err := svc.Content(context.Background(), Request{
		Filter: "hello", Path: root, Multiline: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Contains(t, res.Matches[0].File, "ok.txt")
}
