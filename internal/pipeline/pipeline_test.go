package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// script writes an executable shell script into dir and returns its path
func script(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stages require a POSIX shell")
	}
}

func TestRun_PipesProducerIntoConsumer(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	producer := Stage{Path: script(t, dir, "producer", `printf 'alpha\nbeta\ngamma\n'`)}
	consumer := Stage{Path: script(t, dir, "consumer", `grep a`)}

	out, err := Run(context.Background(), producer, consumer)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\ngamma\n", string(out))
}

func TestRun_ProducerNoMatchExitIsSuccess(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	producer := Stage{Path: script(t, dir, "producer", `exit 1`)}
	consumer := Stage{Path: script(t, dir, "consumer", `cat`)}

	out, err := Run(context.Background(), producer, consumer)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_ProducerFailureSurfacesStderr(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	producer := Stage{Path: script(t, dir, "producer", `echo 'bad root' >&2; exit 2`)}
	consumer := Stage{Path: script(t, dir, "consumer", `cat`)}

	_, err := Run(context.Background(), producer, consumer)
	require.Error(t, err)

	var subErr *fzerrors.SubprocessError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, 2, subErr.ExitCode)
	assert.Equal(t, "bad root", subErr.Stderr)
}

func TestRun_ConsumerNonzeroExitIgnored(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	producer := Stage{Path: script(t, dir, "producer", `printf 'one\ntwo\n'`)}
	consumer := Stage{Path: script(t, dir, "consumer", `cat >/dev/null; exit 1`)}

	out, err := Run(context.Background(), producer, consumer)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_ConsumerEarlyExitDoesNotHang(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	// Producer emits far more than the pipe buffer; a consumer that
	// reads one line and quits must break the pipe instead of letting
	// the producer block forever.
	producer := Stage{Path: script(t, dir, "producer", `i=0; while [ $i -lt 100000 ]; do echo "line $i padding padding padding padding"; i=$((i+1)); done`)}
	consumer := Stage{Path: script(t, dir, "consumer", `head -n 1`)}

	out, err := Run(context.Background(), producer, consumer)
	require.NoError(t, err)
	assert.Equal(t, "line 0 padding padding padding padding\n", string(out))
}

func TestOutput(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		stage := Stage{Path: script(t, dir, "ok", `printf 'hello'`)}
		out, err := Output(context.Background(), stage)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(out))
	})

	t.Run("tolerated exit code", func(t *testing.T) {
		stage := Stage{Path: script(t, dir, "nomatch", `exit 1`)}
		out, err := Output(context.Background(), stage, 0, 1)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("failure", func(t *testing.T) {
		stage := Stage{Path: script(t, dir, "fail", `echo oops >&2; exit 3`)}
		_, err := Output(context.Background(), stage)
		var subErr *fzerrors.SubprocessError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, "oops", subErr.Stderr)
	})
}

func TestFilter(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	stage := Stage{Path: script(t, dir, "filter", `grep b`)}
	out, err := Filter(context.Background(), stage, []byte("abc\nxyz\nbbb\n"))
	require.NoError(t, err)
	assert.Equal(t, "abc\nbbb\n", string(out))
}

func TestFilter_NoMatchIsEmptyResult(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	stage := Stage{Path: script(t, dir, "filter", `grep nope`)}
	out, err := Filter(context.Background(), stage, []byte("abc\n"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStageName(t *testing.T) {
	assert.Equal(t, "rg", Stage{Path: "/usr/local/bin/rg"}.name())
	assert.Equal(t, "fzf", Stage{Path: "fzf"}.name())
	if runtime.GOOS == "windows" {
		assert.Equal(t, "rg.exe", Stage{Path: `C:\tools\rg.exe`}.name())
	}
}

func TestRun_MissingBinary(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	producer := Stage{Path: filepath.Join(dir, "does-not-exist")}
	consumer := Stage{Path: script(t, dir, "consumer", `cat`)}

	_, err := Run(context.Background(), producer, consumer)
	assert.Error(t, err)
}
