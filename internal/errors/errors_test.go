package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingBinaryError(t *testing.T) {
	err := NewMissingBinary("fzf")

	assert.Equal(t, ErrorTypeMissingBinary, err.Type)
	assert.Equal(t, "cannot find the `fzf` binary on PATH. Install it first.", err.Error())
	assert.False(t, err.Timestamp.IsZero())
}

func TestBadRequestError(t *testing.T) {
	err := NewBadRequest("filter")
	assert.Equal(t, "'filter' argument is required", err.Error())

	withReason := NewBadRequest("pages").WithReason("unparseable page token \"x\"")
	assert.Equal(t, "'pages' argument is invalid: unparseable page token \"x\"", withReason.Error())
}

func TestSubprocessError(t *testing.T) {
	t.Run("stderr wins", func(t *testing.T) {
		err := NewSubprocess("rg", 2, "rg: bad flag", nil)
		assert.Equal(t, "rg: bad flag", err.Error())
	})

	t.Run("exit code message when stderr empty", func(t *testing.T) {
		err := NewSubprocess("rg", 2, "", nil)
		assert.Equal(t, "rg failed with code 2", err.Error())
	})

	t.Run("unwrap", func(t *testing.T) {
		inner := stderrors.New("spawn failed")
		err := NewSubprocess("fzf", 0, "", inner)
		assert.True(t, stderrors.Is(err, inner))
	})
}
