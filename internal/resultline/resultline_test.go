package resultline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Unix(t *testing.T) {
	m, ok := Parse("a/b/c.py:10:hello world")
	require.True(t, ok)
	assert.Equal(t, Match{File: "a/b/c.py", Line: 10, Content: "hello world"}, m)
}

func TestParse_DriveLetter(t *testing.T) {
	m, ok := Parse(`C:\Users\x\f.py:10:hello`)
	require.True(t, ok)
	assert.Equal(t, Match{File: "C:/Users/x/f.py", Line: 10, Content: "hello"}, m)
}

func TestParse_MixedOriginLines(t *testing.T) {
	// Output produced on one host may be parsed on another; the drive
	// letter shape keys on structure, not the running OS.
	tests := []struct {
		line string
		want Match
	}{
		{"src/main.go:3:package main", Match{File: "src/main.go", Line: 3, Content: "package main"}},
		{`D:\proj\a.rs:7:fn main()`, Match{File: "D:/proj/a.rs", Line: 7, Content: "fn main()"}},
		{"x:1:colon:in:content", Match{File: "x", Line: 1, Content: "colon:in:content"}},
	}
	for _, tt := range tests {
		m, ok := Parse(tt.line)
		require.True(t, ok, "line %q", tt.line)
		assert.Equal(t, tt.want, m, "line %q", tt.line)
	}
}

func TestParse_Malformed(t *testing.T) {
	lines := []string{
		"not-a-valid-line",
		"path:not-a-number:content",
		"",
		"only:two",
		`C:\Users\x\f.py:NaN:hello`,
	}
	for _, line := range lines {
		_, ok := Parse(line)
		assert.False(t, ok, "line %q should not parse", line)
	}
}

func TestParse_ContentTrimmed(t *testing.T) {
	m, ok := Parse("f.go:1:   indented   ")
	require.True(t, ok)
	assert.Equal(t, "indented", m.Content)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "C:/Users/x", NormalizePath(`C:\Users\x`))
	assert.Equal(t, "a/b/c", NormalizePath("a/b/c"))

	// Idempotent
	once := NormalizePath(`a\b\c`)
	assert.Equal(t, once, NormalizePath(once))
}
