package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/localdex/engine/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtractor_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two"), 0o644))

	e := &extract.TextExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", result.PlainText)
	assert.Nil(t, result.Structured)
	assert.Empty(t, result.Warning)
	assert.False(t, result.Skipped)
}

func TestTextExtractor_InvalidUTF8IsRepaired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.txt")
	require.NoError(t, os.WriteFile(path, []byte{'h', 'i', 0xff, 0xfe, 'a'}, 0o644))

	e := &extract.TextExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	assert.Contains(t, result.PlainText, "hi")
}
