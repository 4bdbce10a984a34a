package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/localdex/engine/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExtractor_MalformedFileIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%not a real pdf"), 0o644))

	e := &extract.PDFExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.SkipReason)
}
