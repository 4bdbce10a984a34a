package extract_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>
    <a:p><a:r><a:t>Welcome</a:t></a:r></a:p>
    <a:p><a:r><a:t>to the deck</a:t></a:r></a:p>
  </p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`

func writePptx(t *testing.T, path string, slideCount int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)

	for i := 1; i <= slideCount; i++ {
		w, err := zw.Create(filepath.ToSlash(filepath.Join("ppt/slides", pptxSlideName(i))))
		require.NoError(t, err)
		_, err = w.Write([]byte(slideXML))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
}

func pptxSlideName(n int) string {
	return "slide" + strconv.Itoa(n) + ".xml"
}

func TestPptxExtractor_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writePptx(t, path, 2)

	e := &extract.PptxExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.Contains(t, result.PlainText, "Welcome")
	assert.Contains(t, result.PlainText, "to the deck")

	var slideBreaks int
	for _, c := range result.Structured.Children {
		if c.Tag == core.SectionSlideBreak {
			slideBreaks++
		}
	}
	assert.Equal(t, 2, slideBreaks)
}

func TestPptxExtractor_CorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pptx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	e := &extract.PptxExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.SkipReason)
}
