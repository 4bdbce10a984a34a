package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/localdex/engine/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXlsxExtractor_Extract(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Quantity"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Widget"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 42))

	path := filepath.Join(t.TempDir(), "sheet.xlsx")
	require.NoError(t, f.SaveAs(path))

	e := &extract.XlsxExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.Contains(t, result.PlainText, "Widget")
	assert.Contains(t, result.PlainText, "42")
	require.NotNil(t, result.Structured)
	require.Len(t, result.Structured.Children, 1)
}

func TestXlsxExtractor_CorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	e := &extract.XlsxExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}
