package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/localdex/engine/pkg/core"
)

// imageOnlyThreshold is the minimum amount of trimmed extracted text a PDF
// must produce to be considered to have a usable text layer. Below this, a
// PDF is treated as image-only and skipped rather than indexed with noise
// (resolved open question, SPEC_FULL.md).
const imageOnlyThreshold = 20

// PDFExtractor handles .pdf files via ledongthuc/pdf. Extraction is
// page-by-page; a page that fails individually does not fail the whole
// file, it is simply omitted with a warning.
type PDFExtractor struct{}

// Extract walks every page's text layer, joining them with a page-break
// structured node between pages. A PDF whose total extracted text falls
// under imageOnlyThreshold is reported as ExtractSkipped (scanned/image-only).
func (e *PDFExtractor) Extract(path string) (core.ExtractResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.ExtractResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return core.ExtractResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return core.ExtractResult{
			Skipped:    true,
			SkipReason: fmt.Sprintf("could not parse PDF: %v", err),
		}, nil
	}

	root := &core.Section{Tag: core.SectionParagraph}

	var (
		plain        strings.Builder
		failedPages  int
		totalPages   = reader.NumPage()
	)

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			failedPages++
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if plain.Len() > 0 {
			root.Children = append(root.Children, &core.Section{Tag: core.SectionPageBreak})
			plain.WriteByte('\n')
		}

		root.Children = append(root.Children, &core.Section{Tag: core.SectionParagraph, Runs: []core.Run{{Text: text}}})
		plain.WriteString(text)
	}

	finalText := strings.TrimSpace(plain.String())

	if len(finalText) < imageOnlyThreshold {
		return core.ExtractResult{
			Skipped:    true,
			SkipReason: "PDF has no usable text layer (likely scanned/image-only)",
		}, nil
	}

	var warning string
	if failedPages > 0 {
		warning = fmt.Sprintf("%d of %d pages failed to extract", failedPages, totalPages)
	}

	return core.ExtractResult{PlainText: finalText, Structured: root, Warning: warning}, nil
}
