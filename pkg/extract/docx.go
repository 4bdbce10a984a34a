package extract

import (
	"fmt"
	"strings"

	"github.com/localdex/engine/pkg/core"
	"github.com/nguyenthenguyen/docx"
)

// DocxExtractor handles Word (.docx) documents via nguyenthenguyen/docx.
// Paragraphs are read from the <w:p> elements of the document XML that
// library exposes and preserved as Section/Paragraph nodes; the text of a
// paragraph's runs is joined into a single unformatted Run.
type DocxExtractor struct{}

// Extract reads a .docx file's body text. A malformed or password-protected
// archive is reported as ExtractSkipped rather than failing the whole scan.
func (e *DocxExtractor) Extract(path string) (core.ExtractResult, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return core.ExtractResult{
			Skipped:    true,
			SkipReason: fmt.Sprintf("could not open Word document: %v", err),
		}, nil
	}
	defer doc.Close()

	content := doc.Editable().GetContent()

	paragraphs := pptxParagraphs([]byte(content))

	root := &core.Section{Tag: core.SectionParagraph}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		root.Children = append(root.Children, &core.Section{
			Tag:  core.SectionParagraph,
			Runs: []core.Run{{Text: p}},
		})
	}

	plain := strings.TrimSpace(strings.Join(paragraphs, "\n"))

	var warning string
	if plain == "" {
		warning = "no extractable text; document may be empty or image-only"
	}

	return core.ExtractResult{PlainText: plain, Structured: root, Warning: warning}, nil
}
