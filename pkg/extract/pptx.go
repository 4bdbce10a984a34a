package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/localdex/engine/pkg/core"
)

// PptxExtractor handles PowerPoint (.pptx) files. No available library
// parses OOXML slides, so this walks the slide XML directly with
// archive/zip and encoding/xml (DESIGN.md documents this as the
// justified stdlib exception).
type PptxExtractor struct{}

// Extract reads every ppt/slides/slideN.xml entry in presentation order
// and emits one SlideBreak section per slide, with paragraph runs beneath
// it. A corrupt or non-OOXML archive is reported as ExtractSkipped.
func (e *PptxExtractor) Extract(path string) (core.ExtractResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return core.ExtractResult{
			Skipped:    true,
			SkipReason: fmt.Sprintf("could not open presentation archive: %v", err),
		}, nil
	}
	defer zr.Close()

	slides := slideFiles(&zr.Reader)

	root := &core.Section{Tag: core.SectionParagraph}

	var plain strings.Builder

	for i, f := range slides {
		slideNum := i + 1

		root.Children = append(root.Children, &core.Section{Tag: core.SectionSlideBreak, Slide: slideNum})

		b, err := readZipEntry(f)
		if err != nil {
			continue
		}

		paragraphs := pptxParagraphs(b)
		if len(paragraphs) == 0 {
			continue
		}

		plain.WriteString(fmt.Sprintf("Slide %d\n", slideNum))

		for _, p := range paragraphs {
			root.Children = append(root.Children, &core.Section{Tag: core.SectionParagraph, Runs: []core.Run{{Text: p}}})
			plain.WriteString(p)
			plain.WriteByte('\n')
		}
	}

	text := strings.TrimSpace(plain.String())

	var warning string
	if text == "" {
		warning = "no extractable text in any slide"
	}

	return core.ExtractResult{PlainText: text, Structured: root, Warning: warning}, nil
}

// slideFiles returns the slide XML entries in presentation order
// (slide1.xml, slide2.xml, ...).
func slideFiles(zr *zip.Reader) []*zip.File {
	var slides []*zip.File

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}

	sort.Slice(slides, func(i, j int) bool {
		return slideOrdinal(slides[i].Name) < slideOrdinal(slides[j].Name)
	})

	return slides
}

// slideOrdinal extracts the numeric suffix from "ppt/slides/slideN.xml" so
// slides sort numerically rather than lexically (slide10 before slide2).
func slideOrdinal(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")

	n, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}

	return n
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// pptxParagraphs walks a slide's DrawingML body and groups <a:t> runs by
// their enclosing <a:p> paragraph.
func pptxParagraphs(b []byte) []string {
	dec := xml.NewDecoder(strings.NewReader(string(b)))

	var (
		paragraphs  []string
		currentRuns []string
		inParagraph bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				currentRuns = nil
			}
		case xml.CharData:
			if inParagraph {
				if s := strings.TrimSpace(string(t)); s != "" {
					currentRuns = append(currentRuns, s)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				if text := strings.TrimSpace(strings.Join(currentRuns, " ")); text != "" {
					paragraphs = append(paragraphs, text)
				}

				inParagraph = false
				currentRuns = nil
			}
		}
	}

	return paragraphs
}
