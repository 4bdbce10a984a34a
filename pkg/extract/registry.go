// Package extract implements the Extractor Registry: a closed dispatch
// table from file extension to format-specific extractor, each total
// (never raising) and returning either plain text plus optional structured
// content, or a classified skip reason (spec §4.2).
package extract

import (
	"path/filepath"
	"strings"

	"github.com/localdex/engine/pkg/core"
)

// Extractor turns a file's bytes into plain text and optional structured
// content. Implementations must never panic; internal parse failures are
// reported through the returned ExtractResult.
type Extractor interface {
	Extract(path string) (core.ExtractResult, error)
}

// Registry dispatches extraction by lowercased file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry builds the registry with the built-in extractor for every
// supported extension (spec §4.2, §6 closed set).
func NewRegistry() *Registry {
	text := &TextExtractor{}

	return &Registry{byExt: map[string]Extractor{
		".txt":  text,
		".md":   &MarkdownExtractor{},
		".docx": &DocxExtractor{},
		".pptx": &PptxExtractor{},
		".xlsx": &XlsxExtractor{},
		".pdf":  &PDFExtractor{},
	}}
}

// Extract dispatches to the extractor registered for path's extension.
// An unsupported extension returns core.ErrUnsupported.
func (r *Registry) Extract(path string) (core.ExtractResult, error) {
	ext := strings.ToLower(filepath.Ext(path))

	e, ok := r.byExt[ext]
	if !ok {
		return core.ExtractResult{}, core.ErrUnsupported
	}

	return e.Extract(path)
}

// Supports reports whether ext (lowercase, dot-prefixed) has a registered
// extractor.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}
