package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/localdex/engine/pkg/core"
)

// TextExtractor handles plain .txt files. It never produces a structured
// tree (spec §4.2): a .txt file is indexed as a single flat blob.
type TextExtractor struct{}

// Extract reads path and returns its content as-is, repairing invalid UTF-8
// by substitution rather than failing the file outright.
func (e *TextExtractor) Extract(path string) (core.ExtractResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return core.ExtractResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	text := string(raw)

	var warning string

	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
		warning = "file contained invalid UTF-8; invalid bytes were replaced"
	}

	return core.ExtractResult{PlainText: text, Warning: warning}, nil
}
