package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Title

Some **bold** text and a [link](https://example.com).

- first
- second

| A | B |
|---|---|
| 1 | 2 |

` + "```go\nfmt.Println(\"hi\")\n```"

func TestMarkdownExtractor_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	e := &extract.MarkdownExtractor{}

	result, err := e.Extract(path)
	require.NoError(t, err)
	require.NotNil(t, result.Structured)
	assert.Contains(t, result.PlainText, "Title")
	assert.Contains(t, result.PlainText, "bold")
	assert.Contains(t, result.PlainText, "fmt.Println")

	var headings, tables int

	var walk func(s *core.Section)
	walk = func(s *core.Section) {
		switch s.Tag {
		case core.SectionHeading:
			headings++
		case core.SectionTable:
			tables++
		}

		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(result.Structured)

	assert.Equal(t, 1, headings)
	assert.Equal(t, 1, tables)
}
