package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/localdex/engine/pkg/core"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles .md files. Unlike TextExtractor it produces a
// structured content tree (headings, paragraphs, lists, tables, code
// blocks) by walking the goldmark AST with the same ast.Walk-driven
// plain-text extraction pattern as a markdown rendering provider,
// retargeted here to build a core.Section tree rather than rendered HTML.
type MarkdownExtractor struct{}

var mdParser = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithExtensions(extension.GFM),
)

// Extract parses path as CommonMark+GFM and returns both its plain text
// (for full-text indexing) and its structured tree (for result previews).
func (e *MarkdownExtractor) Extract(path string) (core.ExtractResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return core.ExtractResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	reader := text.NewReader(src)
	doc := mdParser.Parser().Parse(reader)

	root := &core.Section{Tag: core.SectionParagraph}
	stack := []*core.Section{root}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		parent := stack[len(stack)-1]

		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				h := &core.Section{Tag: core.SectionHeading, Level: node.Level, Runs: []core.Run{{Text: nodeText(node, src)}}}
				parent.Children = append(parent.Children, h)
			}

			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if entering {
				p := &core.Section{Tag: core.SectionParagraph, Runs: inlineRuns(node, src)}
				parent.Children = append(parent.Children, p)
			}

			return ast.WalkSkipChildren, nil
		case *ast.List:
			if entering {
				l := &core.Section{Tag: core.SectionListItem, Ordered: node.IsOrdered()}
				parent.Children = append(parent.Children, l)
				stack = append(stack, l)
			} else {
				stack = stack[:len(stack)-1]
			}

			return ast.WalkContinue, nil
		case *ast.ListItem:
			if entering {
				depth := len(stack) - 1
				item := &core.Section{Tag: core.SectionListItem, Depth: depth, Runs: []core.Run{{Text: nodeText(node, src)}}}
				parent.Children = append(parent.Children, item)
			}

			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if entering {
				var buf bytes.Buffer

				lines := node.Lines()
				for i := range lines.Len() {
					line := lines.At(i)
					buf.Write(line.Value(src))
				}

				parent.Children = append(parent.Children, &core.Section{Tag: core.SectionCodeBlock, Runs: []core.Run{{Text: buf.String()}}})
			}

			return ast.WalkSkipChildren, nil
		case *ast.ThematicBreak:
			if entering {
				parent.Children = append(parent.Children, &core.Section{Tag: core.SectionHorizontalRule})
			}

			return ast.WalkContinue, nil
		case *east.Table:
			if entering {
				t := &core.Section{Tag: core.SectionTable}
				parent.Children = append(parent.Children, t)
				stack = append(stack, t)
			} else {
				stack = stack[:len(stack)-1]
			}

			return ast.WalkContinue, nil
		case *east.TableRow, *east.TableHeader:
			if entering {
				r := &core.Section{Tag: core.SectionTableRow}
				parent.Children = append(parent.Children, r)
				stack = append(stack, r)
			} else {
				stack = stack[:len(stack)-1]
			}

			return ast.WalkContinue, nil
		case *east.TableCell:
			if entering {
				parent.Children = append(parent.Children, &core.Section{Tag: core.SectionTableCell, Runs: []core.Run{{Text: nodeText(node, src)}}})
			}

			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return core.ExtractResult{PlainText: plainText(doc, src), Structured: root}, nil
}

// nodeText concatenates the text content of n's subtree, ignoring markup.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || child == n {
			return ast.WalkContinue, nil
		}

		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		}

		return ast.WalkContinue, nil
	})

	return buf.String()
}

// inlineRuns splits a paragraph's inline content into Runs carrying
// character-level emphasis, so search-result previews can render bold and
// italic spans faithfully.
func inlineRuns(n ast.Node, src []byte) []core.Run {
	var runs []core.Run

	var walk func(node ast.Node, bold, italic bool)

	walk = func(node ast.Node, bold, italic bool) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Text:
				runs = append(runs, core.Run{Text: string(c.Segment.Value(src)), Bold: bold, Italic: italic})
			case *ast.Emphasis:
				nb, ni := bold, italic
				if c.Level == 2 {
					nb = true
				} else {
					ni = true
				}

				walk(c, nb, ni)
			case *ast.CodeSpan:
				runs = append(runs, core.Run{Text: nodeText(c, src)})
			case *ast.Link:
				runs = append(runs, core.Run{Text: nodeText(c, src)})
			default:
				walk(c, bold, italic)
			}
		}
	}

	walk(n, false, false)

	return runs
}

// plainText renders doc's text content with the same whitespace-
// normalization rules so indexed content reads naturally.
func plainText(doc ast.Node, src []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))

			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.CodeSpan:
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if t, ok := child.(*ast.Text); ok {
					buf.Write(t.Segment.Value(src))
				}
			}

			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := range lines.Len() {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}

			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
				buf.WriteByte('\n')
			}
		case *east.Table, *east.TableRow, *east.TableHeader:
			if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
				buf.WriteByte('\n')
			}
		case *east.TableCell:
			if node.PreviousSibling() != nil {
				buf.WriteByte('\t')
			}
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String())
}
