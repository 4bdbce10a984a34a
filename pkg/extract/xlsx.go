package extract

import (
	"fmt"
	"strings"

	"github.com/localdex/engine/pkg/core"
	"github.com/xuri/excelize/v2"
)

// XlsxExtractor handles Excel (.xlsx) spreadsheets via xuri/excelize/v2.
// Each sheet becomes one Table section; each row a TableRow of TableCell
// leaves, so result previews can render a sheet's layout.
type XlsxExtractor struct{}

// Extract reads every sheet's used rows. A corrupt workbook is reported
// as ExtractSkipped.
func (e *XlsxExtractor) Extract(path string) (core.ExtractResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.ExtractResult{
			Skipped:    true,
			SkipReason: fmt.Sprintf("could not open workbook: %v", err),
		}, nil
	}
	defer f.Close()

	root := &core.Section{Tag: core.SectionParagraph}

	var plain strings.Builder

	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}

		table := &core.Section{Tag: core.SectionTable, Runs: []core.Run{{Text: sheetName}}}

		plain.WriteString(sheetName)
		plain.WriteByte('\n')

		for _, row := range rows {
			hasText := false

			tr := &core.Section{Tag: core.SectionTableRow}

			for _, cell := range row {
				cell = strings.TrimSpace(cell)

				tr.Children = append(tr.Children, &core.Section{
					Tag:  core.SectionTableCell,
					Runs: []core.Run{{Text: cell}},
				})

				if cell != "" {
					hasText = true
					plain.WriteString(cell)
					plain.WriteByte('\t')
				}
			}

			if hasText {
				table.Children = append(table.Children, tr)
				plain.WriteByte('\n')
			}
		}

		if len(table.Children) > 0 {
			root.Children = append(root.Children, table)
		}
	}

	text := strings.TrimSpace(plain.String())

	var warning string
	if text == "" {
		warning = "no non-empty cells found"
	}

	return core.ExtractResult{PlainText: text, Structured: root, Warning: warning}, nil
}
