package assemble

import (
	"strings"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

// RenderTable converts rows of cells into a pipe table. The first row is the
// header and the separator row has one "---" per column. Rows whose cells are
// all empty are skipped.
func RenderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	cell := func(row []string, col int) string {
		if col < len(row) {
			return escapeCell(row[col])
		}
		return ""
	}

	lines := make([]string, 0, len(rows)+1)
	writeRow := func(row []string) {
		var sb strings.Builder
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			sb.WriteString(" " + cell(row, i) + " |")
		}
		lines = append(lines, sb.String())
	}

	writeRow(rows[0])
	lines = append(lines, "|"+strings.Repeat(" --- |", cols))
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		writeRow(row)
	}

	return strings.Join(lines, "\n")
}

// escapeCell keeps a cell on one line and stops pipes from splitting it.
func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NewTableBlock builds a table block from its footprint and cell grid, deriving
// the header text and Markdown rendering.
func NewTableBlock(bbox model.BBox, cells [][]string) model.TableBlock {
	trimmed := make([][]string, len(cells))
	for i, row := range cells {
		trimmed[i] = make([]string, len(row))
		for j, c := range row {
			trimmed[i][j] = strings.TrimSpace(c)
		}
	}

	var header string
	if len(trimmed) > 0 {
		header = strings.Join(trimmed[0], " ")
	}

	return model.TableBlock{
		BBox:       bbox,
		HeaderText: header,
		Cells:      trimmed,
		Markdown:   RenderTable(trimmed),
	}
}
