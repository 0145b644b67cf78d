package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

func TestRenderTable(t *testing.T) {
	rows := [][]string{
		{"Region", "Sales"},
		{"North", "10"},
		{"", " "},
		{"South|West", "20"},
	}

	want := "| Region | Sales |\n" +
		"| --- | --- |\n" +
		"| North | 10 |\n" +
		"| South\\|West | 20 |"
	assert.Equal(t, want, RenderTable(rows))
}

func TestRenderTableRaggedRows(t *testing.T) {
	got := RenderTable([][]string{{"a"}, {"b", "c", "d"}})
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "| a |  |  |", lines[0])
	assert.Equal(t, "| --- | --- | --- |", lines[1])
	assert.Equal(t, "| b | c | d |", lines[2])

	assert.Empty(t, RenderTable(nil))
	assert.Empty(t, RenderTable([][]string{{}}))
}

func TestNewTableBlock(t *testing.T) {
	tb := NewTableBlock(model.BBox{X0: 1, Y0: 2, X1: 3, Y1: 4}, [][]string{
		{" Name ", "Qty"},
		{"Widget", " 4"},
	})

	assert.Equal(t, "Name Qty", tb.HeaderText)
	assert.Equal(t, "Name Qty\nWidget 4", tb.FullText())
	assert.Equal(t, "| Name | Qty |\n| --- | --- |\n| Widget | 4 |", tb.Markdown)
}

func TestPageAssemblerOrdering(t *testing.T) {
	a := NewPageAssembler(nil)

	table := NewTableBlock(model.BBox{X0: 50, Y0: 100, X1: 300, Y1: 140}, [][]string{{"h"}, {"v"}})
	// discovery order deliberately differs from reading order
	spans := []model.TextSpan{
		{Content: "below the table", X: 50, Y: 150, FontSize: 10},
		{Content: "above the table", X: 50, Y: 50, FontSize: 10},
	}

	got := a.Assemble([]model.TableBlock{table}, spans)
	want := "above the table\n\n" + table.Markdown + "\n\nbelow the table"
	assert.Equal(t, want, got)
}

func TestPageAssemblerTieBreaks(t *testing.T) {
	a := NewPageAssembler(nil)

	spans := []model.TextSpan{
		{Content: "right", X: 300, Y: 80, FontSize: 10},
		{Content: "left", X: 40, Y: 80, FontSize: 10},
		{Content: "first", X: 40, Y: 80, FontSize: 10},
	}

	elements := a.Elements(nil, spans)
	require.Len(t, elements, 3)
	assert.Equal(t, "left", elements[0].Span.Content)
	assert.Equal(t, "first", elements[1].Span.Content)
	assert.Equal(t, "right", elements[2].Span.Content)

	// order indices are strictly increasing in discovery order, tables first
	table := NewTableBlock(model.BBox{X0: 0, Y0: 500, X1: 10, Y1: 510}, [][]string{{"x"}})
	elements = a.Elements([]model.TableBlock{table}, spans[:1])
	assert.Equal(t, 1, elements[0].Order())
	assert.Equal(t, 0, elements[1].Order())
}

func TestPageAssemblerEmpty(t *testing.T) {
	a := NewPageAssembler(nil)
	assert.Equal(t, "", a.Assemble(nil, nil))
	assert.Equal(t, "", a.Assemble(nil, []model.TextSpan{{Content: " \n ", X: 1, Y: 1}}))
}

func TestDocumentAssembler(t *testing.T) {
	var d DocumentAssembler
	assert.Equal(t, "", d.String())

	d.Add("# One")
	d.Add("")
	d.Add("  \n")
	d.Add("Two")

	assert.Equal(t, 2, d.Pages())
	assert.Equal(t, "# One\n\n---\n\nTwo\n", d.String())
}
