package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-markdown/internal/assemble"
	"github.com/a3tai/mcp-pdf-markdown/internal/model"
	"github.com/a3tai/mcp-pdf-markdown/internal/textnorm"
)

func salesTable() model.TableBlock {
	return assemble.NewTableBlock(model.BBox{X0: 50, Y0: 50, X1: 300, Y1: 150}, [][]string{
		{"Region", "Units"},
		{"North", "120"},
	})
}

func TestDecidePositioned(t *testing.T) {
	f := NewFilter(textnorm.NewNormalizer(64))
	tables := []model.TableBlock{salesTable()}

	tests := []struct {
		name string
		span model.TextSpan
		want Verdict
	}{
		{"cell text inside table", model.TextSpan{Content: "North", X: 60, Y: 60}, DropInsideTable},
		{"within margin", model.TextSpan{Content: "Caption", X: 310, Y: 160}, DropInsideTable},
		{"unrelated text below", model.TextSpan{Content: "Closing remarks", X: 60, Y: 200}, Keep},
		{"header repeated elsewhere", model.TextSpan{Content: "Region   Units", X: 400, Y: 400}, DropTableDuplicate},
		{"full table text elsewhere", model.TextSpan{Content: "Region Units\nNorth 120", X: 400, Y: 400}, DropTableDuplicate},
		{"page footer", model.TextSpan{Content: "Page 3 of 10", X: 300, Y: 760}, DropFooter},
		{"page footer slash", model.TextSpan{Content: "page 3/10", X: 300, Y: 760}, DropFooter},
		{"page footer bare", model.TextSpan{Content: "PAGE 7", X: 300, Y: 760}, DropFooter},
		{"page word in prose", model.TextSpan{Content: "Page 3 shows results", X: 300, Y: 400}, Keep},
		{"blank", model.TextSpan{Content: " \t", X: 300, Y: 400}, DropEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Decide(tt.span, tables, nil))
		})
	}
}

func TestDecideFallback(t *testing.T) {
	n := textnorm.NewNormalizer(64)
	f := NewFilter(n)
	tables := []model.TableBlock{salesTable()}

	stats := NewFallbackStats()
	stats.Observe(n.Normalize("Confidential draft"))
	stats.Observe(n.Normalize("Confidential draft"))
	stats.Observe(n.Normalize("Confidential  draft"))
	stats.Observe(n.Normalize("A unique page of scanned prose"))

	tests := []struct {
		name string
		text string
		want Verdict
	}{
		{"boilerplate on most pages", "Confidential draft", DropBoilerplate},
		{"near copy of header", "Region Unit", DropFuzzyDuplicate},
		{"exact table text", "Region Units North 120", DropFuzzyDuplicate},
		{"unique prose", "A unique page of scanned prose", Keep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Decide(model.TextSpan{Content: tt.text}, tables, stats))
		})
	}
}

func TestFallbackRepetitionNeedsEnoughPages(t *testing.T) {
	n := textnorm.NewNormalizer(8)
	f := NewFilter(n)

	stats := NewFallbackStats()
	stats.Observe("Only scanned page")
	stats.Observe("")
	require.Equal(t, 1, stats.Pages)

	assert.Equal(t, Keep, f.Decide(model.TextSpan{Content: "Only scanned page"}, nil, stats))
}

func TestApplyKeepsOrderAndReports(t *testing.T) {
	f := NewFilter(textnorm.NewNormalizer(64))
	spans := []model.TextSpan{
		{Content: "Intro", X: 60, Y: 20, Order: 0},
		{Content: "North", X: 60, Y: 60, Order: 1},
		{Content: "Page 1 of 2", X: 280, Y: 770, Order: 2},
		{Content: "Outro", X: 60, Y: 200, Order: 3},
	}

	dropped := map[string]Verdict{}
	kept := f.Apply(spans, []model.TableBlock{salesTable()}, nil, func(s model.TextSpan, v Verdict) {
		dropped[s.Content] = v
	})

	require.Len(t, kept, 2)
	assert.Equal(t, "Intro", kept[0].Content)
	assert.Equal(t, "Outro", kept[1].Content)
	assert.Equal(t, map[string]Verdict{"North": DropInsideTable, "Page 1 of 2": DropFooter}, dropped)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "inside_table", DropInsideTable.String())
	assert.Equal(t, "keep", Keep.String())
	assert.Equal(t, "unknown", Verdict(99).String())
}
