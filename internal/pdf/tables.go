package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-markdown/internal/assemble"
	"github.com/a3tai/mcp-pdf-markdown/internal/layout"
	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

const (
	snapTolerance  = 2.0 // ruling edges closer than this are the same edge
	pageCoverRatio = 0.9 // rectangles covering this share of the page are backgrounds
	minRuleExtent  = 0.5 // rectangles thinner than this in both directions are noise
	minTableCells  = 2
	minFilledCells = 2
)

// tableDetector finds ruled tables: rectangles drawn with the "re" operator,
// either as cell borders or as thin rules, that touch each other.
type tableDetector struct {
	box pageBox
}

func (d tableDetector) boxes(rects []pdf.Rect) []model.BBox {
	out := make([]model.BBox, 0, len(rects))
	for _, r := range rects {
		x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
		b := model.BBox{
			X0: d.box.toLeft(x0),
			Y0: d.box.toTop(y1),
			X1: d.box.toLeft(x1),
			Y1: d.box.toTop(y0),
		}
		if b.Width() < minRuleExtent && b.Height() < minRuleExtent {
			continue
		}
		if b.Width() >= pageCoverRatio*d.box.Width() && b.Height() >= pageCoverRatio*d.box.Height() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// components groups boxes that touch, within the snap tolerance.
func components(boxes []model.BBox) [][]model.BBox {
	parent := make([]int, len(boxes))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range boxes {
		a := boxes[i].Expand(snapTolerance)
		for j := i + 1; j < len(boxes); j++ {
			b := boxes[j]
			if a.X0 <= b.X1 && b.X0 <= a.X1 && a.Y0 <= b.Y1 && b.Y0 <= a.Y1 {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]model.BBox)
	var roots []int
	for i, b := range boxes {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], b)
	}

	out := make([][]model.BBox, 0, len(roots))
	for _, r := range roots {
		out = append(out, groups[r])
	}
	return out
}

// edges clusters the given coordinates and returns the sorted band centers.
func edges(values []float64) []float64 {
	centers := layout.Centers(layout.Cluster(values, snapTolerance))
	sort.Float64s(centers)
	return centers
}

// cellIndex returns i such that edges[i] <= v < edges[i+1], or -1.
func cellIndex(edges []float64, v float64) int {
	for i := 0; i+1 < len(edges); i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return -1
}

// detect returns the tables on a page, with cell text taken from glyphs.
func (d tableDetector) detect(rects []pdf.Rect, glyphs []glyph) []model.TableBlock {
	var tables []model.TableBlock
	for _, group := range components(d.boxes(rects)) {
		if len(group) < 2 {
			continue
		}

		var xs, ys []float64
		for _, b := range group {
			xs = append(xs, b.X0, b.X1)
			ys = append(ys, b.Y0, b.Y1)
		}
		colEdges, rowEdges := edges(xs), edges(ys)
		cols, rows := len(colEdges)-1, len(rowEdges)-1
		if cols < 1 || rows < 1 || cols*rows < minTableCells {
			continue
		}

		cellGlyphs := make([][][]glyph, rows)
		for i := range cellGlyphs {
			cellGlyphs[i] = make([][]glyph, cols)
		}
		for _, g := range glyphs {
			r, c := cellIndex(rowEdges, g.centerY()), cellIndex(colEdges, g.centerX())
			if r >= 0 && c >= 0 {
				cellGlyphs[r][c] = append(cellGlyphs[r][c], g)
			}
		}

		cells := make([][]string, rows)
		filled := 0
		for r := range cells {
			cells[r] = make([]string, cols)
			for c := range cells[r] {
				cells[r][c] = cellText(cellGlyphs[r][c])
				if cells[r][c] != "" {
					filled++
				}
			}
		}
		if filled < minFilledCells {
			continue
		}

		bbox := model.BBox{X0: colEdges[0], Y0: rowEdges[0], X1: colEdges[cols], Y1: rowEdges[rows]}
		tables = append(tables, assemble.NewTableBlock(bbox, cells))
	}

	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].BBox.Y0 < tables[j].BBox.Y0
	})
	return tables
}

func cellText(glyphs []glyph) string {
	if len(glyphs) == 0 {
		return ""
	}
	var parts []string
	for _, r := range buildRuns(glyphs) {
		if s := strings.TrimSpace(r.text.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
