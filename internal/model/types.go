// Package model holds the values that flow through the Markdown reconstruction
// pipeline: positioned text spans, detected tables and the page elements built from them.
package model

import "strings"

// FontWeight is the typographic weight of a span.
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightBold
)

// String returns a string representation of the weight
func (w FontWeight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// Default colours assumed when the extraction engine reports none.
const (
	DefaultFontColor = "#000000"
	DefaultBgColor   = "#ffffff"
	DefaultFontSize  = 12.0
)

// PositionCluster is a band of numerically close coordinates collapsed to one center.
type PositionCluster struct {
	Center float64 `json:"center"`
	Count  int     `json:"member_count"`
}

// BBox is an axis-aligned box in top-origin page coordinates.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Expand grows the box by margin on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{X0: b.X0 - margin, Y0: b.Y0 - margin, X1: b.X1 + margin, Y1: b.Y1 + margin}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// TextSpan is a run of text discovered on a page. Spans recovered through the
// fallback path carry no position and sit at the (0,0) placeholder.
type TextSpan struct {
	Content    string     `json:"content"`
	Page       int        `json:"page"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	FontSize   float64    `json:"font_size"`
	FontWeight FontWeight `json:"font_weight"`
	FontName   string     `json:"font_name,omitempty"`
	FontColor  string     `json:"font_color,omitempty"`
	BgColor    string     `json:"bg_color,omitempty"`
	Link       string     `json:"link,omitempty"`
	Order      int        `json:"order"`
}

// HasPosition reports whether the span carries real coordinates.
func (s TextSpan) HasPosition() bool {
	return s.X != 0 || s.Y != 0
}

// Bold reports whether the span is set in a bold face.
func (s TextSpan) Bold() bool {
	return s.FontWeight == WeightBold
}

// Highlighted reports whether either colour differs from plain black on white.
func (s TextSpan) Highlighted() bool {
	switch strings.ToLower(strings.TrimSpace(s.FontColor)) {
	case "", "#000000", "#000", "black":
	default:
		return true
	}
	bg := strings.ToLower(strings.TrimSpace(s.BgColor))
	return bg != "" && bg != DefaultBgColor
}

// Text returns the content as it should be rendered, wrapping hyperlinks.
func (s TextSpan) Text() string {
	if s.Link == "" {
		return s.Content
	}
	return "[" + s.Content + "](" + s.Link + ")"
}

// TableBlock is a table detected on a page together with its derived strings.
type TableBlock struct {
	BBox       BBox       `json:"bbox"`
	HeaderText string     `json:"header_text"`
	Cells      [][]string `json:"cells"`
	Markdown   string     `json:"markdown"`
	Order      int        `json:"order"`
}

// FullText returns every row's cells joined by spaces, one row per line.
func (t TableBlock) FullText() string {
	rows := make([]string, 0, len(t.Cells))
	for _, row := range t.Cells {
		rows = append(rows, strings.Join(row, " "))
	}
	return strings.Join(rows, "\n")
}

// ElementKind tags the variant held by a PageElement.
type ElementKind int

const (
	KindText ElementKind = iota
	KindTable
)

// PageElement is either a text span or a table, sortable by (y, x, order).
type PageElement struct {
	Kind  ElementKind
	Span  *TextSpan
	Table *TableBlock
}

// TextElement wraps a span.
func TextElement(s *TextSpan) PageElement {
	return PageElement{Kind: KindText, Span: s}
}

// TableElement wraps a table.
func TableElement(t *TableBlock) PageElement {
	return PageElement{Kind: KindTable, Table: t}
}

// Y returns the top of the element.
func (e PageElement) Y() float64 {
	if e.Kind == KindTable {
		return e.Table.BBox.Y0
	}
	return e.Span.Y
}

// X returns the left edge of the element.
func (e PageElement) X() float64 {
	if e.Kind == KindTable {
		return e.Table.BBox.X0
	}
	return e.Span.X
}

// Order returns the discovery index of the element.
func (e PageElement) Order() int {
	if e.Kind == KindTable {
		return e.Table.Order
	}
	return e.Span.Order
}
