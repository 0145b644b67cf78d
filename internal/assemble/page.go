// Package assemble orders a page's tables and text into reading order, renders
// them to Markdown and stitches the pages into one document.
package assemble

import (
	"sort"
	"strings"

	"github.com/a3tai/mcp-pdf-markdown/internal/classify"
	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

// PageSeparator marks the boundary between two pages with content.
const PageSeparator = "---"

// PageAssembler renders one page at a time.
type PageAssembler struct {
	classifier *classify.Classifier
}

// NewPageAssembler creates a page assembler that renders text with c
func NewPageAssembler(c *classify.Classifier) *PageAssembler {
	if c == nil {
		c = classify.New()
	}
	return &PageAssembler{classifier: c}
}

// Elements assigns order indices, tables first and then spans, each group in
// the order given, and returns the elements sorted by (y, x, order).
func (a *PageAssembler) Elements(tables []model.TableBlock, spans []model.TextSpan) []model.PageElement {
	elements := make([]model.PageElement, 0, len(tables)+len(spans))
	order := 0
	for i := range tables {
		t := tables[i]
		t.Order = order
		order++
		elements = append(elements, model.TableElement(&t))
	}
	for i := range spans {
		s := spans[i]
		s.Order = order
		order++
		elements = append(elements, model.TextElement(&s))
	}

	sort.SliceStable(elements, func(i, j int) bool {
		ei, ej := elements[i], elements[j]
		if ei.Y() != ej.Y() {
			return ei.Y() < ej.Y()
		}
		if ei.X() != ej.X() {
			return ei.X() < ej.X()
		}
		return ei.Order() < ej.Order()
	})

	return elements
}

// Assemble renders the page. A page with nothing to show returns "".
func (a *PageAssembler) Assemble(tables []model.TableBlock, spans []model.TextSpan) string {
	elements := a.Elements(tables, spans)

	fragments := make([]string, 0, len(elements))
	for _, e := range elements {
		var rendered string
		switch e.Kind {
		case model.KindTable:
			if e.Table.Markdown == "" {
				continue
			}
			rendered = "\n" + e.Table.Markdown + "\n"
		case model.KindText:
			rendered = a.classifier.ProcessTextItem(*e.Span)
		}
		if strings.TrimSpace(rendered) == "" {
			continue
		}
		fragments = append(fragments, rendered)
	}

	return strings.Trim(strings.Join(fragments, "\n"), "\n")
}

// DocumentAssembler collects rendered pages in source order.
type DocumentAssembler struct {
	sb    strings.Builder
	pages int
}

// Add appends a page fragment. Empty fragments are skipped and never produce
// a separator.
func (d *DocumentAssembler) Add(fragment string) {
	if strings.TrimSpace(fragment) == "" {
		return
	}
	if d.pages > 0 {
		d.sb.WriteString("\n\n" + PageSeparator + "\n\n")
	}
	d.sb.WriteString(fragment)
	d.pages++
}

// Pages returns how many pages contributed content.
func (d *DocumentAssembler) Pages() int { return d.pages }

// String returns the document built so far.
func (d *DocumentAssembler) String() string {
	if d.pages == 0 {
		return ""
	}
	return d.sb.String() + "\n"
}
