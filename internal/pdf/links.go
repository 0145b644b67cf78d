package pdf

import (
	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

// link is a URI annotation and the area of the page it covers.
type link struct {
	uri  string
	area model.BBox
}

// pageLinks reads the URI link annotations of a page.
func pageLinks(page pdf.Page, box pageBox) []link {
	annots := page.V.Key("Annots")
	if annots.Kind() != pdf.Array {
		return nil
	}

	var links []link
	for i := 0; i < annots.Len(); i++ {
		annot := annots.Index(i)
		if annot.Key("Subtype").Name() != "Link" {
			continue
		}
		action := annot.Key("A")
		if action.Key("S").Name() != "URI" {
			continue
		}
		uri := action.Key("URI").Text()
		rect := annot.Key("Rect")
		if uri == "" || rect.Kind() != pdf.Array || rect.Len() < 4 {
			continue
		}

		x0, y0 := rect.Index(0).Float64(), rect.Index(1).Float64()
		x1, y1 := rect.Index(2).Float64(), rect.Index(3).Float64()
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		links = append(links, link{
			uri: uri,
			area: model.BBox{
				X0: box.toLeft(x0),
				Y0: box.toTop(y1),
				X1: box.toLeft(x1),
				Y1: box.toTop(y0),
			},
		})
	}
	return links
}

// attachLinks sets the link of every span whose first line is centered inside
// a link annotation.
func attachLinks(spans []model.TextSpan, blocks []*block, links []link) {
	if len(links) == 0 {
		return
	}
	for i := range spans {
		b := blocks[i]
		cx := (b.x0 + b.x1) / 2
		cy := b.top + b.size/2
		for _, l := range links {
			if l.area.Expand(1).Contains(cx, cy) {
				spans[i].Link = l.uri
				break
			}
		}
	}
}
