package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageBox is a page's MediaBox in PDF user space (origin bottom-left).
type pageBox struct {
	LLX, LLY, URX, URY float64
}

// US Letter, used when no MediaBox can be found.
var defaultPageBox = pageBox{LLX: 0, LLY: 0, URX: 612, URY: 792}

func (b pageBox) Width() float64  { return b.URX - b.LLX }
func (b pageBox) Height() float64 { return b.URY - b.LLY }

// toTop converts a user-space y to a distance from the top edge of the page.
func (b pageBox) toTop(y float64) float64 { return b.URY - y }

// toLeft converts a user-space x to a distance from the left edge of the page.
func (b pageBox) toLeft(x float64) float64 { return x - b.LLX }

// mediaBox returns the page's MediaBox, walking up the page tree for an
// inherited one, and falling back to US Letter.
func mediaBox(page pdf.Page) (box pageBox, err error) {
	defer func() {
		if r := recover(); r != nil {
			box, err = defaultPageBox, fmt.Errorf("panic during MediaBox extraction: %v", r)
		}
	}()

	if v := page.V.Key("MediaBox"); !v.IsNull() {
		if b, err := parseMediaBoxValue(v); err == nil {
			return b, nil
		}
	}

	current := page.V
	for i := 0; i < 10; i++ { // Limit iterations to prevent infinite loops
		parent := current.Key("Parent")
		if parent.IsNull() {
			break
		}
		if v := parent.Key("MediaBox"); !v.IsNull() {
			if b, err := parseMediaBoxValue(v); err == nil {
				return b, nil
			}
		}
		current = parent
	}

	return defaultPageBox, fmt.Errorf("no valid MediaBox found")
}

// parseMediaBoxValue parses a MediaBox array, tolerating inverted corners
func parseMediaBoxValue(v pdf.Value) (pageBox, error) {
	if v.Kind() != pdf.Array {
		return pageBox{}, fmt.Errorf("MediaBox is not an array: %v", v.Kind())
	}
	if v.Len() != 4 {
		return pageBox{}, fmt.Errorf("invalid MediaBox array length: %d, expected 4", v.Len())
	}

	var coords [4]float64
	for i := 0; i < 4; i++ {
		val := v.Index(i)
		switch val.Kind() {
		case pdf.Integer:
			coords[i] = float64(val.Int64())
		case pdf.Real:
			coords[i] = val.Float64()
		default:
			f, err := parseFloatValue(val.Text())
			if err != nil {
				return pageBox{}, fmt.Errorf("invalid coordinate type at index %d: %v", i, val.Kind())
			}
			coords[i] = f
		}
	}

	llx, lly, urx, ury := coords[0], coords[1], coords[2], coords[3]
	if llx > urx {
		llx, urx = urx, llx
	}
	if lly > ury {
		lly, ury = ury, lly
	}
	if urx == llx || ury == lly {
		return pageBox{}, fmt.Errorf("invalid MediaBox dimensions: [%.2f %.2f %.2f %.2f]", llx, lly, urx, ury)
	}

	return pageBox{LLX: llx, LLY: lly, URX: urx, URY: ury}, nil
}

// parseFloatValue parses a number that may carry a stray suffix
func parseFloatValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if strings.HasSuffix(s, "f") || strings.HasSuffix(s, "F") {
		if f, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unable to parse '%s' as float", s)
}
