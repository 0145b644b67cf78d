package pdf

import (
	"math"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

const (
	wordGapRatio   = 0.25 // horizontal gap, as a share of font size, that separates words
	sameLineRatio  = 0.5  // baseline drift, as a share of font size, still on one line
	lineGapRatio   = 1.6  // baseline advance, as a share of font size, still in one block
	indentRatio    = 2.0  // left edge drift, as a share of font size, still in one block
	sizeEpsilon    = 0.5
	centerFromBase = 0.3 // glyph vertical center above the baseline, as a share of size
)

var allCaps = regexp.MustCompile(`^[A-Z\s]+$`)

// glyph is one character in top-origin page coordinates.
type glyph struct {
	text string
	font string
	size float64
	x    float64
	w    float64
	base float64 // baseline, measured from the top of the page
}

func (g glyph) centerX() float64 { return g.x + g.w/2 }
func (g glyph) centerY() float64 { return g.base - centerFromBase*g.size }

func toGlyphs(texts []pdf.Text, box pageBox) []glyph {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		size := math.Abs(t.FontSize)
		if size == 0 {
			size = model.DefaultFontSize
		}
		glyphs = append(glyphs, glyph{
			text: t.S,
			font: t.Font,
			size: size,
			x:    box.toLeft(t.X),
			w:    math.Abs(t.W),
			base: box.toTop(t.Y),
		})
	}
	return glyphs
}

// run is a stretch of glyphs on one line sharing a font and size.
type run struct {
	font string
	size float64
	x0   float64
	x1   float64
	base float64
	text strings.Builder
}

func (r *run) sameStyle(g glyph) bool {
	return r.font == g.font && math.Abs(r.size-g.size) < sizeEpsilon
}

func (r *run) sameLine(g glyph) bool {
	return math.Abs(r.base-g.base) <= sameLineRatio*r.size && g.x >= r.x1-r.size
}

func (r *run) endsWithSpace() bool {
	s := r.text.String()
	return s == "" || strings.HasSuffix(s, " ")
}

// buildRuns merges glyphs, in content stream order, into runs, inserting a
// space wherever the horizontal gap is wide enough to separate words.
func buildRuns(glyphs []glyph) []*run {
	var runs []*run
	var cur *run
	for _, g := range glyphs {
		space := strings.TrimSpace(g.text) == ""
		if cur != nil && cur.sameStyle(g) && cur.sameLine(g) {
			if space {
				if !cur.endsWithSpace() {
					cur.text.WriteByte(' ')
				}
			} else {
				if g.x-cur.x1 > wordGapRatio*cur.size && !cur.endsWithSpace() {
					cur.text.WriteByte(' ')
				}
				cur.text.WriteString(g.text)
			}
			cur.x1 = math.Max(cur.x1, g.x+g.w)
			continue
		}
		if space {
			continue
		}
		cur = &run{font: g.font, size: g.size, x0: g.x, x1: g.x + g.w, base: g.base}
		cur.text.WriteString(g.text)
		runs = append(runs, cur)
	}
	return runs
}

// block is a group of consecutive lines set in the same font.
type block struct {
	font  string
	size  float64
	x0    float64
	x1    float64
	top   float64
	last  float64 // baseline of the last line
	lines []string
}

func (b *block) accepts(r *run) bool {
	if b.font != r.font || math.Abs(b.size-r.size) >= sizeEpsilon {
		return false
	}
	advance := r.base - b.last
	return advance > sameLineRatio*b.size &&
		advance <= lineGapRatio*b.size &&
		math.Abs(r.x0-b.x0) <= indentRatio*b.size
}

func buildBlocks(runs []*run) []*block {
	var blocks []*block
	for _, r := range runs {
		line := strings.TrimSpace(r.text.String())
		if line == "" {
			continue
		}
		if n := len(blocks); n > 0 && blocks[n-1].accepts(r) {
			b := blocks[n-1]
			b.lines = append(b.lines, line)
			b.last = r.base
			b.x0 = math.Min(b.x0, r.x0)
			b.x1 = math.Max(b.x1, r.x1)
			continue
		}
		blocks = append(blocks, &block{
			font:  r.font,
			size:  r.size,
			x0:    r.x0,
			x1:    r.x1,
			top:   r.base - r.size,
			last:  r.base,
			lines: []string{line},
		})
	}
	return blocks
}

// fontWeight reads the weight from the font name. Without a font name, text
// set entirely in capitals is treated as bold.
func fontWeight(fontName, content string) model.FontWeight {
	if fontName != "" {
		if strings.Contains(strings.ToLower(fontName), "bold") {
			return model.WeightBold
		}
		return model.WeightNormal
	}
	if allCaps.MatchString(content) {
		return model.WeightBold
	}
	return model.WeightNormal
}

// buildSpans turns a page's glyphs into positioned spans, one per block.
func buildSpans(glyphs []glyph, pageNum int) ([]model.TextSpan, []*block) {
	blocks := buildBlocks(buildRuns(glyphs))
	spans := make([]model.TextSpan, 0, len(blocks))
	for i, b := range blocks {
		content := norm.NFC.String(strings.Join(b.lines, "\n"))
		x, y := b.x0, math.Max(b.top, 0)
		if x == 0 && y == 0 {
			// (0,0) marks unpositioned fallback text
			x = math.SmallestNonzeroFloat64
		}
		spans = append(spans, model.TextSpan{
			Content:    content,
			Page:       pageNum,
			X:          x,
			Y:          y,
			FontSize:   b.size,
			FontWeight: fontWeight(b.font, content),
			FontName:   b.font,
			FontColor:  model.DefaultFontColor,
			BgColor:    model.DefaultBgColor,
			Order:      i,
		})
	}
	return spans, blocks
}
