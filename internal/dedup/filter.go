// Package dedup drops text spans that repeat what a table already shows or that
// look like page furniture repeated across the document.
package dedup

import (
	"regexp"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
	"github.com/a3tai/mcp-pdf-markdown/internal/textnorm"
)

// Defaults for the filter.
const (
	DefaultMargin                  = 20.0
	DefaultFuzzyThreshold          = 90.0
	DefaultFallbackRepeatThreshold = 0.7
	DefaultMinFallbackPages        = 2
)

var footerPattern = regexp.MustCompile(`(?i)^Page\s*\d+(\s*(of|/)\s*\d+)?\s*$`)

// Verdict is the filter's decision for one span.
type Verdict int

const (
	Keep Verdict = iota
	DropEmpty
	DropFooter
	DropInsideTable
	DropTableDuplicate
	DropBoilerplate
	DropFuzzyDuplicate
)

// String returns a string representation of the verdict
func (v Verdict) String() string {
	switch v {
	case Keep:
		return "keep"
	case DropEmpty:
		return "empty"
	case DropFooter:
		return "footer"
	case DropInsideTable:
		return "inside_table"
	case DropTableDuplicate:
		return "table_duplicate"
	case DropBoilerplate:
		return "boilerplate"
	case DropFuzzyDuplicate:
		return "fuzzy_duplicate"
	default:
		return "unknown"
	}
}

// FallbackStats counts normalized fallback page text across the document.
type FallbackStats struct {
	Frequency map[string]int
	Pages     int
}

// NewFallbackStats creates empty statistics
func NewFallbackStats() *FallbackStats {
	return &FallbackStats{Frequency: make(map[string]int)}
}

// Observe records one page's fallback text. Blank text is not counted.
func (fs *FallbackStats) Observe(normalized string) {
	if normalized == "" {
		return
	}
	fs.Frequency[normalized]++
	fs.Pages++
}

// Filter applies the deduplication rules.
type Filter struct {
	Margin                  float64
	FuzzyThreshold          float64
	FallbackRepeatThreshold float64
	MinFallbackPages        int

	normalizer *textnorm.Normalizer
}

// NewFilter creates a filter with default thresholds using normalizer n
func NewFilter(n *textnorm.Normalizer) *Filter {
	return &Filter{
		Margin:                  DefaultMargin,
		FuzzyThreshold:          DefaultFuzzyThreshold,
		FallbackRepeatThreshold: DefaultFallbackRepeatThreshold,
		MinFallbackPages:        DefaultMinFallbackPages,
		normalizer:              n,
	}
}

// tableIndex holds the strings a page's tables are compared against.
type tableIndex struct {
	boxes      []model.BBox
	normalized map[string]struct{}
	candidates []string
}

func (f *Filter) index(tables []model.TableBlock) tableIndex {
	idx := tableIndex{normalized: make(map[string]struct{}, 2*len(tables))}
	for _, t := range tables {
		idx.boxes = append(idx.boxes, t.BBox.Expand(f.Margin))
		for _, s := range []string{t.HeaderText, t.FullText()} {
			n := f.normalizer.Normalize(s)
			if n == "" {
				continue
			}
			idx.normalized[n] = struct{}{}
			idx.candidates = append(idx.candidates, n)
		}
	}
	return idx
}

// Decide returns the verdict for one span against a page's tables.
func (f *Filter) Decide(span model.TextSpan, tables []model.TableBlock, stats *FallbackStats) Verdict {
	return f.decide(span, f.index(tables), stats)
}

func (f *Filter) decide(span model.TextSpan, idx tableIndex, stats *FallbackStats) Verdict {
	norm := f.normalizer.Normalize(span.Content)
	if norm == "" {
		return DropEmpty
	}
	if footerPattern.MatchString(norm) {
		return DropFooter
	}

	if span.HasPosition() {
		for _, box := range idx.boxes {
			if box.Contains(span.X, span.Y) {
				return DropInsideTable
			}
		}
		if _, ok := idx.normalized[norm]; ok {
			return DropTableDuplicate
		}
		return Keep
	}

	if stats != nil && stats.Pages >= f.MinFallbackPages {
		ratio := float64(stats.Frequency[norm]) / float64(stats.Pages)
		if ratio >= f.FallbackRepeatThreshold {
			return DropBoilerplate
		}
	}
	for _, c := range idx.candidates {
		if c == norm || textnorm.Ratio(norm, c) >= f.FuzzyThreshold {
			return DropFuzzyDuplicate
		}
	}
	return Keep
}

// Apply returns the spans that survive, in their original order. When report
// is non-nil it is called with every dropped span and its verdict.
func (f *Filter) Apply(spans []model.TextSpan, tables []model.TableBlock, stats *FallbackStats,
	report func(model.TextSpan, Verdict),
) []model.TextSpan {
	idx := f.index(tables)
	kept := make([]model.TextSpan, 0, len(spans))
	for _, s := range spans {
		v := f.decide(s, idx, stats)
		if v == Keep {
			kept = append(kept, s)
			continue
		}
		if report != nil {
			report(s, v)
		}
	}
	return kept
}
