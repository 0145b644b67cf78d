// Package pipeline runs the page-layout reconstruction over a paginated source:
// repeated band detection, deduplication, classification and assembly.
package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-pdf-markdown/internal/assemble"
	"github.com/a3tai/mcp-pdf-markdown/internal/classify"
	"github.com/a3tai/mcp-pdf-markdown/internal/dedup"
	converr "github.com/a3tai/mcp-pdf-markdown/internal/errors"
	"github.com/a3tai/mcp-pdf-markdown/internal/layout"
	"github.com/a3tai/mcp-pdf-markdown/internal/model"
	"github.com/a3tai/mcp-pdf-markdown/internal/textnorm"
)

// PageContent is what the extraction engine found on one page.
type PageContent struct {
	Height float64
	Spans  []model.TextSpan
	Tables []model.TableBlock
}

// PageSource supplies positioned content for a paginated document. Pages are 1-based.
type PageSource interface {
	NumPages() int
	Page(n int) (PageContent, error)
	PlainText(n int) (string, error)
}

// OCR recognizes the text of a rendered page.
type OCR interface {
	PageText(ctx context.Context, n int) (string, error)
}

// Options tunes the pipeline.
type Options struct {
	Tolerance               float64
	RepeatThreshold         float64
	FooterRatio             float64
	Margin                  float64
	FuzzyThreshold          float64
	FallbackRepeatThreshold float64
}

// DefaultOptions returns the default tunables
func DefaultOptions() Options {
	return Options{
		Tolerance:               layout.DefaultTolerance,
		RepeatThreshold:         layout.DefaultRepeatThreshold,
		FooterRatio:             layout.DefaultBottomRatio,
		Margin:                  dedup.DefaultMargin,
		FuzzyThreshold:          dedup.DefaultFuzzyThreshold,
		FallbackRepeatThreshold: dedup.DefaultFallbackRepeatThreshold,
	}
}

// Result is the outcome of converting one document.
type Result struct {
	Markdown         string
	Pages            int
	PagesWithContent int
	Warnings         *converr.ErrorCollection
}

// Converter turns a page source into Markdown. It holds no per-document state
// and can be shared by concurrent conversions.
type Converter struct {
	detector   *layout.RepeatedBandDetector
	filter     *dedup.Filter
	pages      *assemble.PageAssembler
	normalizer *textnorm.Normalizer
	log        zerolog.Logger
}

// New creates a converter
func New(opts Options, n *textnorm.Normalizer, log zerolog.Logger) *Converter {
	detector := layout.NewRepeatedBandDetector()
	detector.Tolerance = opts.Tolerance
	detector.Threshold = opts.RepeatThreshold
	detector.BottomRatio = opts.FooterRatio

	filter := dedup.NewFilter(n)
	filter.Margin = opts.Margin
	filter.FuzzyThreshold = opts.FuzzyThreshold
	filter.FallbackRepeatThreshold = opts.FallbackRepeatThreshold

	return &Converter{
		detector:   detector,
		filter:     filter,
		pages:      assemble.NewPageAssembler(classify.New()),
		normalizer: n,
		log:        log,
	}
}

type pageState struct {
	content  PageContent
	fallback string
}

// Convert reads every page of src and returns the assembled document. ocr may
// be nil. Per-page failures are recorded as warnings and never abort the run.
func (c *Converter) Convert(ctx context.Context, src PageSource, ocr OCR) (*Result, error) {
	total := src.NumPages()
	result := &Result{Pages: total, Warnings: converr.NewErrorCollection("")}

	states := make([]pageState, total)
	stats := dedup.NewFallbackStats()
	var obs []layout.Observation

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, converr.Canceled(err)
		}
		pageNum := i + 1

		content, err := src.Page(pageNum)
		if err != nil {
			result.Warnings.Add(converr.PageExtraction(pageNum, err))
			c.log.Warn().Err(err).Int("page", pageNum).Msg("positioned extraction failed, using fallback")
			content = PageContent{}
		}
		states[i].content = content

		for _, s := range content.Spans {
			if s.HasPosition() {
				obs = append(obs, layout.Observation{Page: pageNum, Y: s.Y, PageHeight: content.Height})
			}
		}

		text := c.fallbackText(ctx, src, ocr, pageNum, len(content.Spans) == 0, result.Warnings)
		states[i].fallback = text
		stats.Observe(c.normalizer.Normalize(text))
	}

	bands := c.detector.ExclusionSet(obs, total)
	if bands.Len() > 0 {
		c.log.Debug().Floats64("bands", bands.Centers()).Msg("repeated bands excluded")
	}

	var doc assemble.DocumentAssembler
	for i, st := range states {
		if err := ctx.Err(); err != nil {
			return nil, converr.Canceled(err)
		}
		pageNum := i + 1

		spans := c.pageSpans(pageNum, st, bands)
		kept := c.filter.Apply(spans, st.content.Tables, stats, func(s model.TextSpan, v dedup.Verdict) {
			c.log.Debug().Int("page", pageNum).Str("verdict", v.String()).Str("text", s.Content).Msg("span dropped")
		})

		fragment := c.pages.Assemble(st.content.Tables, kept)
		c.log.Debug().
			Int("page", pageNum).
			Int("spans", len(kept)).
			Int("tables", len(st.content.Tables)).
			Bool("empty", fragment == "").
			Msg("page assembled")
		doc.Add(fragment)
	}

	result.Markdown = doc.String()
	result.PagesWithContent = doc.Pages()
	return result, nil
}

// pageSpans returns the positioned spans outside repeated bands, or a single
// unpositioned span built from the fallback text when the page had none.
func (c *Converter) pageSpans(pageNum int, st pageState, bands layout.Bands) []model.TextSpan {
	if len(st.content.Spans) == 0 {
		if strings.TrimSpace(st.fallback) == "" {
			return nil
		}
		return []model.TextSpan{FallbackSpan(pageNum, st.fallback)}
	}

	spans := make([]model.TextSpan, 0, len(st.content.Spans))
	for _, s := range st.content.Spans {
		if s.HasPosition() && bands.Contains(s.Y) {
			continue
		}
		spans = append(spans, s)
	}
	return spans
}

// fallbackText returns the plain text of a page, running OCR when the page has
// neither positioned spans nor plain text.
func (c *Converter) fallbackText(ctx context.Context, src PageSource, ocr OCR, pageNum int, noSpans bool,
	warnings *converr.ErrorCollection,
) string {
	text, err := src.PlainText(pageNum)
	if err != nil {
		warnings.Add(converr.Fallback(pageNum, err))
		c.log.Warn().Err(err).Int("page", pageNum).Msg("plain text extraction failed")
		text = ""
	}
	if strings.TrimSpace(text) != "" || !noSpans || ocr == nil {
		return text
	}

	text, err = ocr.PageText(ctx, pageNum)
	if err != nil {
		warnings.Add(converr.Fallback(pageNum, err).WithContext("ocr"))
		c.log.Warn().Err(err).Int("page", pageNum).Msg("OCR failed, page treated as empty")
		return ""
	}
	return text
}

// FallbackSpan wraps unpositioned page text as a plain, default-styled span.
func FallbackSpan(pageNum int, text string) model.TextSpan {
	return model.TextSpan{
		Content:    text,
		Page:       pageNum,
		FontSize:   model.DefaultFontSize,
		FontWeight: model.WeightNormal,
		FontColor:  model.DefaultFontColor,
		BgColor:    model.DefaultBgColor,
	}
}
