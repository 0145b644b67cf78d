// Package convert is the entry point of a conversion: it validates the input,
// resolves its format once and dispatches to the PDF layout pipeline or the
// DOCX reader.
package convert

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-pdf-markdown/internal/config"
	"github.com/a3tai/mcp-pdf-markdown/internal/docx"
	converr "github.com/a3tai/mcp-pdf-markdown/internal/errors"
	"github.com/a3tai/mcp-pdf-markdown/internal/ocr"
	"github.com/a3tai/mcp-pdf-markdown/internal/pdf"
	"github.com/a3tai/mcp-pdf-markdown/internal/pipeline"
	"github.com/a3tai/mcp-pdf-markdown/internal/textnorm"
)

// OCREngine is a per-document OCR collaborator that must be closed.
type OCREngine interface {
	pipeline.OCR
	Close() error
}

// Result is a converted document.
type Result struct {
	Markdown         string                   `json:"markdown"`
	Format           string                   `json:"format"`
	Pages            int                      `json:"pages,omitempty"`
	PagesWithContent int                      `json:"pages_with_content,omitempty"`
	Warnings         *converr.ErrorCollection `json:"warnings,omitempty"`
	Duration         time.Duration            `json:"duration"`
}

// Info describes a document without converting it.
type Info struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Size       int64  `json:"size"`
	Pages      int    `json:"pages,omitempty"`
	Version    string `json:"version,omitempty"`
	Encrypted  bool   `json:"encrypted"`
	Paragraphs int    `json:"paragraphs,omitempty"`
	Tables     int    `json:"tables,omitempty"`
}

// Service converts documents to Markdown. It is safe for concurrent use; the
// only state shared between conversions is the normalization cache.
type Service struct {
	cfg        *config.Config
	validator  *Validator
	normalizer *textnorm.Normalizer
	converter  *pipeline.Converter
	log        zerolog.Logger

	// newOCR creates the OCR collaborator for one PDF; nil disables OCR.
	newOCR func(path string) OCREngine
}

// NewService creates a conversion service from the configuration
func NewService(cfg *config.Config, log zerolog.Logger) *Service {
	p := cfg.Pipeline
	normalizer := textnorm.NewNormalizer(p.NormalizeCacheSize)

	opts := pipeline.Options{
		Tolerance:               p.ClusterTolerance,
		RepeatThreshold:         p.RepeatThreshold,
		FooterRatio:             p.FooterRatio,
		Margin:                  p.TableMargin,
		FuzzyThreshold:          p.FuzzyThreshold,
		FallbackRepeatThreshold: p.FallbackRepeatThreshold,
	}

	s := &Service{
		cfg:        cfg,
		validator:  NewValidator(cfg.MaxFileSize),
		normalizer: normalizer,
		converter:  pipeline.New(opts, normalizer, log.With().Str("component", "pipeline").Logger()),
		log:        log.With().Str("component", "convert").Logger(),
	}
	if p.OCREnabled {
		s.newOCR = func(path string) OCREngine {
			return ocr.NewEngine(path, ocr.Options{Language: p.OCRLanguage, DPI: p.OCRDPI})
		}
	}
	return s
}

// Convert converts the file at path and returns its Markdown.
func (s *Service) Convert(ctx context.Context, path string) (string, error) {
	res, err := s.ConvertFile(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}

// ConvertFile converts the file at path and returns the Markdown together with
// page counts and recovered warnings.
func (s *Service) ConvertFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	format, _, err := s.validator.ValidateFile(path)
	if err != nil {
		return nil, err
	}

	log := s.log.With().Str("path", path).Str("format", format.String()).Logger()
	log.Debug().Msg("conversion started")

	var res *Result
	switch format {
	case FormatPDF:
		res, err = s.convertPDF(ctx, path, log)
	case FormatDOCX:
		res, err = s.convertDOCX(path)
	}
	if err != nil {
		log.Error().Err(err).Msg("conversion failed")
		return nil, err
	}

	res.Format = format.String()
	res.Duration = time.Since(start)
	if res.Warnings != nil && res.Warnings.Count() > 0 {
		log.Warn().Int("warnings", res.Warnings.Count()).Msg(res.Warnings.Summary())
	}
	log.Info().
		Int("pages", res.Pages).
		Int("bytes", len(res.Markdown)).
		Dur("duration", res.Duration).
		Msg("conversion finished")
	return res, nil
}

func (s *Service) convertPDF(ctx context.Context, path string, log zerolog.Logger) (*Result, error) {
	doc, err := pdf.Open(path, log)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var engine pipeline.OCR
	if s.newOCR != nil {
		e := s.newOCR(path)
		defer func() {
			if cerr := e.Close(); cerr != nil {
				log.Debug().Err(cerr).Msg("closing OCR engine")
			}
		}()
		engine = e
	}

	out, err := s.converter.Convert(ctx, doc, engine)
	if err != nil {
		return nil, err
	}
	out.Warnings.FilePath = path
	for _, w := range out.Warnings.Warnings {
		w.WithFile(path)
	}

	return &Result{
		Markdown:         out.Markdown,
		Pages:            out.Pages,
		PagesWithContent: out.PagesWithContent,
		Warnings:         out.Warnings,
	}, nil
}

func (s *Service) convertDOCX(path string) (*Result, error) {
	doc, err := docx.Open(path)
	if err != nil {
		return nil, converr.Extraction("failed to read DOCX", err).WithFile(path)
	}
	return &Result{Markdown: docx.Render(doc)}, nil
}

// Info validates the file at path and reports its structure.
func (s *Service) Info(ctx context.Context, path string) (*Info, error) {
	format, fi, err := s.validator.ValidateFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, converr.Canceled(err)
	}

	info := &Info{Path: path, Format: format.String(), Size: fi.Size()}
	switch format {
	case FormatPDF:
		doc, err := pdf.Open(path, s.log)
		if err != nil {
			return nil, err
		}
		defer doc.Close()
		info.Pages = doc.NumPages()
		if meta := doc.Info(); meta != nil {
			info.Version = meta.Version
			info.Encrypted = meta.Encrypted
		}
	case FormatDOCX:
		doc, err := docx.Open(path)
		if err != nil {
			return nil, converr.Extraction("failed to read DOCX", err).WithFile(path)
		}
		info.Paragraphs = doc.Paragraphs()
		info.Tables = doc.Tables()
	}
	return info, nil
}

// CacheStats reports the normalization cache counters.
func (s *Service) CacheStats() textnorm.CacheStats {
	return s.normalizer.Stats()
}
