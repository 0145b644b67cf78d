package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/a3tai/mcp-pdf-markdown/internal/pipeline"
)

// PageRenderer rasterizes document pages.
type PageRenderer interface {
	RenderPage(n int) ([]byte, error)
	Close() error
}

// TextRecognizer reads text from an encoded image.
type TextRecognizer interface {
	Recognize(image []byte) (string, error)
	Close() error
}

// Options configures an Engine.
type Options struct {
	Language string
	DPI      float64
}

// Engine runs OCR over the pages of one document. The renderer and the
// recognizer are created on first use, so documents that never need OCR
// never load MuPDF or Tesseract.
type Engine struct {
	newRenderer   func() (PageRenderer, error)
	newRecognizer func() (TextRecognizer, error)

	mu         sync.Mutex
	once       sync.Once
	initErr    error
	renderer   PageRenderer
	recognizer TextRecognizer
}

var _ pipeline.OCR = (*Engine)(nil)

// NewEngine creates an engine for the PDF at path.
func NewEngine(path string, opts Options) *Engine {
	return newEngine(
		func() (PageRenderer, error) { return NewRenderer(path, opts.DPI) },
		func() (TextRecognizer, error) { return NewRecognizer(opts.Language) },
	)
}

func newEngine(r func() (PageRenderer, error), t func() (TextRecognizer, error)) *Engine {
	return &Engine{newRenderer: r, newRecognizer: t}
}

func (e *Engine) init() error {
	e.once.Do(func() {
		renderer, err := e.newRenderer()
		if err != nil {
			e.initErr = err
			return
		}
		recognizer, err := e.newRecognizer()
		if err != nil {
			renderer.Close()
			e.initErr = err
			return
		}
		e.renderer, e.recognizer = renderer, recognizer
	})
	return e.initErr
}

// PageText renders page n (1-based) and returns the recognized text.
func (e *Engine) PageText(ctx context.Context, n int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.init(); err != nil {
		return "", fmt.Errorf("OCR unavailable: %w", err)
	}

	img, err := e.renderer.RenderPage(n)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.recognizer.Recognize(img)
}

// Close releases whatever PageText initialized.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.renderer != nil {
		errs = append(errs, e.renderer.Close())
		e.renderer = nil
	}
	if e.recognizer != nil {
		errs = append(errs, e.recognizer.Close())
		e.recognizer = nil
	}
	return errors.Join(errs...)
}
