package ocr

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is the rendering resolution used when none is configured.
const DefaultDPI = 300.0

// Renderer rasterizes the pages of one PDF.
type Renderer struct {
	doc *fitz.Document
	dpi float64
}

// NewRenderer opens path for rendering.
func NewRenderer(path string, dpi float64) (*Renderer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	return &Renderer{doc: doc, dpi: dpi}, nil
}

// RenderPage returns page n (1-based) as a PNG.
func (r *Renderer) RenderPage(n int) ([]byte, error) {
	if n < 1 || n > r.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", n, r.doc.NumPage())
	}
	img, err := r.doc.ImagePNG(n-1, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", n, err)
	}
	return img, nil
}

// Close releases the MuPDF document.
func (r *Renderer) Close() error {
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}
