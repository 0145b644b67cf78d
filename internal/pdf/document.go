// Package pdf extracts positioned text spans, ruled tables and plain text from
// PDF files for the layout pipeline.
package pdf

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	converr "github.com/a3tai/mcp-pdf-markdown/internal/errors"
	"github.com/a3tai/mcp-pdf-markdown/internal/pipeline"
)

// Document is an open PDF. It implements pipeline.PageSource and is not safe
// for concurrent use.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	info   *Info
	log    zerolog.Logger
}

var _ pipeline.PageSource = (*Document)(nil)

// Open opens the PDF at path. Files that cannot be parsed, or that are
// encrypted with a non-empty password, yield an extraction error.
func Open(path string, log zerolog.Logger) (*Document, error) {
	log = log.With().Str("file", path).Logger()

	info, err := Inspect(path)
	if err != nil {
		// pdfcpu is stricter than the content reader; carry on without it.
		log.Debug().Err(err).Msg("structure inspection failed")
	}

	f, r, err := openReader(path)
	if err != nil {
		cerr := converr.Extraction("failed to open PDF", err).WithFile(path)
		if stderrors.Is(err, pdf.ErrInvalidPassword) {
			cerr = cerr.WithContext("encrypted")
		}
		return nil, cerr
	}

	return &Document{path: path, file: f, reader: r, info: info, log: log}, nil
}

// openReader wraps pdf.Open, which panics on some malformed trailers.
func openReader(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("panic while opening PDF: %v", rec)
		}
	}()
	return pdf.Open(path)
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Info returns the pdfcpu structure summary, or nil when inspection failed.
func (d *Document) Info() *Info {
	return d.info
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page extracts the spans and tables of page n (1-based).
func (d *Document) Page(n int) (content pipeline.PageContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = pipeline.PageContent{}, fmt.Errorf("panic during page %d extraction: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return pipeline.PageContent{}, fmt.Errorf("page %d not found", n)
	}

	box, err := mediaBox(page)
	if err != nil {
		d.log.Debug().Err(err).Int("page", n).Msg("using default page size")
	}

	raw := page.Content()
	glyphs := toGlyphs(raw.Text, box)
	spans, blocks := buildSpans(glyphs, n)
	attachLinks(spans, blocks, pageLinks(page, box))
	tables := tableDetector{box: box}.detect(raw.Rect, glyphs)

	return pipeline.PageContent{
		Height: box.Height(),
		Spans:  spans,
		Tables: tables,
	}, nil
}

// PlainText returns the unpositioned text of page n (1-based).
func (d *Document) PlainText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic during plain text extraction of page %d: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", n)
	}
	return page.GetPlainText(nil)
}
