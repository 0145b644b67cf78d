// Package ocr recognizes the text of PDF pages that carry no text layer.
//
// Pages are rendered with MuPDF through go-fitz and read with Tesseract
// through gosseract. Both need their C libraries at build time. On
// Ubuntu/Debian:
//
//	apt-get install libmupdf-dev tesseract-ocr libtesseract-dev
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Recognizer wraps a Tesseract client.
type Recognizer struct {
	client *gosseract.Client
}

// NewRecognizer creates a recognizer for the given "+" separated languages,
// e.g. "eng+deu". It should be closed when no longer needed.
func NewRecognizer(lang string) (*Recognizer, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language %q: %w", lang, err)
	}
	return &Recognizer{client: client}, nil
}

// Recognize returns the text found in an encoded image, trimmed.
func (r *Recognizer) Recognize(image []byte) (string, error) {
	if err := r.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the Tesseract client.
func (r *Recognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
