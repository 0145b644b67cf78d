package convert

import (
	"path/filepath"
	"strings"

	converr "github.com/a3tai/mcp-pdf-markdown/internal/errors"
)

// Format is the input document kind, resolved once from the file name.
type Format int

const (
	FormatUnknown Format = iota
	// FormatPDF documents go through the paginated layout pipeline.
	FormatPDF
	// FormatDOCX documents go through the paragraph and table reader.
	FormatDOCX
)

// String returns the lowercase extension of the format
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// SupportedExtensions lists the extensions DetectFormat accepts.
var SupportedExtensions = []string{".pdf", ".docx"}

// DetectFormat resolves the format from the file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".doc":
		return FormatUnknown, converr.Input("legacy .doc files are not supported, save as .docx").WithFile(path)
	case "":
		return FormatUnknown, converr.Input("unsupported file type: no extension").WithFile(path)
	default:
		return FormatUnknown, converr.Input("unsupported file type: %s", ext).WithFile(path)
	}
}
