package convert

import (
	"os"

	converr "github.com/a3tai/mcp-pdf-markdown/internal/errors"
)

// Validator checks input files before they are opened.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator enforcing the given size limit. A limit of
// zero or less disables the size check.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile checks that path names a readable, non-empty regular file of a
// supported format within the size limit.
func (v *Validator) ValidateFile(path string) (Format, os.FileInfo, error) {
	if path == "" {
		return FormatUnknown, nil, converr.Input("path cannot be empty")
	}

	format, err := DetectFormat(path)
	if err != nil {
		return FormatUnknown, nil, err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return format, nil, converr.Input("file does not exist: %s", path).WithFile(path)
	}
	if err != nil {
		return format, nil, converr.Wrap(converr.ErrorTypeInput, "cannot access file", err).WithFile(path)
	}

	if info.IsDir() {
		return format, nil, converr.Input("path is a directory, not a file: %s", path).WithFile(path)
	}
	if info.Size() == 0 {
		return format, nil, converr.Input("file is empty: %s", path).WithFile(path)
	}
	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return format, nil, converr.Input("file too large: %d bytes (max: %d bytes)",
			info.Size(), v.maxFileSize).WithFile(path)
	}

	return format, info, nil
}
