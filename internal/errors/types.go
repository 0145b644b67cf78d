// Package errors defines the failure taxonomy of a conversion.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ConversionError describes why a document, or one page of it, could not be converted.
type ConversionError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Err         error     `json:"-"`
}

// ErrorType represents the categories of conversion failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInput covers missing, unsupported, oversized or unreadable input.
	ErrorTypeInput
	// ErrorTypeExtraction means the source could not be opened or parsed at all.
	ErrorTypeExtraction
	// ErrorTypeFallback means the plain-text or OCR fallback failed for a page.
	ErrorTypeFallback
	// ErrorTypeCanceled means the caller abandoned the conversion.
	ErrorTypeCanceled
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInput:
		return "INPUT_ERROR"
	case ErrorTypeExtraction:
		return "EXTRACTION_ERROR"
	case ErrorTypeFallback:
		return "FALLBACK_FAILURE"
	case ErrorTypeCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether conversion continues after this kind of error
func (et ErrorType) IsRecoverable() bool {
	return et == ErrorTypeFallback
}

// Error implements the error interface
func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// New creates a ConversionError of the given type
func New(errorType ErrorType, message string) *ConversionError {
	return &ConversionError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// Wrap wraps err as a ConversionError of the given type
func Wrap(errorType ErrorType, message string, err error) *ConversionError {
	e := New(errorType, message)
	e.Err = err
	return e
}

// Input is shorthand for a terminal input error.
func Input(format string, args ...any) *ConversionError {
	return New(ErrorTypeInput, fmt.Sprintf(format, args...))
}

// Extraction is shorthand for a terminal extraction error wrapping err.
func Extraction(message string, err error) *ConversionError {
	return Wrap(ErrorTypeExtraction, message, err)
}

// Fallback is shorthand for a recoverable per-page fallback failure.
func Fallback(page int, err error) *ConversionError {
	return Wrap(ErrorTypeFallback, "fallback extraction failed", err).WithPage(page)
}

// PageExtraction records that positioned extraction of one page failed and
// the page fell back to plain text. It is recoverable.
func PageExtraction(page int, err error) *ConversionError {
	e := Wrap(ErrorTypeExtraction, "positioned extraction failed", err).WithPage(page)
	e.Recoverable = true
	return e
}

// Canceled wraps a context error; errors.Is still matches the context error.
func Canceled(err error) *ConversionError {
	return Wrap(ErrorTypeCanceled, "conversion canceled", err)
}

// WithContext adds context to an existing ConversionError
func (e *ConversionError) WithContext(context string) *ConversionError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing ConversionError
func (e *ConversionError) WithFile(filePath string) *ConversionError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing ConversionError
func (e *ConversionError) WithPage(pageNumber int) *ConversionError {
	e.PageNumber = pageNumber
	return e
}

// TypeOf returns the type of the first ConversionError in err's chain.
func TypeOf(err error) ErrorType {
	var ce *ConversionError
	if stderrors.As(err, &ce) {
		return ce.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err's chain holds a ConversionError of type t.
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// ErrorCollection gathers the recoverable errors raised while converting one document
type ErrorCollection struct {
	Warnings []*ConversionError `json:"warnings"`
	FilePath string             `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Warnings: make([]*ConversionError, 0),
		FilePath: filePath,
	}
}

// Add records a recoverable error
func (ec *ErrorCollection) Add(err *ConversionError) {
	if err.FilePath == "" && ec.FilePath != "" {
		err.FilePath = ec.FilePath
	}
	ec.Warnings = append(ec.Warnings, err)
}

// Count returns the number of recorded warnings
func (ec *ErrorCollection) Count() int {
	return len(ec.Warnings)
}

// Summary returns a text summary of the recorded warnings
func (ec *ErrorCollection) Summary() string {
	if len(ec.Warnings) == 0 {
		return "No warnings"
	}
	return fmt.Sprintf("Recovered from %d page warning(s)", len(ec.Warnings))
}
