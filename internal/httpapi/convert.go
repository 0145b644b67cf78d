package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-pdf-markdown/internal/convert"
	converr "github.com/a3tai/mcp-pdf-markdown/internal/errors"
)

// multipartMemory is how much of an upload is held in memory before spilling to disk.
const multipartMemory = 32 << 20

type convertHandler struct {
	conv      Converter
	log       zerolog.Logger
	maxUpload int64
	tempDir   string
}

type convertResponse struct {
	Markdown string `json:"markdown"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Convert handles POST /convert with a multipart "file" field.
func (h *convertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	log := h.log.With().Str("request_id", RequestID(r.Context())).Logger()

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// multipart parts without a filename arrive as plain values
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "Empty filename")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "Empty filename")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, err := convert.DetectFormat(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}

	tmpPath, err := h.stage(file, ext)
	if tmpPath != "" {
		defer func() {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warn().Err(rmErr).Str("path", tmpPath).Msg("failed to remove upload")
			}
		}()
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to stage upload")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Debug().Str("filename", header.Filename).Int64("size", header.Size).Msg("converting upload")
	md, err := h.conv.Convert(r.Context(), tmpPath)
	if err != nil {
		status := statusFor(err)
		log.Warn().Err(err).Str("filename", header.Filename).Msg("conversion failed")
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{Markdown: md})
}

// statusFor maps a conversion failure to an HTTP status.
func statusFor(err error) int {
	switch converr.TypeOf(err) {
	case converr.ErrorTypeInput:
		return http.StatusBadRequest
	case converr.ErrorTypeCanceled:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// stage copies the upload into a uniquely named temporary file that keeps the
// original extension, so the converter can resolve the format.
func (h *convertHandler) stage(src io.Reader, ext string) (string, error) {
	dir := h.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "upload-"+uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return path, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
