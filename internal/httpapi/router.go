// Package httpapi serves conversions over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Converter turns the file at path into Markdown.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Options configures the router.
type Options struct {
	RequestTimeout time.Duration
	MaxUploadSize  int64  // bytes; zero means unlimited
	TempDir        string // where uploads are staged; empty means os.TempDir()
	ServiceName    string
	Version        string
}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}

// NewRouter creates the API router with all routes configured.
func NewRouter(conv Converter, log zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(assignRequestID)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	}

	h := &convertHandler{
		conv:      conv,
		log:       log,
		maxUpload: opts.MaxUploadSize,
		tempDir:   opts.TempDir,
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": opts.ServiceName,
			"version": opts.Version,
		})
	})
	r.Post("/convert", h.Convert)

	return r
}

// assignRequestID gives every request a UUID in the request id header, unless
// the caller sent one, and echoes it on the response. chimiddleware.RequestID
// then stores the header value in the context.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("request_id", RequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}
