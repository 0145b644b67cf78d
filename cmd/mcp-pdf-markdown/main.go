package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-pdf-markdown/internal/config"
	"github.com/a3tai/mcp-pdf-markdown/internal/convert"
	"github.com/a3tai/mcp-pdf-markdown/internal/httpapi"
	"github.com/a3tai/mcp-pdf-markdown/internal/logging"
	"github.com/a3tai/mcp-pdf-markdown/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

const shutdownTimeout = 15 * time.Second

// newLogger builds the process logger. Logs always go to out; in stdio mode
// only warnings and errors are kept unless debug is enabled.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level := cfg.LogLevel
	if cfg.IsStdioMode() && cfg.ConvertPath == "" && !cfg.IsDebug() {
		level = "warn"
	}
	return logging.New(logging.LogConfig{
		Level:       level,
		Format:      cfg.LogFormat,
		Output:      out,
		ServiceName: cfg.ServerName,
	})
}

// runConvert converts one file and writes the Markdown to w.
func runConvert(ctx context.Context, svc *convert.Service, path string, w io.Writer) error {
	markdown, err := svc.Convert(ctx, path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, markdown)
	return err
}

// newHTTPServer wires the conversion API into an http.Server.
func newHTTPServer(cfg *config.Config, svc *convert.Service, log zerolog.Logger) *http.Server {
	router := httpapi.NewRouter(svc, log, httpapi.Options{
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadSize:  cfg.MaxFileSize,
		ServiceName:    cfg.ServerName,
		Version:        cfg.Version,
	})
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// runServerMode serves HTTP until a signal arrives or the listener fails
func runServerMode(cfg *config.Config, svc *convert.Service, log zerolog.Logger) error {
	srv := newHTTPServer(cfg, svc, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Close(); err != nil {
			return fmt.Errorf("forced shutdown failed: %w", err)
		}
	}

	log.Info().Msg("server stopped")
	return nil
}

// runStdioMode serves MCP; the parent process controls our lifecycle
func runStdioMode(ctx context.Context, cfg *config.Config, svc *convert.Service, log zerolog.Logger) error {
	server, err := mcp.NewServer(cfg, svc, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	log := newLogger(cfg, os.Stderr)
	log.Debug().Str("config", cfg.String()).Msg("starting")

	svc := convert.NewService(cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch {
	case cfg.ConvertPath != "":
		err = runConvert(ctx, svc, cfg.ConvertPath, os.Stdout)
	case cfg.IsServerMode():
		err = runServerMode(cfg, svc, log)
	default:
		err = runStdioMode(ctx, cfg, svc, log)
	}

	if err != nil {
		log.Error().Err(err).Msg("exiting")
		if cfg.ConvertPath != "" {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP PDF Markdown\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
