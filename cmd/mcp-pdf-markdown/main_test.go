package main

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-markdown/internal/config"
	"github.com/a3tai/mcp-pdf-markdown/internal/convert"
	"github.com/a3tai/mcp-pdf-markdown/internal/logging"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()
	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)

	for _, want := range []string{
		"MCP PDF Markdown",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		assert.Contains(t, buf.String(), want)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		level      string
		convert    string
		wantOutput bool
	}{
		{"stdio keeps warnings only", config.ModeStdio, "info", "", false},
		{"stdio debug logs", config.ModeStdio, "debug", "", true},
		{"one-shot convert logs", config.ModeStdio, "info", "a.pdf", true},
		{"server logs", config.ModeServer, "info", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Mode = tt.mode
			cfg.LogLevel = tt.level
			cfg.LogFormat = config.LogFormatJSON
			cfg.ConvertPath = tt.convert

			var buf bytes.Buffer
			newLogger(cfg, &buf).Info().Msg("hello")
			assert.Equal(t, tt.wantOutput, strings.Contains(buf.String(), "hello"))
		})
	}
}

func writeDOCX(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Hello from Word</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "hello.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func testService() (*config.Config, *convert.Service) {
	cfg := config.DefaultConfig()
	cfg.Pipeline.OCREnabled = false
	return cfg, convert.NewService(cfg, logging.Nop())
}

func TestRunConvert(t *testing.T) {
	_, svc := testService()
	path := writeDOCX(t, t.TempDir())

	var out bytes.Buffer
	require.NoError(t, runConvert(context.Background(), svc, path, &out))
	assert.Equal(t, "Hello from Word\n", out.String())

	out.Reset()
	assert.Error(t, runConvert(context.Background(), svc, filepath.Join(t.TempDir(), "missing.pdf"), &out))
	assert.Empty(t, out.String())
}

func TestNewHTTPServer(t *testing.T) {
	cfg, svc := testService()
	cfg.Host = "127.0.0.1"
	cfg.Port = 9090

	srv := newHTTPServer(cfg, svc, logging.Nop())
	assert.Equal(t, "127.0.0.1:9090", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), cfg.ServerName)
}
