package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.ServerName != "mcp-pdf-markdown" {
		t.Errorf("Expected default server name to be 'mcp-pdf-markdown', got '%s'", cfg.ServerName)
	}

	if cfg.LogFormat != LogFormatConsole {
		t.Errorf("Expected default log format to be 'console', got '%s'", cfg.LogFormat)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	currentDir, _ := os.Getwd()
	if cfg.DocumentDirectory != currentDir {
		t.Errorf("Expected default document directory to be '%s', got '%s'", currentDir, cfg.DocumentDirectory)
	}

	p := cfg.Pipeline
	if p.ClusterTolerance != 2.0 || p.RepeatThreshold != 0.8 || p.FooterRatio != 0.9 {
		t.Errorf("Unexpected band defaults: %+v", p)
	}
	if p.TableMargin != 20 || p.FuzzyThreshold != 90 || p.FallbackRepeatThreshold != 0.7 {
		t.Errorf("Unexpected dedup defaults: %+v", p)
	}
	if p.NormalizeCacheSize != 1024 || !p.OCREnabled || p.OCRLanguage != "eng" || p.OCRDPI != 300 {
		t.Errorf("Unexpected cache or OCR defaults: %+v", p)
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	base := func() *Config {
		cfg := DefaultConfig()
		cfg.DocumentDirectory = tempDir
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid stdio", mutate: func(c *Config) {}},
		{name: "valid server", mutate: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{name: "invalid port", mutate: func(c *Config) {
			c.Mode = ModeServer
			c.Port = 70000
		}, wantErr: "port must be"},
		{name: "port ignored in stdio", mutate: func(c *Config) { c.Port = 0 }},
		{name: "empty directory", mutate: func(c *Config) { c.DocumentDirectory = "" }, wantErr: "cannot be empty"},
		{name: "zero file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "must be positive"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid log format"},
		{name: "negative tolerance", mutate: func(c *Config) { c.Pipeline.ClusterTolerance = -1 }, wantErr: "tolerance"},
		{name: "threshold above one", mutate: func(c *Config) { c.Pipeline.RepeatThreshold = 1.5 }, wantErr: "repeat threshold"},
		{name: "zero footer ratio", mutate: func(c *Config) { c.Pipeline.FooterRatio = 0 }, wantErr: "footer ratio"},
		{name: "fuzzy out of range", mutate: func(c *Config) { c.Pipeline.FuzzyThreshold = 101 }, wantErr: "fuzzy threshold"},
		{name: "zero cache", mutate: func(c *Config) { c.Pipeline.NormalizeCacheSize = 0 }, wantErr: "cache size"},
		{name: "zero dpi with ocr", mutate: func(c *Config) { c.Pipeline.OCRDPI = 0 }, wantErr: "DPI"},
		{name: "zero dpi without ocr", mutate: func(c *Config) {
			c.Pipeline.OCRDPI = 0
			c.Pipeline.OCREnabled = false
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "docs")

	cfg := DefaultConfig()
	cfg.DocumentDirectory = dir
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected directory %s to be created", dir)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9000

	if got := cfg.Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %s, want 0.0.0.0:9000", got)
	}
	if cfg.IsDebug() {
		t.Error("IsDebug() should be false for info level")
	}
	if !cfg.IsStdioMode() || cfg.IsServerMode() {
		t.Error("Expected stdio mode")
	}

	cfg.Mode = ModeServer
	cfg.LogLevel = "debug"
	if !cfg.IsServerMode() || !cfg.IsDebug() {
		t.Error("Expected server mode with debug logging")
	}

	if s := cfg.String(); !strings.Contains(s, "Mode: server") || !strings.Contains(s, "OCR: true") {
		t.Errorf("String() = %s", s)
	}
}
