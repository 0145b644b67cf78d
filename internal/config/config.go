package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log formats
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = LogFormatConsole
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultRequestTimeout = 5 * time.Minute

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "MCP_PDF_MD"
)

// PipelineConfig holds the tunables of the Markdown reconstruction pipeline
type PipelineConfig struct {
	ClusterTolerance        float64 // Distance within which positions share a band
	RepeatThreshold         float64 // Share of pages a band must appear on to be excluded
	FooterRatio             float64 // Start of the footer region as a fraction of page height
	TableMargin             float64 // Padding around table footprints when dropping text
	FuzzyThreshold          float64 // 0-100 similarity at which fallback text duplicates a table
	FallbackRepeatThreshold float64 // Share of fallback pages text must repeat on to be boilerplate
	NormalizeCacheSize      int

	OCREnabled  bool
	OCRLanguage string
	OCRDPI      float64
}

// Config holds all configuration for the conversion server
type Config struct {
	// Server configuration
	Mode           string // "server" or "stdio"
	Host           string
	Port           int
	RequestTimeout time.Duration

	// Document configuration
	DocumentDirectory string
	MaxFileSize       int64 // Maximum input file size in bytes

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
	ConfigFile string
	// ConvertPath, when set, converts one file to stdout and exits
	ConvertPath string

	Pipeline PipelineConfig
}

// DefaultPipelineConfig returns the pipeline defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ClusterTolerance:        2.0,
		RepeatThreshold:         0.8,
		FooterRatio:             0.9,
		TableMargin:             20,
		FuzzyThreshold:          90,
		FallbackRepeatThreshold: 0.7,
		NormalizeCacheSize:      1024,
		OCREnabled:              true,
		OCRLanguage:             "eng",
		OCRDPI:                  300,
	}
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:              ModeStdio, // Default to stdio mode for MCP compatibility
		Host:              DefaultHost,
		Port:              DefaultPort,
		RequestTimeout:    DefaultRequestTimeout,
		DocumentDirectory: currentDir,
		MaxFileSize:       DefaultMaxFileSize,
		Version:           "1.0.0",
		ServerName:        "mcp-pdf-markdown",
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		Pipeline:          DefaultPipelineConfig(),
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	if err := readConfigFile(); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.DocumentDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.DocumentDirectory); err == nil {
			cfg.DocumentDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("timeout", cfg.RequestTimeout)
	viper.SetDefault("dir", cfg.DocumentDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)

	p := cfg.Pipeline
	viper.SetDefault("tolerance", p.ClusterTolerance)
	viper.SetDefault("repeat-threshold", p.RepeatThreshold)
	viper.SetDefault("footer-ratio", p.FooterRatio)
	viper.SetDefault("table-margin", p.TableMargin)
	viper.SetDefault("fuzzy-threshold", p.FuzzyThreshold)
	viper.SetDefault("fallback-threshold", p.FallbackRepeatThreshold)
	viper.SetDefault("cache-size", p.NormalizeCacheSize)
	viper.SetDefault("ocr", p.OCREnabled)
	viper.SetDefault("ocr-lang", p.OCRLanguage)
	viper.SetDefault("ocr-dpi", p.OCRDPI)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.Duration("timeout", cfg.RequestTimeout, "Per-request conversion timeout (server mode only)")
	pflag.String("dir", cfg.DocumentDirectory, "Directory containing documents")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (console, json)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document size in bytes")
	pflag.String("config", "", "Optional configuration file (yaml, json or toml)")
	pflag.String("convert", "", "Convert a single document to Markdown on stdout and exit")

	p := cfg.Pipeline
	pflag.Float64("tolerance", p.ClusterTolerance, "Clustering tolerance for repeated bands")
	pflag.Float64("repeat-threshold", p.RepeatThreshold, "Share of pages a band must recur on")
	pflag.Float64("footer-ratio", p.FooterRatio, "Start of the footer region as a fraction of page height")
	pflag.Float64("table-margin", p.TableMargin, "Margin around tables inside which text is dropped")
	pflag.Float64("fuzzy-threshold", p.FuzzyThreshold, "Similarity (0-100) at which fallback text duplicates a table")
	pflag.Float64("fallback-threshold", p.FallbackRepeatThreshold, "Share of fallback pages text must repeat on")
	pflag.Int("cache-size", p.NormalizeCacheSize, "Entries kept in the text normalization cache")
	pflag.Bool("ocr", p.OCREnabled, "Run OCR on pages without extractable text")
	pflag.String("ocr-lang", p.OCRLanguage, "OCR language")
	pflag.Float64("ocr-dpi", p.OCRDPI, "Rasterization resolution for OCR")
}

var boundFlags = []string{
	"mode", "host", "port", "timeout", "dir", "loglevel", "logformat", "maxfilesize", "config", "convert",
	"tolerance", "repeat-threshold", "footer-ratio", "table-margin", "fuzzy-threshold",
	"fallback-threshold", "cache-size", "ocr", "ocr-lang", "ocr-dpi",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range boundFlags {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// readConfigFile loads the optional configuration file
func readConfigFile() error {
	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Markdown - converts PDF and DOCX documents to Markdown\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# MCP stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --convert=report.pdf                    "+
			"# print Markdown for one file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/docs       # HTTP /convert endpoint\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_<FLAG> with dashes replaced by underscores, e.g. %s_OCR_LANG\n",
			envPrefix, envPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.RequestTimeout = viper.GetDuration("timeout")
	cfg.DocumentDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.ConfigFile = viper.GetString("config")
	cfg.ConvertPath = viper.GetString("convert")

	cfg.Pipeline = PipelineConfig{
		ClusterTolerance:        viper.GetFloat64("tolerance"),
		RepeatThreshold:         viper.GetFloat64("repeat-threshold"),
		FooterRatio:             viper.GetFloat64("footer-ratio"),
		TableMargin:             viper.GetFloat64("table-margin"),
		FuzzyThreshold:          viper.GetFloat64("fuzzy-threshold"),
		FallbackRepeatThreshold: viper.GetFloat64("fallback-threshold"),
		NormalizeCacheSize:      viper.GetInt("cache-size"),
		OCREnabled:              viper.GetBool("ocr"),
		OCRLanguage:             viper.GetString("ocr-lang"),
		OCRDPI:                  viper.GetFloat64("ocr-dpi"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate document directory
	if c.DocumentDirectory == "" {
		return errors.New("document directory cannot be empty")
	}

	// Check if document directory exists, create if it doesn't
	if _, err := os.Stat(c.DocumentDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DocumentDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create document directory %s: %w", c.DocumentDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access document directory %s: %w", c.DocumentDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "" && c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return c.Pipeline.Validate()
}

// Validate checks the pipeline tunables
func (p PipelineConfig) Validate() error {
	if p.ClusterTolerance < 0 {
		return errors.New("cluster tolerance cannot be negative")
	}
	for name, v := range map[string]float64{
		"repeat threshold":          p.RepeatThreshold,
		"fallback repeat threshold": p.FallbackRepeatThreshold,
		"footer ratio":              p.FooterRatio,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, v)
		}
	}
	if p.TableMargin < 0 {
		return errors.New("table margin cannot be negative")
	}
	if p.FuzzyThreshold < 0 || p.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold must be between 0 and 100, got %v", p.FuzzyThreshold)
	}
	if p.NormalizeCacheSize <= 0 {
		return errors.New("normalization cache size must be positive")
	}
	if p.OCREnabled && p.OCRDPI <= 0 {
		return errors.New("OCR DPI must be positive")
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DocumentDirectory: %s, LogLevel: %s, MaxFileSize: %d, OCR: %t}",
		c.Mode, c.Host, c.Port, c.DocumentDirectory, c.LogLevel, c.MaxFileSize, c.Pipeline.OCREnabled)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
