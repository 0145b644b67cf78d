package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-pdf-markdown/internal/config"
	"github.com/a3tai/mcp-pdf-markdown/internal/convert"
	"github.com/a3tai/mcp-pdf-markdown/internal/descriptions"
	"github.com/a3tai/mcp-pdf-markdown/internal/security"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *convert.Service
	paths     *security.PathValidator
	mcpServer *server.MCPServer
	log       zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *convert.Service, log zerolog.Logger) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.DocumentDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid document directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tools are fixed at startup
	)

	s := &Server{
		config:    cfg,
		service:   service,
		paths:     paths,
		mcpServer: mcpServer,
		log:       log.With().Str("component", "mcp").Logger(),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	convertTool := mcp.NewTool(
		"convert_to_markdown",
		mcp.WithDescription(descriptions.GetToolDescription("convert_to_markdown")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF or DOCX file, absolute or relative to the document directory"),
		),
	)
	s.mcpServer.AddTool(convertTool, s.handleConvert)

	infoTool := mcp.NewTool(
		"convert_info",
		mcp.WithDescription(descriptions.GetToolDescription("convert_info")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF or DOCX file, absolute or relative to the document directory"),
		),
	)
	s.mcpServer.AddTool(infoTool, s.handleInfo)

	serverInfoTool := mcp.NewTool(
		"convert_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("convert_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// resolvePath confines the requested path to the document directory.
func (s *Server) resolvePath(request mcp.CallToolRequest) (string, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return "", err
	}
	return s.paths.NormalizePath(path)
}

// Handler functions
func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.resolvePath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	markdown, err := s.service.Convert(ctx, path)
	if err != nil {
		s.log.Warn().Err(err).Str("file", path).Msg("conversion failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(markdown), nil
}

func (s *Server) handleInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.resolvePath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.service.Info(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInfo(info)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// Formatting methods
func formatInfo(info *convert.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", info.Path)
	fmt.Fprintf(&b, "Format: %s\n", info.Format)
	fmt.Fprintf(&b, "Size: %d bytes\n", info.Size)

	switch info.Format {
	case convert.FormatPDF.String():
		fmt.Fprintf(&b, "Pages: %d\n", info.Pages)
		if info.Version != "" {
			fmt.Fprintf(&b, "PDF version: %s\n", info.Version)
		}
		fmt.Fprintf(&b, "Encrypted: %t\n", info.Encrypted)
	case convert.FormatDOCX.String():
		fmt.Fprintf(&b, "Paragraphs: %d\n", info.Paragraphs)
		fmt.Fprintf(&b, "Tables: %d\n", info.Tables)
	}
	return b.String()
}

func (s *Server) formatServerInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n", s.config.ServerName, s.config.Version)
	fmt.Fprintf(&b, "Document directory: %s\n", s.paths.Directory())
	fmt.Fprintf(&b, "Max file size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	fmt.Fprintf(&b, "Supported formats: %s\n", strings.Join(convert.SupportedExtensions, ", "))
	fmt.Fprintf(&b, "OCR: %t\n", s.config.Pipeline.OCREnabled)

	b.WriteString("\nAvailable tools:\n")
	for _, name := range descriptions.GetAllToolNames() {
		desc := descriptions.GetToolDescription(name)
		if i := strings.IndexByte(desc, '\n'); i >= 0 {
			desc = desc[:i]
		}
		fmt.Fprintf(&b, "• %s: %s\n", name, desc)
	}
	return b.String()
}

// Run serves MCP over stdin and stdout until the client disconnects.
func (s *Server) Run(_ context.Context) error {
	s.log.Debug().
		Str("directory", s.paths.Directory()).
		Msg("starting MCP server in stdio mode")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
