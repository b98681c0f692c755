package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/descriptions"
	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	listTool := mcp.NewTool(
		"form_list_documents",
		mcp.WithDescription(descriptions.GetToolDescription("form_list_documents")),
	)
	s.mcpServer.AddTool(listTool, s.handleListDocuments)

	fillTool := mcp.NewTool(
		"form_fill_document",
		mcp.WithDescription(descriptions.GetToolDescription("form_fill_document")),
		mcp.WithString("document",
			mcp.Required(),
			mcp.Description("Document id, see form_list_documents"),
		),
		mcp.WithObject("values",
			mcp.Required(),
			mcp.Description("Field key to value (string, boolean or number)"),
		),
		mcp.WithString("language",
			mcp.Description("Language of bilingual documents"),
			mcp.Enum(string(forms.French), string(forms.Dutch)),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFillDocument)

	batchTool := mcp.NewTool(
		"form_fill_batch",
		mcp.WithDescription(descriptions.GetToolDescription("form_fill_batch")),
		mcp.WithArray("documents",
			mcp.Required(),
			mcp.Description("Document ids, in archive order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithObject("values",
			mcp.Required(),
			mcp.Description("Field values shared by every document"),
		),
		mcp.WithString("language",
			mcp.Description("Language of bilingual documents without an entry in languages"),
			mcp.Enum(string(forms.French), string(forms.Dutch)),
		),
		mcp.WithObject("languages",
			mcp.Description("Document id to language"),
		),
	)
	s.mcpServer.AddTool(batchTool, s.handleFillBatch)

	infoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("form_server_info")),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs := s.pdfService.Documents()

	var b strings.Builder
	fmt.Fprintf(&b, "%d fillable documents:\n", len(docs))
	for _, d := range docs {
		langs := make([]string, 0, len(d.Languages))
		for _, l := range d.Languages {
			langs = append(langs, string(l))
		}
		fmt.Fprintf(&b, "\n• %s: %s\n", d.ID, d.Title)
		fmt.Fprintf(&b, "  Languages: %s\n", strings.Join(langs, ", "))
		fmt.Fprintf(&b, "  Archive entry: %s\n", d.EntryName)
		fmt.Fprintf(&b, "  Keys: %s\n", strings.Join(d.Keys, ", "))
		if len(d.Companions) > 0 {
			fmt.Fprintf(&b, "  Companions: %s\n", strings.Join(d.Companions, ", "))
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleFillDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	document, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := requireValues(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Generate(pdf.GenerateRequest{
		Document: document,
		Values:   values,
		Language: request.GetString("language", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Filled %s (%s, %s): %d page(s), %d value(s) drawn, %d bytes",
		result.EntryName, result.Document, result.Language, result.Pages, result.Placements, len(result.Data))

	return mcp.NewToolResultResource(text, mcp.BlobResourceContents{
		URI:      "form://" + result.Document + "/" + result.EntryName,
		MIMEType: "application/pdf",
		Blob:     base64.StdEncoding.EncodeToString(result.Data),
	}), nil
}

func (s *Server) handleFillBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documents, err := request.RequireStringSlice("documents")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := requireValues(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	languages, err := stringMap(request.GetArguments()["languages"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.GenerateBatch(pdf.BatchRequest{
		Documents: documents,
		Values:    values,
		Language:  request.GetString("language", ""),
		Languages: languages,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultResource(s.formatBatchResult(result), mcp.BlobResourceContents{
		URI:      "form://batch/documents.zip",
		MIMEType: "application/zip",
		Blob:     base64.StdEncoding.EncodeToString(result.Archive),
	}), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// requireValues reads the values argument as form values
func requireValues(request mcp.CallToolRequest) (forms.Values, error) {
	raw, ok := request.GetArguments()["values"]
	if !ok {
		return nil, fmt.Errorf("required argument \"values\" not found")
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument \"values\" must be an object")
	}
	return forms.FromMap(m), nil
}

// stringMap converts an optional object argument of strings
func stringMap(raw any) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument \"languages\" must be an object")
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("language of %s must be a string", k)
		}
		out[k] = str
	}
	return out, nil
}

func (s *Server) formatBatchResult(result *pdf.BatchResult) string {
	text := fmt.Sprintf("Archive with %d entries (%d bytes):\n", len(result.Entries), len(result.Archive))
	for i, entry := range result.Entries {
		text += fmt.Sprintf("   %d. %s\n", i+1, entry)
	}
	if len(result.Omitted) > 0 {
		text += fmt.Sprintf("\n⚠️  %d document(s) omitted:\n", len(result.Omitted))
		for _, f := range result.Omitted {
			text += fmt.Sprintf("   • %s: %s\n", f.Document, f.Error())
		}
	}
	return text
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Template Directory: %s\n", result.TemplateDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("⚙️  Batch Workers: %d\n\n", result.Workers)

	report := result.Templates
	if report.Healthy() {
		text += fmt.Sprintf("✅ Templates: all %d files available\n", len(report.Templates))
	} else {
		text += fmt.Sprintf("❌ Templates: %d of %d files unavailable\n", report.Missing, len(report.Templates))
	}
	for _, t := range report.Templates {
		label := t.Document
		if t.Language != "" {
			label += "/" + string(t.Language)
		}
		if t.Companion {
			label += " (companion)"
		}
		if t.Available {
			text += fmt.Sprintf("   ✓ %s: %s, %d page(s)\n", label, t.File, t.Pages)
		} else {
			text += fmt.Sprintf("   ✗ %s: %s: %s\n", label, t.File, t.Error)
		}
	}

	text += "\n🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run serves MCP over standard I/O until stdin closes
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("[INFO] Starting PDF form filler in stdio mode")
		log.Printf("[INFO] Template directory: %s", s.config.TemplateDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
