package pdf

import (
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
)

// Request Types

// GenerateRequest represents a request to fill one document
type GenerateRequest struct {
	Document string       `json:"document"`
	Values   forms.Values `json:"values"`
	Language string       `json:"language,omitempty"`
}

// BatchRequest represents a request to fill several documents from one set of values
type BatchRequest struct {
	Documents []string     `json:"documents"`
	Values    forms.Values `json:"values"`
	// Language applies to every bilingual document without an entry in Languages.
	Language  string            `json:"language,omitempty"`
	Languages map[string]string `json:"languages,omitempty"`
}

// LanguageFor returns the language requested for document.
func (r BatchRequest) LanguageFor(document string) string {
	if l, ok := r.Languages[document]; ok && l != "" {
		return l
	}
	return r.Language
}

// Response Types

// GenerateResult represents one filled document
type GenerateResult struct {
	Document   string         `json:"document"`
	Language   forms.Language `json:"language"`
	Template   string         `json:"template"`
	EntryName  string         `json:"entry_name"`
	Pages      int            `json:"pages"`
	Placements int            `json:"placements"`
	Data       []byte         `json:"-"`
}

// OverlayResult represents a rendered overlay before merging
type OverlayResult struct {
	Document string         `json:"document"`
	Language forms.Language `json:"language"`
	Template string         `json:"template"`
	Pages    []OverlayPage  `json:"pages"`
	Data     []byte         `json:"-"`
}

// BatchResult represents a ZIP archive of filled documents
type BatchResult struct {
	Archive    []byte                 `json:"-"`
	Entries    []string               `json:"entries"`
	Generated  []string               `json:"generated"`
	Omitted    []*pdferrors.FillError `json:"omitted,omitempty"`
	Companions []string               `json:"companions,omitempty"`
}

// DocumentInfo describes one fillable document
type DocumentInfo struct {
	ID         string                    `json:"id"`
	Title      string                    `json:"title"`
	EntryName  string                    `json:"entry_name"`
	Files      map[forms.Language]string `json:"files"`
	Languages  []forms.Language          `json:"languages"`
	Keys       []string                  `json:"keys"`
	Companions []string                  `json:"companions,omitempty"`
}

// TemplateStatus reports whether one template or companion file is usable
type TemplateStatus struct {
	Document  string         `json:"document"`
	Language  forms.Language `json:"language,omitempty"`
	File      string         `json:"file"`
	Companion bool           `json:"companion,omitempty"`
	Available bool           `json:"available"`
	Pages     int            `json:"pages,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// TemplateReport collects the status of every file the catalog needs
type TemplateReport struct {
	Directory string           `json:"directory"`
	Templates []TemplateStatus `json:"templates"`
	Missing   int              `json:"missing"`
	CheckedAt time.Time        `json:"checked_at"`
}

// Healthy reports whether every file is available
func (r *TemplateReport) Healthy() bool {
	return r.Missing == 0
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string          `json:"server_name"`
	Version           string          `json:"version"`
	TemplateDirectory string          `json:"template_directory"`
	MaxFileSize       int64           `json:"max_file_size"`
	Workers           int             `json:"workers"`
	AvailableTools    []ToolInfo      `json:"available_tools"`
	Documents         []DocumentInfo  `json:"documents"`
	Templates         *TemplateReport `json:"templates"`
	UsageGuidance     string          `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
