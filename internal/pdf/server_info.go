package pdf

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/descriptions"
	"github.com/a3tai/mcp-pdf-filler/internal/forms"
)

// ReportCache provides TTL-based caching for template checks
type ReportCache struct {
	report     *TemplateReport
	lastUpdate time.Time
	ttl        time.Duration
	mu         sync.RWMutex
}

// NewReportCache creates a new report cache with specified TTL
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{ttl: ttl}
}

// Get returns the cached report if it is still valid
func (c *ReportCache) Get() *TemplateReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.report == nil || time.Since(c.lastUpdate) > c.ttl {
		return nil
	}
	return c.report
}

// Set stores a report
func (c *ReportCache) Set(report *TemplateReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report = report
	c.lastUpdate = time.Now()
}

// Clear drops the cached report
func (c *ReportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report = nil
}

// CheckTemplates opens every template and companion file of the catalog
// and reports which ones are usable
func (s *Service) CheckTemplates() *TemplateReport {
	report := &TemplateReport{
		Directory: s.store.Directory(),
		Templates: make([]TemplateStatus, 0),
		CheckedAt: time.Now().UTC(),
	}

	companions := make(map[string]bool)
	for _, t := range s.catalog.Templates() {
		for _, lang := range t.Languages() {
			status := s.checkFile(t.ID, t.Variants[lang].File)
			status.Language = lang
			report.add(status)
		}
		for _, name := range s.companionsFor(t) {
			if companions[name] {
				continue
			}
			companions[name] = true
			status := s.checkFile(t.ID, name)
			status.Companion = true
			report.add(status)
		}
	}

	s.reports.Set(report)
	return report
}

// TemplateReport returns a recent template check, running one when the
// cached report has expired
func (s *Service) TemplateReport() *TemplateReport {
	if cached := s.reports.Get(); cached != nil {
		return cached
	}
	return s.CheckTemplates()
}

func (r *TemplateReport) add(status TemplateStatus) {
	if !status.Available {
		r.Missing++
	}
	r.Templates = append(r.Templates, status)
}

func (s *Service) checkFile(document, name string) TemplateStatus {
	status := TemplateStatus{Document: document, File: name}

	data, err := s.store.Read(name)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	dims, err := s.merger.PageSizes(bytes.NewReader(data))
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Available = true
	status.Pages = len(dims)
	return status
}

// ServerInfo returns server capabilities, the document catalog and the
// template health
func (s *Service) ServerInfo(serverName, version string) *ServerInfoResult {
	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		TemplateDirectory: s.store.Directory(),
		MaxFileSize:       s.store.maxFileSize,
		Workers:           s.workers,
		AvailableTools:    s.getAvailableTools(),
		Documents:         s.Documents(),
		Templates:         s.TemplateReport(),
		UsageGuidance:     s.getUsageGuidance(),
	}
}

// getAvailableTools returns the list of available tools
func (s *Service) getAvailableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "form_list_documents",
			Description: descriptions.GetToolDescription("form_list_documents"),
			Usage:       "Use this tool first to learn the document ids and the field keys each document reads.",
			Parameters:  "No parameters required",
		},
		{
			Name:        "form_fill_document",
			Description: descriptions.GetToolDescription("form_fill_document"),
			Usage:       "Use this tool to fill one document and receive it as an embedded PDF.",
			Parameters: "document (required): document id, values (required): object of field key to string or boolean, " +
				"language (optional): fr or nl for bilingual documents",
		},
		{
			Name:        "form_fill_batch",
			Description: descriptions.GetToolDescription("form_fill_batch"),
			Usage:       "Use this tool to fill several documents from one set of values and receive a ZIP archive.",
			Parameters: "documents (required): array of document ids, values (required): object of field values, " +
				"language (optional), languages (optional): object of document id to language",
		},
		{
			Name:        "form_server_info",
			Description: descriptions.GetToolDescription("form_server_info"),
			Usage:       "Use this tool to check which template files are installed and readable.",
			Parameters:  "No parameters required",
		},
	}
}

// getUsageGuidance returns usage guidance
func (s *Service) getUsageGuidance() string {
	maxFileSizeMB := s.store.maxFileSize / (1024 * 1024)

	return fmt.Sprintf(`PDF Form Filler Usage Guide:

1. DISCOVER DOCUMENTS:
   - Use 'form_list_documents' to get document ids, languages and field keys

2. FILL:
   - Use 'form_fill_document' for one PDF
   - Use 'form_fill_batch' for a ZIP of several PDFs sharing the same values
   - Empty strings, false and absent keys are simply not drawn
   - Checkbox groups take the option text, e.g. forme_juridique = "SRL"

3. LANGUAGES:
   - Bilingual documents accept language "fr" (default) or "%s"

4. TROUBLESHOOTING:
   - Use 'form_server_info' to see missing or unreadable templates
   - Templates larger than %d MB are rejected`, forms.Dutch, maxFileSizeMB)
}
