package pdf

import (
	"fmt"
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
)

// Options tunes a Service
type Options struct {
	// Workers bounds parallel generation inside a batch. Values below 1 mean 1.
	Workers int
	// Defaults are merged under every request's values.
	Defaults forms.Values
	// Language is used when a request names none.
	Language forms.Language
	// Companions replaces the catalog's companion list per document id.
	Companions map[string][]string
	// ReportTTL is how long a template check is reused.
	ReportTTL time.Duration
}

// Service fills documents by orchestrating the catalog, the template store,
// the overlay renderer and the merger
type Service struct {
	catalog    *forms.Catalog
	store      *TemplateStore
	renderer   *OverlayRenderer
	merger     *Merger
	defaults   forms.Values
	language   forms.Language
	companions map[string][]string
	workers    int
	reports    *ReportCache
}

// NewService creates a new filling service with all components
func NewService(store *TemplateStore, catalog *forms.Catalog, opts Options) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("template store cannot be nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	for id := range opts.Companions {
		if _, ok := catalog.Lookup(id); !ok {
			return nil, fmt.Errorf("companions configured for unknown document %q", id)
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	language, err := forms.ParseLanguage(string(opts.Language))
	if err != nil {
		return nil, err
	}

	ttl := opts.ReportTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Service{
		catalog:    catalog,
		store:      store,
		renderer:   NewOverlayRenderer(),
		merger:     NewMerger(),
		defaults:   opts.Defaults,
		language:   language,
		companions: opts.Companions,
		workers:    workers,
		reports:    NewReportCache(ttl),
	}, nil
}

// Documents lists the fillable documents in catalog order
func (s *Service) Documents() []DocumentInfo {
	templates := s.catalog.Templates()
	docs := make([]DocumentInfo, 0, len(templates))
	for _, t := range templates {
		files := make(map[forms.Language]string, len(t.Variants))
		for l, v := range t.Variants {
			files[l] = v.File
		}
		docs = append(docs, DocumentInfo{
			ID:         t.ID,
			Title:      t.Title,
			EntryName:  t.Entry,
			Files:      files,
			Languages:  t.Languages(),
			Keys:       t.Keys(),
			Companions: s.companionsFor(t),
		})
	}
	return docs
}

// Template returns the catalog entry of document, or an unknown document error
func (s *Service) Template(document string) (*forms.Template, error) {
	t, ok := s.catalog.Lookup(document)
	if !ok {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeUnknownDocument, "unknown document type %q", document).
			WithDocument(document)
	}
	return t, nil
}

// GetWorkers returns the batch parallelism
func (s *Service) GetWorkers() int {
	return s.workers
}

// GetMaxFileSize returns the largest template the store accepts
func (s *Service) GetMaxFileSize() int64 {
	return s.store.maxFileSize
}

func (s *Service) companionsFor(t *forms.Template) []string {
	if files, ok := s.companions[t.ID]; ok {
		return files
	}
	return t.Companions
}
