package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
)

// Request keys that steer generation instead of being drawn
const (
	keySelectedDocuments = "selected_documents"
	keyLanguage          = "language"
	keyLanguages         = "languages"
)

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

type templateSummary struct {
	Directory string `json:"directory"`
	Healthy   bool   `json:"healthy"`
	Files     int    `json:"files"`
	Missing   int    `json:"missing"`
}

type healthBody struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version"`
	Templates templateSummary `json:"templates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.service.TemplateReport()
	writeJSON(w, http.StatusOK, healthBody{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
		Version:   s.config.Version,
		Templates: templateSummary{
			Directory: report.Directory,
			Healthy:   report.Healthy(),
			Files:     len(report.Templates),
			Missing:   report.Missing,
		},
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.service.Documents()})
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	s.fill(w, r, r.PathValue("document"))
}

func (s *Server) handleFillAlias(document string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.fill(w, r, document)
	}
}

func (s *Server) fill(w http.ResponseWriter, r *http.Request, document string) {
	body, err := decodeBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	language, err := stringField(body, keyLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	delete(body, keyLanguage)

	result, err := s.service.Generate(pdf.GenerateRequest{
		Document: document,
		Values:   forms.FromMap(body),
		Language: language,
	})
	if err != nil {
		log.Printf("[WARN] fill %s: %v", document, err)
		writeError(w, err)
		return
	}

	tpl, err := s.service.Template(document)
	if err != nil {
		writeError(w, err)
		return
	}
	filename := fmt.Sprintf("%s_%s.pdf", tpl.Download, s.now().Format("20060102"))
	writeAttachment(w, "application/pdf", filename, result.Data)
}

func (s *Server) handleFillMultiple(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	documents, err := stringList(body, keySelectedDocuments)
	if err != nil {
		writeError(w, err)
		return
	}
	language, err := stringField(body, keyLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	languages, err := stringObject(body, keyLanguages)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, k := range []string{keySelectedDocuments, keyLanguage, keyLanguages} {
		delete(body, k)
	}

	result, err := s.service.GenerateBatch(pdf.BatchRequest{
		Documents: documents,
		Values:    forms.FromMap(body),
		Language:  language,
		Languages: languages,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if len(result.Omitted) > 0 {
		omitted := make([]string, 0, len(result.Omitted))
		for _, f := range result.Omitted {
			omitted = append(omitted, f.Document)
		}
		w.Header().Set("X-Omitted-Documents", strings.Join(omitted, ","))
	}

	filename := fmt.Sprintf("Documents_PersoProject_%s.zip", s.now().Format("20060102_150405"))
	writeAttachment(w, "application/zip", filename, result.Archive)
}

// decodeBody reads a JSON object. An empty body is an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	body := make(map[string]any)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return body, nil
		}
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInput, "request body must be a JSON object", err)
	}
	return body, nil
}

func stringField(body map[string]any, key string) (string, error) {
	raw, ok := body[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", pdferrors.Newf(pdferrors.ErrorTypeInput, "%s must be a string", key)
	}
	return s, nil
}

func stringList(body map[string]any, key string) ([]string, error) {
	raw, ok := body[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInput, "%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, pdferrors.Newf(pdferrors.ErrorTypeInput, "%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func stringObject(body map[string]any, key string) (map[string]string, error) {
	raw, ok := body[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInput, "%s must be an object of strings", key)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, pdferrors.Newf(pdferrors.ErrorTypeInput, "%s must be an object of strings", key)
		}
		out[k] = s
	}
	return out, nil
}

// statusOf maps an error category to its HTTP status
func statusOf(t pdferrors.ErrorType) int {
	switch t {
	case pdferrors.ErrorTypeInput:
		return http.StatusBadRequest
	case pdferrors.ErrorTypeUnknownDocument:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	t := pdferrors.TypeOf(err)
	writeJSON(w, statusOf(t), errorBody{Error: err.Error(), Type: t.Code()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ERROR] writing JSON to response: %v", err)
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[ERROR] writing %s to response: %v", contentType, err)
	}
}
