package pdf

import (
	"archive/zip"
	"bytes"
	"log"
	"path"

	"golang.org/x/sync/errgroup"

	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
)

// GenerateBatch fills every requested document from one set of values and
// packs the results, with their companions, into a ZIP archive in request
// order. A failing document is logged and omitted; the batch only fails when
// nothing could be generated.
func (s *Service) GenerateBatch(req BatchRequest) (*BatchResult, error) {
	if len(req.Values) == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeInput, "no field values provided")
	}
	if len(req.Documents) == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeInput, "no documents selected")
	}

	documents := make([]string, 0, len(req.Documents))
	seen := make(map[string]bool, len(req.Documents))
	for _, id := range req.Documents {
		if seen[id] {
			log.Printf("[WARN] batch: document %s requested twice, keeping the first", id)
			continue
		}
		seen[id] = true
		documents = append(documents, id)
	}

	results := make([]*GenerateResult, len(documents))
	errs := make([]error, len(documents))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, id := range documents {
		g.Go(func() error {
			results[i], errs[i] = s.Generate(GenerateRequest{
				Document: id,
				Values:   req.Values,
				Language: req.LanguageFor(id),
			})
			return nil
		})
	}
	_ = g.Wait()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	failures := pdferrors.NewFailureCollection()
	result := &BatchResult{}
	added := make(map[string]bool)
	entries := make(map[string]bool)

	for i, id := range documents {
		if errs[i] != nil {
			log.Printf("[WARN] batch: omitting %s: %v", id, errs[i])
			failures.Add(id, errs[i])
			continue
		}

		if err := addEntry(zw, results[i].EntryName, results[i].Data); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeRendering, "failed to write archive", err)
		}
		entries[results[i].EntryName] = true
		result.Entries = append(result.Entries, results[i].EntryName)
		result.Generated = append(result.Generated, id)

		tpl, _ := s.catalog.Lookup(id)
		for _, name := range s.companionsFor(tpl) {
			if added[name] {
				continue
			}
			added[name] = true

			entry := companionEntry(name, entries)
			if entry == "" {
				log.Printf("[WARN] batch: skipping companion %s of %s: archive entry name already used", name, id)
				continue
			}

			data, err := s.store.Read(name)
			if err != nil {
				log.Printf("[WARN] batch: skipping companion %s of %s: %v", name, id, err)
				continue
			}
			entries[entry] = true
			if err := addEntry(zw, entry, data); err != nil {
				return nil, pdferrors.Wrap(pdferrors.ErrorTypeRendering, "failed to write archive", err)
			}
			result.Entries = append(result.Entries, entry)
			result.Companions = append(result.Companions, name)
		}
	}

	result.Omitted = failures.Failures
	if len(result.Generated) == 0 {
		return nil, pdferrors.New(failures.Dominant(), "no document could be generated").
			WithContext(failures.Summary())
	}

	if err := zw.Close(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeRendering, "failed to write archive", err)
	}
	result.Archive = buf.Bytes()

	log.Printf("[INFO] batch: %d document(s) generated, %d omitted, %d companion(s)",
		len(result.Generated), failures.Count(), len(result.Companions))
	return result, nil
}

// companionEntry names a companion by its base name, falling back to its
// relative path when the base name is taken. It returns "" when both are.
func companionEntry(name string, used map[string]bool) string {
	for _, entry := range []string{path.Base(name), path.Clean(name)} {
		if !used[entry] {
			return entry
		}
	}
	return ""
}

func addEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
