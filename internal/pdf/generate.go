package pdf

import (
	"bytes"
	"io"
	"log"

	"github.com/mattetti/filebuffer"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
)

// job is one document prepared for rendering.
type job struct {
	tpl        *forms.Template
	language   forms.Language
	file       string
	template   []byte
	pages      []OverlayPage
	stamped    []int
	placements int
}

// Generate fills one document. Unknown documents, unsupported languages and
// empty values are rejected; a missing template is a configuration error.
func (s *Service) Generate(req GenerateRequest) (*GenerateResult, error) {
	tpl, err := s.Template(req.Document)
	if err != nil {
		return nil, err
	}
	if len(req.Values) == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeInput, "no field values provided").WithDocument(tpl.ID)
	}

	var result *GenerateResult
	err = pdferrors.Recover(tpl.ID, func() error {
		j, err := s.prepare(tpl, req.Values, req.Language)
		if err != nil {
			return err
		}
		result, err = s.fill(j)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RenderOverlay renders the overlay of one document without merging it.
func (s *Service) RenderOverlay(req GenerateRequest) (*OverlayResult, error) {
	tpl, err := s.Template(req.Document)
	if err != nil {
		return nil, err
	}

	var result *OverlayResult
	err = pdferrors.Recover(tpl.ID, func() error {
		j, err := s.prepare(tpl, req.Values, req.Language)
		if err != nil {
			return err
		}
		overlay, err := s.render(j)
		if err != nil {
			return err
		}
		result = &OverlayResult{
			Document: tpl.ID,
			Language: j.language,
			Template: j.file,
			Pages:    j.pages,
			Data:     overlay.Buff.Bytes(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// prepare reads the template and lays out every page of it.
func (s *Service) prepare(tpl *forms.Template, values forms.Values, language string) (*job, error) {
	if language == "" {
		language = string(s.language)
	}
	lang, err := forms.ParseLanguage(language)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInput, "invalid language", err).WithDocument(tpl.ID)
	}
	variant, lang, err := tpl.Variant(lang)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInput, "unsupported language", err).WithDocument(tpl.ID)
	}

	data, err := s.store.Read(variant.File)
	if err != nil {
		// the cached health report may still list this template as usable
		s.reports.Clear()
		if fe, ok := pdferrors.As(err); ok {
			return nil, fe.WithDocument(tpl.ID)
		}
		return nil, err
	}

	dims, err := s.merger.PageSizes(bytes.NewReader(data))
	if err != nil {
		s.reports.Clear()
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConfiguration, "template is not a readable PDF", err).
			WithDocument(tpl.ID).WithContext(variant.File)
	}

	if missing := tpl.Unreachable(len(dims)); len(missing) > 0 {
		log.Printf("[WARN] %s: %s has %d page(s), layouts for page indices %v are ignored",
			tpl.ID, variant.File, len(dims), missing)
	}

	values = values.Merge(s.defaults)
	j := &job{
		tpl:      tpl,
		language: lang,
		file:     variant.File,
		template: data,
		pages:    make([]OverlayPage, len(dims)),
	}
	for i, dim := range dims {
		mapper := NewMapper(tpl.Source, dim.Width, dim.Height, tpl.Convention)
		page := OverlayPage{Width: dim.Width, Height: dim.Height}
		for _, it := range tpl.LayoutFor(i, len(dims)).Resolve(values, variant.OffsetY) {
			page.Placements = append(page.Placements, mapper.Place(it))
		}
		if len(page.Placements) > 0 {
			j.stamped = append(j.stamped, i+1)
		}
		j.placements += len(page.Placements)
		j.pages[i] = page
	}
	return j, nil
}

// render draws the overlay of j into a seekable in-memory buffer.
func (s *Service) render(j *job) (*filebuffer.Buffer, error) {
	overlay := filebuffer.New(nil)
	if err := s.renderer.Render(j.pages, overlay); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeRendering, "overlay rendering failed", err).WithDocument(j.tpl.ID)
	}
	if _, err := overlay.Seek(0, io.SeekStart); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeRendering, "overlay rendering failed", err).WithDocument(j.tpl.ID)
	}
	return overlay, nil
}

// fill renders and merges j.
func (s *Service) fill(j *job) (*GenerateResult, error) {
	overlay, err := s.render(j)
	if err != nil {
		return nil, err
	}

	out := filebuffer.New(nil)
	if err := s.merger.Merge(bytes.NewReader(j.template), overlay, j.stamped, out); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeRendering, "merge failed", err).WithDocument(j.tpl.ID)
	}

	return &GenerateResult{
		Document:   j.tpl.ID,
		Language:   j.language,
		Template:   j.file,
		EntryName:  j.tpl.EntryName(j.language),
		Pages:      len(j.pages),
		Placements: j.placements,
		Data:       out.Buff.Bytes(),
	}, nil
}
