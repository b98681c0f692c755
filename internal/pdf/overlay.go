package pdf

import (
	"fmt"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
)

// DefaultFontFamily is the standard font every value is drawn in.
const DefaultFontFamily = "Helvetica"

// CircleRadius is the radius, in points, of circle marks.
const CircleRadius = 5.0

// overlayEpoch is written as creation and modification date so identical
// input renders identical bytes.
var overlayEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Style is the explicit font of one draw call.
type Style struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

// Placement is one draw call in PDF points, bottom-left origin.
type Placement struct {
	Key   string          `json:"key"`
	Text  string          `json:"text,omitempty"`
	At    forms.Point     `json:"at"`
	Style Style           `json:"style"`
	Kind  forms.Kind      `json:"-"`
	Mark  forms.MarkStyle `json:"-"`
}

// OverlayPage is one page of the overlay, sized like its template page.
type OverlayPage struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Placements []Placement `json:"placements"`
}

// OverlayRenderer draws placements onto blank pages.
type OverlayRenderer struct {
	radius    float64
	lineWidth float64
}

// NewOverlayRenderer creates a renderer with the default mark geometry
func NewOverlayRenderer() *OverlayRenderer {
	return &OverlayRenderer{
		radius:    CircleRadius,
		lineWidth: 1,
	}
}

// Render writes one overlay page per entry of pages to w. Pages without
// placements are emitted blank so page numbers line up with the template.
func (r *OverlayRenderer) Render(pages []OverlayPage, w io.Writer) error {
	if len(pages) == 0 {
		return fmt.Errorf("overlay needs at least one page")
	}

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetCreationDate(overlayEpoch)
	doc.SetModificationDate(overlayEpoch)
	doc.SetCatalogSort(true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)

	for _, page := range pages {
		width, height := page.Width, page.Height
		if width <= 0 || height <= 0 {
			width, height = A4Width, A4Height
		}
		doc.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
		for _, p := range page.Placements {
			r.draw(doc, height, p)
		}
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("failed to draw overlay: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return nil
}

// draw renders p. fpdf measures Y from the top of the page.
func (r *OverlayRenderer) draw(doc *fpdf.Fpdf, pageHeight float64, p Placement) {
	y := pageHeight - p.At.Y

	if p.Kind == forms.KindMark && p.Mark == forms.MarkCircle {
		doc.SetLineWidth(r.lineWidth)
		doc.Circle(p.At.X, y, r.radius, "D")
		return
	}

	family := p.Style.Family
	if family == "" {
		family = DefaultFontFamily
	}
	size := p.Style.Size
	if size <= 0 {
		size = forms.DefaultFontSize
	}
	doc.SetFont(family, "", size)
	doc.Text(p.At.X, y, winAnsi(p.Text))
}

// winAnsi encodes s for the standard fonts, replacing runes cp1252 lacks.
func winAnsi(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
