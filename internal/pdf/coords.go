package pdf

import "github.com/a3tai/mcp-pdf-filler/internal/forms"

// A4 page size in PDF points, used when a page size is unknown.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// Mapper converts source pixel positions into PDF points for one page.
type Mapper struct {
	source     forms.Resolution
	width      float64
	height     float64
	convention forms.Convention
}

// NewMapper returns a mapper for a page of width x height points. A zero
// size selects A4.
func NewMapper(source forms.Resolution, width, height float64, convention forms.Convention) Mapper {
	if width <= 0 || height <= 0 {
		width, height = A4Width, A4Height
	}
	return Mapper{source: source, width: width, height: height, convention: convention}
}

// ScaleX returns points per source pixel horizontally.
func (m Mapper) ScaleX() float64 { return m.width / m.source.Width }

// ScaleY returns points per source pixel vertically.
func (m Mapper) ScaleY() float64 { return m.height / m.source.Height }

// ToPoints flips the Y axis and scales p into page space.
func (m Mapper) ToPoints(p forms.Point) forms.Point {
	return forms.Point{
		X: p.X * m.ScaleX(),
		Y: m.height - p.Y*m.ScaleY(),
	}
}

// TextOrigin returns the baseline origin of text of the given size measured
// at p.
func (m Mapper) TextOrigin(p forms.Point, fontSize float64) forms.Point {
	pt := m.ToPoints(p)
	if m.convention == forms.BoxCenter {
		pt.Y -= fontSize / 3
	}
	return pt
}

// Place maps a resolved catalog item to a renderer placement.
func (m Mapper) Place(it forms.Item) Placement {
	p := Placement{
		Key:   it.Key,
		Text:  it.Text,
		Style: Style{Family: DefaultFontFamily, Size: it.Size},
		Kind:  it.Kind,
		Mark:  it.Mark,
	}
	if it.Kind == forms.KindMark && it.Mark == forms.MarkCircle {
		// circles are centred on the measured point
		p.At = m.ToPoints(it.At)
	} else {
		p.At = m.TextOrigin(it.At, it.Size)
	}
	return p
}
