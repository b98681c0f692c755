package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextRun is a contiguous piece of text drawn on a page, in PDF points.
type TextRun struct {
	Page     int     `json:"page"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
}

// ReadTextRuns returns every text run of a PDF, page by page, in drawing
// order.
func ReadTextRuns(data []byte) ([]TextRun, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var runs []TextRun
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts, err := pageTexts(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		runs = append(runs, groupRuns(i, texts)...)
	}
	return runs, nil
}

// pageTexts guards against panics inside the content stream interpreter.
func pageTexts(page pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to interpret content: %v", r)
		}
	}()
	return page.Content().Text, nil
}

// groupRuns joins consecutive glyphs that continue one another on the
// same baseline.
func groupRuns(page int, texts []pdf.Text) []TextRun {
	var (
		runs    []TextRun
		current *TextRun
		next    float64
		b       strings.Builder
	)

	flush := func() {
		if current != nil {
			current.Text = b.String()
			runs = append(runs, *current)
			current = nil
			b.Reset()
		}
	}

	for _, t := range texts {
		if current == nil || !near(t.Y, current.Y) || !near(t.X, next) || !near(t.FontSize, current.FontSize) {
			flush()
			current = &TextRun{Page: page, X: t.X, Y: t.Y, FontSize: t.FontSize}
		}
		b.WriteString(t.S)
		next = t.X + t.W
	}
	flush()

	return runs
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.05
}

// FindRuns returns the runs on page whose text equals s.
func FindRuns(runs []TextRun, page int, s string) []TextRun {
	var out []TextRun
	for _, r := range runs {
		if r.Page == page && r.Text == s {
			out = append(out, r)
		}
	}
	return out
}
