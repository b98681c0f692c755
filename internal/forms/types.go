// Package forms holds the declarative catalog of fillable documents: which
// template file backs each document, where every value lands on which page,
// and how those positions were measured.
package forms

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// DefaultFontSize is used by descriptors that do not set their own size.
const DefaultFontSize = 10.0

// MarkFontSize is the size of the "X" glyph drawn for checkbox marks.
const MarkFontSize = 12.0

// MarkGlyph is the literal drawn for cross-style marks.
const MarkGlyph = "X"

// Language selects a template variant of a bilingual document.
type Language string

const (
	French Language = "fr"
	Dutch  Language = "nl"
)

// DefaultLanguage applies when a request does not name one.
const DefaultLanguage = French

// ParseLanguage normalizes s. An empty string yields DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultLanguage, nil
	case French:
		return French, nil
	case Dutch:
		return Dutch, nil
	default:
		return "", fmt.Errorf("unsupported language %q (supported: fr, nl)", s)
	}
}

// Kind tells the renderer whether a descriptor draws its value or a mark.
type Kind int

const (
	KindText Kind = iota
	KindMark
)

func (k Kind) String() string {
	if k == KindMark {
		return "mark"
	}
	return "text"
}

// MarkStyle selects the visual convention of a mark.
type MarkStyle int

const (
	MarkCross MarkStyle = iota
	MarkCircle
)

func (m MarkStyle) String() string {
	if m == MarkCircle {
		return "circle"
	}
	return "cross"
}

// Convention records how a template's positions were measured.
type Convention int

const (
	// Baseline positions already sit on the text baseline.
	Baseline Convention = iota
	// BoxCenter positions mark the visual middle of the target box.
	BoxCenter
)

func (c Convention) String() string {
	if c == BoxCenter {
		return "box-center"
	}
	return "baseline"
}

// Resolution is the pixel size of the reference image a table was measured on.
type Resolution struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	// Legacy707 is the historical employer form measurement.
	Legacy707 = Resolution{Width: 707, Height: 1000}
	// Scan150 is an A4 page scanned at 150 dpi.
	Scan150 = Resolution{Width: 1241, Height: 1754}
)

// Point is a position. Catalog points are in source pixels, top-left origin.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform rewrites a resolved value before it is drawn.
type Transform func(string) string

// Field describes where one logical value is drawn.
type Field struct {
	Key string
	// Fallback keys are consulted in order when Key has no value.
	Fallback []string
	// Literal is drawn when no key of the chain has a value.
	Literal   string
	At        Point
	Size      float64
	Kind      Kind
	Mark      MarkStyle
	Transform Transform
}

// Keys returns the lookup chain of the field, primary key first.
func (f Field) Keys() []string {
	return append([]string{f.Key}, f.Fallback...)
}

// Group is a mutually exclusive set of checkbox positions keyed by the
// submitted option value.
type Group struct {
	Key     string
	Size    float64
	Mark    MarkStyle
	Options map[string]Point
}

// Layout is everything drawn on one template page.
type Layout struct {
	Fields []Field
	Groups []Group
}

// Empty reports whether the layout draws nothing regardless of values.
func (l Layout) Empty() bool {
	return len(l.Fields) == 0 && len(l.Groups) == 0
}

// Variant is one language edition of a template.
type Variant struct {
	File string `json:"file"`
	// OffsetY is added to every source Y of the layout, in source pixels.
	OffsetY float64 `json:"offset_y"`
}

// Template binds a document id to its files and layouts.
type Template struct {
	ID    string
	Title string
	// Entry names the filled document inside a batch archive.
	Entry string
	// Download prefixes the attachment name of a single fill.
	Download   string
	Source     Resolution
	Convention Convention
	Variants   map[Language]Variant
	// Pages maps 0-based page indices to layouts; -1 is the last page.
	Pages      map[int]Layout
	Companions []string
}

// Languages returns the supported languages, French first.
func (t *Template) Languages() []Language {
	langs := make([]Language, 0, len(t.Variants))
	for l := range t.Variants {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i] == French {
			return true
		}
		if langs[j] == French {
			return false
		}
		return langs[i] < langs[j]
	})
	return langs
}

// Bilingual reports whether the language selector matters for t.
func (t *Template) Bilingual() bool {
	return len(t.Variants) > 1
}

// Variant returns the edition for lang. Monolingual templates ignore lang.
func (t *Template) Variant(lang Language) (Variant, Language, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	if !t.Bilingual() {
		for l, v := range t.Variants {
			return v, l, nil
		}
		return Variant{}, "", fmt.Errorf("document %s has no template file", t.ID)
	}
	v, ok := t.Variants[lang]
	if !ok {
		return Variant{}, "", fmt.Errorf("document %s is not available in %q", t.ID, lang)
	}
	return v, lang, nil
}

// EntryName returns the archive entry name for the given edition.
func (t *Template) EntryName(lang Language) string {
	if !t.Bilingual() || lang == DefaultLanguage || lang == "" {
		return t.Entry
	}
	ext := path.Ext(t.Entry)
	return strings.TrimSuffix(t.Entry, ext) + "_" + strings.ToUpper(string(lang)) + ext
}

// LayoutFor returns the layout of page index for a template of pageCount
// pages. Entries addressed from the start and from the end are combined.
func (t *Template) LayoutFor(index, pageCount int) Layout {
	var out Layout
	if l, ok := t.Pages[index]; ok {
		out.Fields = append(out.Fields, l.Fields...)
		out.Groups = append(out.Groups, l.Groups...)
	}
	if l, ok := t.Pages[index-pageCount]; ok {
		out.Fields = append(out.Fields, l.Fields...)
		out.Groups = append(out.Groups, l.Groups...)
	}
	return out
}

// Unreachable returns the page indices of t that a file with pageCount
// pages does not have.
func (t *Template) Unreachable(pageCount int) []int {
	var out []int
	for idx := range t.Pages {
		if idx >= pageCount || idx < -pageCount {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Keys returns every request key the template reads, sorted.
func (t *Template) Keys() []string {
	seen := make(map[string]bool)
	for _, l := range t.Pages {
		for _, f := range l.Fields {
			for _, k := range f.Keys() {
				seen[k] = true
			}
		}
		for _, g := range l.Groups {
			seen[g.Key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
