package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is one submitted field value: a string, or a flag for mark fields.
type Value struct {
	text   string
	flag   bool
	isFlag bool
}

// Text returns a string value.
func Text(s string) Value { return Value{text: s} }

// Flag returns a boolean value.
func Flag(b bool) Value { return Value{flag: b, isFlag: true} }

// Present reports whether the value should be drawn. Empty strings and
// false are absent.
func (v Value) Present() bool {
	if v.isFlag {
		return v.flag
	}
	return v.text != ""
}

// String returns the drawable text of v.
func (v Value) String() string {
	if v.isFlag {
		if v.flag {
			return MarkGlyph
		}
		return ""
	}
	return v.text
}

// MarshalJSON keeps the submitted JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isFlag {
		return json.Marshal(v.flag)
	}
	return json.Marshal(v.text)
}

// Values maps request keys to submitted values.
type Values map[string]Value

// FromMap converts decoded JSON into Values. Numbers are formatted without
// exponent; zero, null and false become absent values.
func FromMap(raw map[string]any) Values {
	out := make(Values, len(raw))
	for k, v := range raw {
		out[k] = valueOf(v)
	}
	return out
}

func valueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case string:
		return Text(t)
	case bool:
		return Flag(t)
	case float64:
		if t == 0 {
			return Value{}
		}
		return Text(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		if t == 0 {
			return Value{}
		}
		return Text(strconv.Itoa(t))
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return Value{}
		}
		return Text(t.String())
	default:
		return Text(fmt.Sprint(t))
	}
}

// Lookup returns the first present value along keys.
func (vs Values) Lookup(keys ...string) (Value, bool) {
	for _, k := range keys {
		if v, ok := vs[k]; ok && v.Present() {
			return v, true
		}
	}
	return Value{}, false
}

// Merge returns a copy of defaults overlaid with vs. Absent request values
// do not hide a default.
func (vs Values) Merge(defaults Values) Values {
	out := make(Values, len(vs)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range vs {
		if v.Present() || !out[k].Present() {
			out[k] = v
		}
	}
	return out
}

// Item is a resolved placement in source pixels, ready for mapping.
type Item struct {
	Key  string
	Text string
	At   Point
	Size float64
	Kind Kind
	Mark MarkStyle
}

// Resolve picks the values a layout draws, in declaration order: fields
// first, then one mark per group. offsetY shifts every position down.
func (l Layout) Resolve(vs Values, offsetY float64) []Item {
	items := make([]Item, 0, len(l.Fields)+len(l.Groups))
	for _, f := range l.Fields {
		text, ok := f.resolve(vs)
		if !ok {
			continue
		}
		size := f.Size
		if size == 0 {
			size = DefaultFontSize
			if f.Kind == KindMark {
				size = MarkFontSize
			}
		}
		if f.Kind == KindMark {
			text = markText(f.Mark)
		}
		items = append(items, Item{
			Key:  f.Key,
			Text: text,
			At:   Point{X: f.At.X, Y: f.At.Y + offsetY},
			Size: size,
			Kind: f.Kind,
			Mark: f.Mark,
		})
	}
	for _, g := range l.Groups {
		v, ok := vs.Lookup(g.Key)
		if !ok {
			continue
		}
		at, ok := g.Options[v.String()]
		if !ok {
			continue
		}
		size := g.Size
		if size == 0 {
			size = MarkFontSize
		}
		items = append(items, Item{
			Key:  g.Key,
			Text: markText(g.Mark),
			At:   Point{X: at.X, Y: at.Y + offsetY},
			Size: size,
			Kind: KindMark,
			Mark: g.Mark,
		})
	}
	return items
}

func (f Field) resolve(vs Values) (string, bool) {
	text := ""
	if v, ok := vs.Lookup(f.Keys()...); ok {
		text = v.String()
	} else if f.Literal != "" {
		text = f.Literal
	} else {
		return "", false
	}
	if f.Transform != nil {
		text = f.Transform(text)
	}
	return text, text != ""
}

func markText(style MarkStyle) string {
	if style == MarkCircle {
		return ""
	}
	return MarkGlyph
}

// StreetPart keeps the part of an address before its last comma, which
// drops a trailing "postcode city" segment.
func StreetPart(address string) string {
	if i := strings.LastIndex(address, ","); i >= 0 {
		return strings.TrimSpace(address[:i])
	}
	return strings.TrimSpace(address)
}
