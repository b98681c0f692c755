package forms

import (
	"fmt"
	"sort"
)

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates map[string]*Template
	order     []string
}

// NewCatalog builds a catalog. Duplicate ids are rejected.
func NewCatalog(templates ...*Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template without id")
		}
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if _, ok := t.Variants[DefaultLanguage]; !ok {
			return nil, fmt.Errorf("template %q has no %s variant", t.ID, DefaultLanguage)
		}
		c.templates[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c, nil
}

// Default returns the catalog of the documents the service fills.
func Default() *Catalog {
	c, err := NewCatalog(
		employer(),
		worker(),
		independent(),
		seppt(),
		accident(),
		dispense(),
		procuration(),
		mensura(),
		obligations(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the template registered under id.
func (c *Catalog) Lookup(id string) (*Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// IDs returns document ids in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Templates returns templates in catalog order.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// Files returns every template file referenced by the catalog, sorted.
func (c *Catalog) Files() []string {
	seen := make(map[string]bool)
	for _, t := range c.templates {
		for _, v := range t.Variants {
			seen[v.File] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
