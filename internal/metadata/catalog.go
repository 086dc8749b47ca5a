package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/relation"
)

var ErrTableNotFound = errors.New("table not found")

// Catalog maps relation names, ignoring case, to relations. A Catalog is
// never modified after construction; With and Without return new catalogs.
type Catalog struct {
	tables map[string]*relation.Relation
	names  []string
}

// NewCatalog creates a catalog holding the given relations. A later relation
// replaces an earlier one with the same name.
func NewCatalog(rels ...*relation.Relation) *Catalog {
	c := &Catalog{
		tables: make(map[string]*relation.Relation, len(rels)),
	}
	for _, r := range rels {
		c.put(r)
	}
	return c
}

func (c *Catalog) put(r *relation.Relation) {
	key := strings.ToLower(r.Name())
	if _, ok := c.tables[key]; !ok {
		c.names = append(c.names, r.Name())
	} else {
		for i, n := range c.names {
			if strings.EqualFold(n, r.Name()) {
				c.names[i] = r.Name()
			}
		}
	}
	c.tables[key] = r
}

func (c *Catalog) clone() *Catalog {
	out := &Catalog{
		tables: make(map[string]*relation.Relation, len(c.tables)+1),
		names:  make([]string, len(c.names)),
	}
	for k, v := range c.tables {
		out.tables[k] = v
	}
	copy(out.names, c.names)
	return out
}

// Get looks up a relation by name.
func (c *Catalog) Get(name string) (*relation.Relation, error) {
	r, ok := c.tables[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return r, nil
}

// Has reports whether a relation with that name exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.tables[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// With returns a catalog that also holds r, replacing any relation of the same name.
func (c *Catalog) With(r *relation.Relation) *Catalog {
	out := c.clone()
	out.put(r)
	return out
}

// Without returns a catalog without the named relation.
func (c *Catalog) Without(name string) *Catalog {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := c.tables[key]; !ok {
		return c
	}
	out := c.clone()
	delete(out.tables, key)
	out.names = out.names[:0]
	for _, n := range c.names {
		if strings.ToLower(n) != key {
			out.names = append(out.names, n)
		}
	}
	return out
}

// Names lists relation names in registration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

func (c *Catalog) Len() int {
	return len(c.tables)
}
