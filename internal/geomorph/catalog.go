package geomorph

import "math/rand"

// Catalog is a read-only template provider. Lookup slices are built
// once at construction; callers must not mutate returned templates.
type Catalog struct {
	byID   map[string]*Template
	byType map[string][]*Template
	all    []*Template
	rng    *rand.Rand
}

func NewCatalog(templates []*Template, rng *rand.Rand) *Catalog {
	c := &Catalog{
		byID:   make(map[string]*Template, len(templates)),
		byType: make(map[string][]*Template),
		all:    templates,
		rng:    rng,
	}
	for _, t := range templates {
		c.byID[t.ID] = t
		c.byType[t.Type] = append(c.byType[t.Type], t)
	}
	return c
}

func (c *Catalog) ByID(id string) (*Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

func (c *Catalog) ByType(roomType string) []*Template {
	return c.byType[roomType]
}

// Random returns a random template of the given type, or nil if the
// catalog has none.
func (c *Catalog) Random(roomType string) *Template {
	candidates := c.byType[roomType]
	if len(candidates) == 0 {
		return nil
	}
	return candidates[c.rng.Intn(len(candidates))]
}

func (c *Catalog) All() []*Template {
	return c.all
}
