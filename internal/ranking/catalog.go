package ranking

import "strings"

// ServiceEntry is one canonical prestation and its accepted spellings.
type ServiceEntry struct {
	Name    string
	Aliases []string
}

// Catalog resolves free-text prestation input to canonical service names.
type Catalog struct {
	byTerm map[string]string
}

// NewCatalog indexes names and aliases case-insensitively. When two entries
// claim the same spelling the first one wins.
func NewCatalog(entries []ServiceEntry) *Catalog {
	c := &Catalog{byTerm: make(map[string]string)}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		c.add(name, name)
		for _, alias := range e.Aliases {
			c.add(alias, name)
		}
	}
	return c
}

func (c *Catalog) add(term, name string) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return
	}
	if _, taken := c.byTerm[key]; !taken {
		c.byTerm[key] = name
	}
}

// Resolve returns the canonical name for term, if any.
func (c *Catalog) Resolve(term string) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.byTerm[strings.ToLower(strings.TrimSpace(term))]
	return name, ok
}

// Len is the number of indexed spellings.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byTerm)
}
