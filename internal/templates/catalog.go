// Package templates holds the built-in HACCP plan templates and the pass that
// turns a template into a plan with concrete hazard and CCP identifiers.
package templates

import (
	"sort"
	"sync"

	"haccpcore/pkg/domain"
)

// Catalog is a read-only set of templates keyed by id. Callers always receive
// deep copies so seed data cannot be mutated through returned values.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]domain.HACCPTemplate
}

// NewCatalog builds a catalog from the supplied templates. Later entries with
// a duplicate id replace earlier ones.
func NewCatalog(templates ...domain.HACCPTemplate) *Catalog {
	c := &Catalog{templates: make(map[string]domain.HACCPTemplate, len(templates))}
	for _, t := range templates {
		c.templates[t.ID] = t.Clone()
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog of built-in templates.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = NewCatalog(builtin()...)
	})
	return defaultCatalog
}

// List returns every template ordered by id.
func (c *Catalog) List() []domain.HACCPTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.HACCPTemplate, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find returns the template with the given id.
func (c *Catalog) Find(id string) (domain.HACCPTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	if !ok {
		return domain.HACCPTemplate{}, false
	}
	return t.Clone(), true
}
