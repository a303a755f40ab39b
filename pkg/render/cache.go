package render

import (
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/i18n"
)

type cacheKey struct {
	form uuid.UUID
	lang i18n.Language
}

// Cache memoizes rendered markup per (form, language). Definitions are
// immutable once published, so entries only need invalidating when a draft
// is republished as a new version or translations change.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]string)}
}

// Get returns the cached markup, if any.
func (c *Cache) Get(formID uuid.UUID, lang i18n.Language) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	markup, ok := c.entries[cacheKey{form: formID, lang: lang}]
	return markup, ok
}

// Put stores markup for a (form, language) pair.
func (c *Cache) Put(formID uuid.UUID, lang i18n.Language, markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{form: formID, lang: lang}] = markup
}

// Invalidate drops every language's entry for a form.
func (c *Cache) Invalidate(formID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.form == formID {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached fragments.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
