package fieldtypes

import (
	"sort"
	"strings"
	"sync"
)

// Registry is the in-process catalog of field types. It is seeded with the
// system entries and safe for concurrent use. The catalog is small and
// stable, so alias lookups are linear scans.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]FieldType
}

// NewRegistry constructs a registry seeded with the system catalog.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]FieldType, len(systemCatalog))}
	for _, entry := range systemCatalog {
		r.entries[entry.Key] = entry
	}
	return r
}

// NewEmptyRegistry constructs a registry without seeds. Intended for tests.
func NewEmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]FieldType)}
}

// Lookup returns the entry for a machine key.
func (r *Registry) Lookup(key string) (FieldType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[normalizeKey(key)]
	if !ok {
		return FieldType{}, ErrNotFound
	}
	return entry, nil
}

// LookupCanonical returns the entry whose canonical attribute name matches
// (case-insensitive).
func (r *Registry) LookupCanonical(name string) (FieldType, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return FieldType{}, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if strings.ToLower(entry.CanonicalName) == needle {
			return entry, nil
		}
	}
	return FieldType{}, ErrNotFound
}

// LookupAlias matches an alias case-insensitively against every entry's alias
// list. Key and canonical name are accepted as implicit aliases.
func (r *Registry) LookupAlias(alias string) (FieldType, error) {
	needle := normalizeAlias(alias)
	if needle == "" {
		return FieldType{}, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if normalizeAlias(entry.Key) == needle || strings.ToLower(entry.CanonicalName) == needle {
			return entry, nil
		}
		for _, candidate := range entry.Aliases {
			if normalizeAlias(candidate) == needle {
				return entry, nil
			}
		}
	}
	return FieldType{}, ErrNotFound
}

// List returns all entries ordered by (category, key). Categories follow the
// fixed CategoryOrder; unknown categories sort after the known ones.
func (r *Registry) List() []FieldType {
	r.mu.RLock()
	out := make([]FieldType, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ci, cj := categoryRank(out[i].Category), categoryRank(out[j].Category)
		if ci != cj {
			return ci < cj
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ListRequired returns the entries whose Required flag is set, in List order.
func (r *Registry) ListRequired() []FieldType {
	all := r.List()
	out := all[:0]
	for _, entry := range all {
		if entry.Required {
			out = append(out, entry)
		}
	}
	return append([]FieldType(nil), out...)
}

// CreateCustom adds a non-system entry. Key and canonical name must be
// globally unique; conflicts are rejected with a ValidationError naming the
// conflicting entry.
func (r *Registry) CreateCustom(entry FieldType) error {
	entry.Key = normalizeKey(entry.Key)
	entry.CanonicalName = strings.TrimSpace(entry.CanonicalName)
	entry.System = false
	if entry.Key == "" {
		return &ValidationError{Field: "key", Reason: "machine key is required"}
	}
	if entry.CanonicalName == "" {
		return &ValidationError{Field: "canonicalName", Reason: "canonical name is required"}
	}
	if entry.Category == "" {
		entry.Category = CategoryCustom
	}
	if entry.DataType == "" {
		entry.DataType = DataString
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[entry.Key]; ok {
		return &ValidationError{Field: "key", Reason: "duplicate machine key " + existing.Key}
	}
	needle := strings.ToLower(entry.CanonicalName)
	for _, existing := range r.entries {
		if strings.ToLower(existing.CanonicalName) == needle {
			return &ValidationError{Field: "canonicalName", Reason: "duplicate canonical name " + existing.CanonicalName}
		}
	}

	r.entries[entry.Key] = entry
	return nil
}

// Delete removes a custom entry. System entries are immutable once seeded.
func (r *Registry) Delete(key string) error {
	normalized := normalizeKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[normalized]
	if !ok {
		return ErrNotFound
	}
	if entry.System {
		return &StateError{Key: normalized, Reason: "system entries cannot be deleted"}
	}
	delete(r.entries, normalized)
	return nil
}

func categoryRank(category Category) int {
	for idx, candidate := range CategoryOrder {
		if candidate == category {
			return idx
		}
	}
	return len(CategoryOrder)
}
