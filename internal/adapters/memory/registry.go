package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// SchemaRegistry holds content type schemas registered at startup.
type SchemaRegistry struct {
	mu    sync.RWMutex
	types map[string]interfaces.ContentTypeSchema
}

func NewSchemaRegistry(schemas ...interfaces.ContentTypeSchema) *SchemaRegistry {
	r := &SchemaRegistry{types: make(map[string]interfaces.ContentTypeSchema)}
	for _, ct := range schemas {
		r.Register(ct)
	}
	return r
}

func (r *SchemaRegistry) Register(ct interfaces.ContentTypeSchema) {
	ct.Attributes = maps.Clone(ct.Attributes)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[ct.UID] = ct
}

func (r *SchemaRegistry) ContentType(uid string) (interfaces.ContentTypeSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.types[uid]
	if !ok {
		return interfaces.ContentTypeSchema{}, false
	}
	ct.Attributes = maps.Clone(ct.Attributes)
	return ct, true
}

// LocaleRegistry is a fixed list of locales.
type LocaleRegistry struct {
	mu      sync.RWMutex
	locales []interfaces.Locale
}

func NewLocaleRegistry(locales ...interfaces.Locale) *LocaleRegistry {
	return &LocaleRegistry{locales: slices.Clone(locales)}
}

func (r *LocaleRegistry) Locales(context.Context) ([]interfaces.Locale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.locales), nil
}

func (r *LocaleRegistry) Add(locale interfaces.Locale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.locales {
		if existing.Code == locale.Code {
			return
		}
	}
	r.locales = append(r.locales, locale)
}
