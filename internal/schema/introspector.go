// Package schema classifies content type attributes for translation.
package schema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// systemFields are managed by the host CMS and never translated.
var systemFields = map[string]struct{}{
	"id":            {},
	"documentId":    {},
	"createdAt":     {},
	"updatedAt":     {},
	"publishedAt":   {},
	"createdBy":     {},
	"updatedBy":     {},
	"locale":        {},
	"localizations": {},
}

// Set is a set of attribute names.
type Set map[string]struct{}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Introspector answers attribute classification questions over a schema
// registry. Unknown content types yield empty sets.
type Introspector struct {
	registry interfaces.SchemaRegistry
}

func NewIntrospector(registry interfaces.SchemaRegistry) *Introspector {
	return &Introspector{registry: registry}
}

// Require returns the schema for uid or ErrContentTypeNotFound.
func (i *Introspector) Require(uid string) (interfaces.ContentTypeSchema, error) {
	ct, ok := i.lookup(uid)
	if !ok {
		return interfaces.ContentTypeSchema{}, fmt.Errorf("%w: %s", ErrContentTypeNotFound, uid)
	}
	return ct, nil
}

func (i *Introspector) Relations(uid string) Set {
	return i.collect(uid, func(_ string, attr interfaces.Attribute) bool {
		return attr.Type == interfaces.AttributeRelation
	})
}

// Components includes both single components and dynamic zones.
func (i *Introspector) Components(uid string) Set {
	return i.collect(uid, func(_ string, attr interfaces.Attribute) bool {
		return attr.Type == interfaces.AttributeComponent || attr.Type == interfaces.AttributeDynamicZone
	})
}

func (i *Introspector) Media(uid string) Set {
	return i.collect(uid, func(_ string, attr interfaces.Attribute) bool {
		return attr.Type == interfaces.AttributeMedia
	})
}

// Localizable lists the attributes whose values may differ per locale.
func (i *Introspector) Localizable(uid string) Set {
	return i.collect(uid, func(name string, attr interfaces.Attribute) bool {
		if _, system := systemFields[name]; system {
			return false
		}
		if attr.Private {
			return false
		}
		if attr.Localized != nil && !*attr.Localized {
			return false
		}
		return true
	})
}

// RelationTarget returns the target content type of a relation attribute.
func (i *Introspector) RelationTarget(uid, field string) (string, bool) {
	ct, ok := i.lookup(uid)
	if !ok {
		return "", false
	}
	attr, ok := ct.Attributes[field]
	if !ok || attr.Type != interfaces.AttributeRelation || strings.TrimSpace(attr.Target) == "" {
		return "", false
	}
	return attr.Target, true
}

// IsLocalized reports whether a content type stores one version per locale.
func (i *Introspector) IsLocalized(uid string) bool {
	ct, ok := i.lookup(uid)
	return ok && ct.Localized
}

func (i *Introspector) HasComponent(uid, field string) bool {
	return i.Components(uid).Has(field)
}

func (i *Introspector) lookup(uid string) (interfaces.ContentTypeSchema, bool) {
	if i == nil || i.registry == nil || strings.TrimSpace(uid) == "" {
		return interfaces.ContentTypeSchema{}, false
	}
	return i.registry.ContentType(uid)
}

func (i *Introspector) collect(uid string, keep func(string, interfaces.Attribute) bool) Set {
	out := Set{}
	ct, ok := i.lookup(uid)
	if !ok {
		return out
	}
	for name, attr := range ct.Attributes {
		if keep(name, attr) {
			out[name] = struct{}{}
		}
	}
	return out
}
