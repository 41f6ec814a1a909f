package interfaces

import "context"

// Attribute types understood by the schema introspector.
const (
	AttributeRelation    = "relation"
	AttributeComponent   = "component"
	AttributeDynamicZone = "dynamiczone"
	AttributeMedia       = "media"
)

// Attribute describes one field of a content type.
type Attribute struct {
	Type      string `json:"type" yaml:"type"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty"`
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
	Private   bool   `json:"private,omitempty" yaml:"private,omitempty"`
	// Localized mirrors pluginOptions.i18n.localized; nil means unset.
	Localized *bool `json:"localized,omitempty" yaml:"localized,omitempty"`
}

// ContentTypeSchema is the attribute map registered for a content type.
type ContentTypeSchema struct {
	UID        string               `json:"uid" yaml:"uid"`
	Localized  bool                 `json:"localized" yaml:"localized"`
	Attributes map[string]Attribute `json:"attributes" yaml:"attributes"`
}

// SchemaRegistry resolves content type schemas by uid.
type SchemaRegistry interface {
	ContentType(uid string) (ContentTypeSchema, bool)
}

// Locale is an entry of the host locale registry.
type Locale struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// LocaleRegistry lists the locales configured in the host CMS.
type LocaleRegistry interface {
	Locales(ctx context.Context) ([]Locale, error)
}
