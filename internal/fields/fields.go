// Package fields parses the configured translatable field list and encodes
// nested component paths for the workflow wire format.
package fields

import "strings"

// KeySeparator joins a component and its subfield on the wire.
const KeySeparator = "__"

// Spec is a translatable field: a top-level attribute or a single-level
// nested "component.field" path.
type Spec struct {
	Component string
	Field     string
}

// Parse reads a raw entry such as "title" or "seo.metaTitle". Blank input,
// empty segments and deeper paths are rejected.
func Parse(raw string) (Spec, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Spec{}, false
	}
	parts := strings.Split(raw, ".")
	switch len(parts) {
	case 1:
		return Spec{Field: parts[0]}, true
	case 2:
		component := strings.TrimSpace(parts[0])
		field := strings.TrimSpace(parts[1])
		if component == "" || field == "" {
			return Spec{}, false
		}
		return Spec{Component: component, Field: field}, true
	default:
		return Spec{}, false
	}
}

// ParseAll parses every entry, skipping rejected ones and duplicates while
// keeping the configured order.
func ParseAll(raw []string) []Spec {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Spec, 0, len(raw))
	seen := make(map[Spec]struct{}, len(raw))
	for _, entry := range raw {
		spec, ok := Parse(entry)
		if !ok {
			continue
		}
		if _, dup := seen[spec]; dup {
			continue
		}
		seen[spec] = struct{}{}
		out = append(out, spec)
	}
	return out
}

func (s Spec) Nested() bool {
	return s.Component != ""
}

// Path renders the dotted form used in configuration.
func (s Spec) Path() string {
	if s.Nested() {
		return s.Component + "." + s.Field
	}
	return s.Field
}

// Key renders the external key sent to and received from the workflow.
func (s Spec) Key() string {
	if s.Nested() {
		return s.Component + KeySeparator + s.Field
	}
	return s.Field
}

// Decode maps an external key back to the configured spec. Keys that match
// no configured spec are returned as plain field specs; a "__" inside an
// unconfigured key is never split.
func Decode(key string, specs []Spec) Spec {
	for _, spec := range specs {
		if spec.Key() == key {
			return spec
		}
	}
	return Spec{Field: key}
}

// Components lists the distinct components referenced by nested specs.
func Components(specs []Spec) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, spec := range specs {
		if !spec.Nested() {
			continue
		}
		if _, ok := seen[spec.Component]; ok {
			continue
		}
		seen[spec.Component] = struct{}{}
		out = append(out, spec.Component)
	}
	return out
}
