// Package docdata holds the document map operations shared by the document
// store adapters: deep copies, relation connect directives and id projection.
package docdata

import (
	"fmt"
	"maps"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Clone deep copies doc. Nested maps and slices are copied; leaf values are
// shared.
func Clone(doc map[string]any) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	return CloneValue(doc).(map[string]any)
}

func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = CloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = CloneValue(v)
		}
		return out
	default:
		return value
	}
}

// Apply returns a copy of doc with data merged in. RelationUpdate values are
// resolved against the stored relation list instead of replacing it.
func Apply(doc, data map[string]any) map[string]any {
	out := maps.Clone(doc)
	if out == nil {
		out = map[string]any{}
	}
	for field, value := range data {
		switch typed := value.(type) {
		case interfaces.RelationUpdate:
			out[field] = Connect(out[field], typed)
		case *interfaces.RelationUpdate:
			if typed != nil {
				out[field] = Connect(out[field], *typed)
			}
		default:
			out[field] = CloneValue(value)
		}
	}
	return out
}

// Project reduces the fields requested with PopulateIDs to their identifiers.
func Project(doc map[string]any, populate map[string]interfaces.PopulateMode) map[string]any {
	for field, mode := range populate {
		if mode != interfaces.PopulateIDs {
			continue
		}
		if value, ok := doc[field]; ok {
			doc[field] = projectIDs(value)
		}
	}
	return doc
}

// Connect appends the referenced ids to current, skipping ids already
// present.
func Connect(current any, update interfaces.RelationUpdate) any {
	var out []any
	seen := map[string]struct{}{}
	if list, ok := current.([]any); ok {
		for _, item := range list {
			if id := RelationID(item); id != "" {
				seen[id] = struct{}{}
			}
			out = append(out, item)
		}
	}
	for _, ref := range update.Connect {
		if ref.ID == "" {
			continue
		}
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, map[string]any{"documentId": ref.ID})
	}
	if out == nil {
		out = []any{}
	}
	return out
}

// RelationID extracts the identifier of a stored relation entry.
func RelationID(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case map[string]any:
		if id, ok := typed["documentId"].(string); ok {
			return id
		}
		if id, ok := typed["id"]; ok && id != nil {
			return fmt.Sprint(id)
		}
	}
	return ""
}

func projectIDs(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		projected := map[string]any{}
		for _, key := range []string{"id", "documentId"} {
			if v, ok := typed[key]; ok {
				projected[key] = v
			}
		}
		return projected
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = projectIDs(item)
		}
		return out
	default:
		return value
	}
}
