// Package merge reconciles per-locale translation callbacks with the source
// and existing target versions of a document.
package merge

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/fields"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/schema"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Engine merges translated fields into target locale documents.
type Engine struct {
	store        interfaces.DocumentStore
	introspector *schema.Introspector
	logger       interfaces.Logger
}

type Option func(*Engine)

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.Ensure(logger)
	}
}

func NewEngine(store interfaces.DocumentStore, introspector *schema.Introspector, opts ...Option) *Engine {
	e := &Engine{store: store, introspector: introspector, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type classified struct {
	relations   schema.Set
	components  schema.Set
	media       schema.Set
	localizable schema.Set
}

// Merge applies req and writes the target locale as a draft. A callback
// whose metadata reports failure returns an unsuccessful result without
// touching the store.
func (e *Engine) Merge(ctx context.Context, req Request) (Result, error) {
	logger := logging.WithDocumentContext(e.logger, req.ContentType, req.DocumentID, req.Locale)

	if req.Metadata.Failed() {
		message := strings.TrimSpace(req.Metadata.Error)
		if message == "" {
			message = fmt.Sprintf("Translation failed for locale %s", req.Locale)
		}
		logger.Warn("merge.callback.failed", "error", message)
		return Result{Success: false, Locale: req.Locale, Message: message}, nil
	}

	if _, err := e.introspector.Require(req.ContentType); err != nil {
		return Result{}, err
	}
	attrs := classified{
		relations:   e.introspector.Relations(req.ContentType),
		components:  e.introspector.Components(req.ContentType),
		media:       e.introspector.Media(req.ContentType),
		localizable: e.introspector.Localizable(req.ContentType),
	}

	regular, nested := decode(req.Fields, req.Specs)

	populate := populateFor(attrs)
	source, err := e.store.FindOne(ctx, interfaces.DocumentQuery{
		ContentType: req.ContentType,
		DocumentID:  req.DocumentID,
		Locale:      req.SourceLocale,
		Populate:    populate,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			return Result{}, fmt.Errorf("%w: %s (%s)", ErrSourceDocumentNotFound, req.DocumentID, req.SourceLocale)
		}
		return Result{}, fmt.Errorf("merge: load source document: %w", err)
	}
	if source == nil {
		return Result{}, fmt.Errorf("%w: %s (%s)", ErrSourceDocumentNotFound, req.DocumentID, req.SourceLocale)
	}

	existing, err := e.store.FindOne(ctx, interfaces.DocumentQuery{
		ContentType: req.ContentType,
		DocumentID:  req.DocumentID,
		Locale:      req.Locale,
		Populate:    populate,
	})
	if err != nil && !errors.Is(err, interfaces.ErrDocumentNotFound) {
		return Result{}, fmt.Errorf("merge: load target document: %w", err)
	}

	data := map[string]any{}
	for field := range attrs.localizable {
		switch {
		case attrs.relations.Has(field):
			value, ok, err := e.relationValue(ctx, req, field, existing, source)
			if err != nil {
				return Result{}, err
			}
			if ok {
				data[field] = value
			}
		case attrs.components.Has(field):
			if value, fromSource, ok := componentBase(field, existing, source); ok {
				if fromSource {
					value = stripIDs(value)
				}
				data[field] = value
			}
		default:
			if value, ok := firstDefined(lookup(regular, field), lookup(existing, field), lookup(source, field)); ok {
				data[field] = value
			}
		}
	}

	for field := range regular {
		if !attrs.localizable.Has(field) {
			logger.Debug("merge.field.skipped", "field", field, "reason", "not localizable")
		}
	}

	copies := map[string]map[string]any{}
	for spec, value := range nested {
		component, ok := e.componentCopy(logger, copies, attrs, spec.Component, existing, source)
		if !ok {
			continue
		}
		component[spec.Field] = value
	}
	for _, spec := range req.Specs {
		if !spec.Nested() {
			continue
		}
		if _, translated := nested[spec]; translated {
			continue
		}
		value, ok := firstDefined(subfield(existing, spec), subfield(source, spec))
		if !ok {
			continue
		}
		component, ok := e.componentCopy(logger, copies, attrs, spec.Component, existing, source)
		if !ok {
			continue
		}
		component[spec.Field] = value
	}
	for name, component := range copies {
		data[name] = component
	}

	if err := e.store.Update(ctx, interfaces.UpdateRequest{
		ContentType: req.ContentType,
		DocumentID:  req.DocumentID,
		Locale:      req.Locale,
		Data:        data,
		Status:      interfaces.StatusDraft,
	}); err != nil {
		return Result{}, fmt.Errorf("merge: write target document: %w", err)
	}

	logger.Info("merge.write", "fields", len(data))
	return Result{
		Success: true,
		Locale:  req.Locale,
		Message: fmt.Sprintf("Translation saved for locale %s", req.Locale),
		Status:  interfaces.StatusDraft,
		Data:    data,
	}, nil
}

func (e *Engine) relationValue(ctx context.Context, req Request, field string, existing, source map[string]any) (any, bool, error) {
	base, ok := firstDefined(lookup(existing, field), lookup(source, field))
	if !ok {
		return nil, false, nil
	}
	ids := relationIDs(base)

	target, hasTarget := e.introspector.RelationTarget(req.ContentType, field)
	if !hasTarget || !e.introspector.IsLocalized(target) {
		if len(ids) == 0 {
			return nil, false, nil
		}
		return connect(ids), true, nil
	}

	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		doc, err := e.store.FindOne(ctx, interfaces.DocumentQuery{
			ContentType: target,
			DocumentID:  id,
			Locale:      req.Locale,
		})
		if errors.Is(err, interfaces.ErrDocumentNotFound) || (err == nil && doc == nil) {
			e.logger.Debug("merge.relation.dropped", "field", field, "related_id", id, "locale", req.Locale)
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("merge: look up relation %s: %w", field, err)
		}
		resolved = append(resolved, id)
	}
	if len(resolved) == 0 {
		return nil, false, nil
	}
	return connect(resolved), true, nil
}

func (e *Engine) componentCopy(logger interfaces.Logger, copies map[string]map[string]any, attrs classified, name string, existing, source map[string]any) (map[string]any, bool) {
	if component, ok := copies[name]; ok {
		return component, true
	}
	if !attrs.components.Has(name) {
		logger.Warn("merge.nested.skipped", "component", name, "reason", "not a component field")
		return nil, false
	}
	if !attrs.localizable.Has(name) {
		logger.Debug("merge.nested.skipped", "component", name, "reason", "not localizable")
		return nil, false
	}
	base, fromSource, ok := componentBase(name, existing, source)
	if !ok {
		component := map[string]any{}
		copies[name] = component
		return component, true
	}
	asMap, isMap := base.(map[string]any)
	if !isMap {
		logger.Warn("merge.nested.skipped", "component", name, "reason", "component value is not an object")
		return nil, false
	}
	component := maps.Clone(asMap)
	if fromSource {
		delete(component, "id")
	}
	copies[name] = component
	return component, true
}

func decode(raw map[string]any, specs []fields.Spec) (map[string]any, map[fields.Spec]any) {
	regular := map[string]any{}
	nested := map[fields.Spec]any{}
	for key, value := range raw {
		spec := fields.Decode(key, specs)
		if spec.Nested() {
			nested[spec] = value
			continue
		}
		regular[spec.Field] = value
	}
	return regular, nested
}

func populateFor(attrs classified) map[string]interfaces.PopulateMode {
	populate := map[string]interfaces.PopulateMode{}
	for name := range attrs.relations {
		populate[name] = interfaces.PopulateIDs
	}
	for name := range attrs.media {
		populate[name] = interfaces.PopulateIDs
	}
	for name := range attrs.components {
		populate[name] = interfaces.PopulateAll
	}
	return populate
}

// componentBase selects the existing target value, falling back to source.
func componentBase(field string, existing, source map[string]any) (any, bool, bool) {
	if value, ok := firstDefined(lookup(existing, field)); ok {
		return value, false, true
	}
	if value, ok := firstDefined(lookup(source, field)); ok {
		return value, true, true
	}
	return nil, false, false
}

type candidate struct {
	value any
	ok    bool
}

func lookup(doc map[string]any, field string) candidate {
	if doc == nil {
		return candidate{}
	}
	value, ok := doc[field]
	return candidate{value: value, ok: ok}
}

func subfield(doc map[string]any, spec fields.Spec) candidate {
	if doc == nil {
		return candidate{}
	}
	component, ok := doc[spec.Component].(map[string]any)
	if !ok {
		return candidate{}
	}
	return lookup(component, spec.Field)
}

// firstDefined returns the first present, non-nil candidate.
func firstDefined(candidates ...candidate) (any, bool) {
	for _, c := range candidates {
		if c.ok && c.value != nil {
			return c.value, true
		}
	}
	return nil, false
}

func relationIDs(value any) []string {
	var ids []string
	seen := map[string]struct{}{}
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var visit func(any)
	visit = func(v any) {
		switch typed := v.(type) {
		case nil:
		case string:
			add(typed)
		case map[string]any:
			if id, ok := typed["documentId"]; ok && id != nil {
				add(fmt.Sprint(id))
				return
			}
			if id, ok := typed["id"]; ok && id != nil {
				add(fmt.Sprint(id))
			}
		case []any:
			for _, item := range typed {
				visit(item)
			}
		case []map[string]any:
			for _, item := range typed {
				visit(item)
			}
		case []string:
			for _, item := range typed {
				add(item)
			}
		case interfaces.RelationUpdate:
			for _, ref := range typed.Connect {
				add(ref.ID)
			}
		default:
			add(fmt.Sprint(typed))
		}
	}
	visit(value)
	return ids
}

func connect(ids []string) interfaces.RelationUpdate {
	refs := make([]interfaces.RelationRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, interfaces.RelationRef{ID: id})
	}
	return interfaces.RelationUpdate{Connect: refs}
}

// stripIDs removes component row ids copied from another locale so the store
// creates fresh component rows for the target locale.
func stripIDs(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := maps.Clone(typed)
		delete(out, "id")
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = stripIDs(item)
		}
		return out
	default:
		return value
	}
}
