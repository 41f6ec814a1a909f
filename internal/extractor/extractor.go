// Package extractor pulls the configured translatable values out of a source
// document.
package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-cms-autotranslate/internal/fields"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/schema"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

var (
	// ErrNoTranslatableFields means the field configuration is empty after
	// dropping invalid entries.
	ErrNoTranslatableFields = errors.New("extractor: no translatable fields configured")
	// ErrSourceDocumentNotFound means the document has no source locale version.
	ErrSourceDocumentNotFound = errors.New("extractor: source document not found")
)

// Request identifies the source document to read.
type Request struct {
	ContentType  string
	DocumentID   string
	SourceLocale string
	Fields       []string
}

// Extractor reads source documents through the host document store.
type Extractor struct {
	store        interfaces.DocumentStore
	introspector *schema.Introspector
	logger       interfaces.Logger
}

type Option func(*Extractor)

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Extractor) {
		e.logger = logging.Ensure(logger)
	}
}

// New builds an extractor. Nested specs are only honoured when introspector
// reports their parent attribute as a component or dynamic zone.
func New(store interfaces.DocumentStore, introspector *schema.Introspector, opts ...Option) *Extractor {
	e := &Extractor{store: store, introspector: introspector, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns a flat map of external keys to non-empty source values.
// Nested specs are read from their populated component; a component missing
// from the schema or the document, or a missing subfield, contributes nothing.
func (e *Extractor) Extract(ctx context.Context, req Request) (map[string]any, error) {
	configured := fields.ParseAll(req.Fields)
	if len(configured) == 0 {
		return nil, ErrNoTranslatableFields
	}
	specs := e.schemaSpecs(req.ContentType, configured)

	populate := map[string]interfaces.PopulateMode{}
	for _, component := range fields.Components(specs) {
		populate[component] = interfaces.PopulateAll
	}

	doc, err := e.store.FindOne(ctx, interfaces.DocumentQuery{
		ContentType: req.ContentType,
		DocumentID:  req.DocumentID,
		Locale:      req.SourceLocale,
		Populate:    populate,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrSourceDocumentNotFound, req.DocumentID, req.SourceLocale)
		}
		return nil, fmt.Errorf("extractor: load source document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrSourceDocumentNotFound, req.DocumentID, req.SourceLocale)
	}

	out := make(map[string]any, len(specs))
	for _, spec := range specs {
		value, ok := lookup(doc, spec)
		if !ok || isEmpty(value) {
			continue
		}
		out[spec.Key()] = value
	}

	logging.WithDocumentContext(e.logger, req.ContentType, req.DocumentID, req.SourceLocale).
		Debug("extractor.fields.extracted", "configured", len(configured), "extracted", len(out))
	return out, nil
}

// schemaSpecs drops nested specs whose parent is not a component attribute of
// contentType.
func (e *Extractor) schemaSpecs(contentType string, specs []fields.Spec) []fields.Spec {
	components := e.introspector.Components(contentType)
	out := make([]fields.Spec, 0, len(specs))
	for _, spec := range specs {
		if spec.Nested() && !components.Has(spec.Component) {
			e.logger.Debug("extractor.spec.skipped", "field", spec.Path(), "reason", "not a component")
			continue
		}
		out = append(out, spec)
	}
	return out
}

func lookup(doc map[string]any, spec fields.Spec) (any, bool) {
	if !spec.Nested() {
		value, ok := doc[spec.Field]
		return value, ok
	}
	component, ok := doc[spec.Component].(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := component[spec.Field]
	return value, ok
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok && s == "" {
		return true
	}
	return false
}
