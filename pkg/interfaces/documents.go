package interfaces

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by DocumentStore.FindOne when no document
// exists for the requested type, identifier and locale.
var ErrDocumentNotFound = errors.New("document not found")

// StatusDraft marks a document revision that has not been published.
const StatusDraft = "draft"

// PopulateMode controls how much of a relational or component field a store
// hydrates when reading a document.
type PopulateMode string

const (
	// PopulateIDs hydrates relations and media down to their identifiers.
	PopulateIDs PopulateMode = "ids"
	// PopulateAll hydrates the full field value (components, dynamic zones).
	PopulateAll PopulateMode = "all"
)

// DocumentQuery identifies a single locale version of a document.
type DocumentQuery struct {
	ContentType string
	DocumentID  string
	Locale      string
	Populate    map[string]PopulateMode
}

// RelationRef points at a related document.
type RelationRef struct {
	ID string `json:"id"`
}

// RelationUpdate is a relation directive accepted inside UpdateRequest.Data.
type RelationUpdate struct {
	Connect []RelationRef `json:"connect"`
}

// UpdateRequest writes one locale version of a document. Stores create the
// locale version when it does not exist yet.
type UpdateRequest struct {
	ContentType string
	DocumentID  string
	Locale      string
	Data        map[string]any
	Status      string
}

// DocumentStore is the host CMS document persistence boundary.
type DocumentStore interface {
	FindOne(ctx context.Context, query DocumentQuery) (map[string]any, error)
	Update(ctx context.Context, req UpdateRequest) error
}
