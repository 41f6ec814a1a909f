// Package memory provides in-process implementations of the host CMS
// collaborators for tests, demos and the default serve mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-cms-autotranslate/internal/adapters/docdata"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

type documentKey struct {
	contentType string
	documentID  string
	locale      string
}

// DocumentStore keeps one map per document locale version.
type DocumentStore struct {
	mu       sync.RWMutex
	docs     map[documentKey]map[string]any
	statuses map[documentKey]string
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:     make(map[documentKey]map[string]any),
		statuses: make(map[documentKey]string),
	}
}

// Put seeds a locale version, replacing any previous value.
func (s *DocumentStore) Put(contentType, documentID, locale string, doc map[string]any) {
	key := documentKey{contentType, documentID, locale}
	stored := docdata.Clone(doc)
	stored["documentId"] = documentID
	stored["locale"] = locale

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = stored
}

// FindOne returns a copy of the locale version. Fields requested with
// PopulateIDs are reduced to their identifiers.
func (s *DocumentStore) FindOne(_ context.Context, query interfaces.DocumentQuery) (map[string]any, error) {
	key := documentKey{query.ContentType, query.DocumentID, query.Locale}
	s.mu.RLock()
	doc, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s (%s)", interfaces.ErrDocumentNotFound, query.ContentType, query.DocumentID, query.Locale)
	}

	return docdata.Project(docdata.Clone(doc), query.Populate), nil
}

// Update merges data into the locale version, creating it when missing.
// Relation connect directives are appended to the stored relation list.
func (s *DocumentStore) Update(_ context.Context, req interfaces.UpdateRequest) error {
	if req.ContentType == "" || req.DocumentID == "" || req.Locale == "" {
		return fmt.Errorf("memory: update requires content type, document id and locale")
	}
	key := documentKey{req.ContentType, req.DocumentID, req.Locale}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		doc = map[string]any{"documentId": req.DocumentID, "locale": req.Locale}
	}
	s.docs[key] = docdata.Apply(doc, req.Data)
	if req.Status != "" {
		s.statuses[key] = req.Status
	}
	return nil
}

// Status returns the status recorded by the last Update of a locale version.
func (s *DocumentStore) Status(contentType, documentID, locale string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses[documentKey{contentType, documentID, locale}]
}
