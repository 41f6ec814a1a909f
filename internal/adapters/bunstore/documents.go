// Package bunstore persists documents and locales with go-repository-bun so
// the engine can run against sqlite or postgres without a host CMS.
package bunstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cms-autotranslate/internal/adapters/docdata"
	"github.com/goliatone/go-cms-autotranslate/internal/identity"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

var errUpdateKeyRequired = errors.New("bunstore: update requires content type, document id and locale")

// DocumentStore implements interfaces.DocumentStore on a bun database.
type DocumentStore struct {
	repo repository.Repository[*DocumentRecord]
	now  func() time.Time
	// serializes read-modify-write cycles of Update
	mu sync.Mutex
}

func NewDocumentStore(db *bun.DB) *DocumentStore {
	return &DocumentStore{
		repo: NewDocumentRepository(db),
		now:  time.Now,
	}
}

// FindOne loads a locale version. Fields requested with PopulateIDs are
// reduced to their identifiers.
func (s *DocumentStore) FindOne(ctx context.Context, query interfaces.DocumentQuery) (map[string]any, error) {
	rec, err := s.get(ctx, query.ContentType, query.DocumentID, query.Locale)
	if err != nil {
		return nil, err
	}
	return docdata.Project(recordDocument(rec), query.Populate), nil
}

// Update merges req.Data into the locale version, creating it when missing.
func (s *DocumentStore) Update(ctx context.Context, req interfaces.UpdateRequest) error {
	if strings.TrimSpace(req.ContentType) == "" || strings.TrimSpace(req.DocumentID) == "" || strings.TrimSpace(req.Locale) == "" {
		return errUpdateKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec, err := s.get(ctx, req.ContentType, req.DocumentID, req.Locale)
	switch {
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		status := req.Status
		if status == "" {
			status = interfaces.StatusDraft
		}
		_, err = s.repo.Create(ctx, &DocumentRecord{
			ID:          identity.DocumentUUID(req.ContentType, req.DocumentID, req.Locale),
			ContentType: req.ContentType,
			DocumentID:  req.DocumentID,
			Locale:      req.Locale,
			Status:      status,
			Data:        docdata.Apply(nil, req.Data),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("bunstore: create document: %w", err)
		}
		return nil
	case err != nil:
		return err
	}

	rec.Data = docdata.Apply(rec.Data, req.Data)
	if req.Status != "" {
		rec.Status = req.Status
	}
	rec.UpdatedAt = now
	if _, err := s.repo.Update(ctx, rec,
		repository.UpdateByID(rec.ID.String()),
		repository.UpdateColumns("status", "data", "updated_at"),
	); err != nil {
		return fmt.Errorf("bunstore: update document: %w", err)
	}
	return nil
}

// Put seeds a locale version, replacing its data.
func (s *DocumentStore) Put(ctx context.Context, contentType, documentID, locale string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec, err := s.get(ctx, contentType, documentID, locale)
	switch {
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		_, err = s.repo.Create(ctx, &DocumentRecord{
			ID:          identity.DocumentUUID(contentType, documentID, locale),
			ContentType: contentType,
			DocumentID:  documentID,
			Locale:      locale,
			Status:      interfaces.StatusDraft,
			Data:        docdata.Clone(data),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	case err != nil:
		return err
	}
	rec.Data = docdata.Clone(data)
	rec.UpdatedAt = now
	_, err = s.repo.Update(ctx, rec,
		repository.UpdateByID(rec.ID.String()),
		repository.UpdateColumns("data", "updated_at"),
	)
	return err
}

// Status returns the stored status of a locale version.
func (s *DocumentStore) Status(ctx context.Context, contentType, documentID, locale string) (string, error) {
	rec, err := s.get(ctx, contentType, documentID, locale)
	if err != nil {
		return "", err
	}
	return rec.Status, nil
}

func (s *DocumentStore) get(ctx context.Context, contentType, documentID, locale string) (*DocumentRecord, error) {
	id := identity.DocumentUUID(contentType, documentID, locale)
	rec, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("%w: %s/%s (%s)", interfaces.ErrDocumentNotFound, contentType, documentID, locale)
		}
		return nil, fmt.Errorf("bunstore: load document: %w", err)
	}
	return rec, nil
}

// recordDocument returns the stored data with the identifying keys the host
// CMS includes on every document.
func recordDocument(rec *DocumentRecord) map[string]any {
	doc := docdata.Clone(rec.Data)
	doc["documentId"] = rec.DocumentID
	doc["locale"] = rec.Locale
	return doc
}
