package bunstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cms-autotranslate/internal/identity"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// LocaleRegistry implements interfaces.LocaleRegistry with optional caching.
type LocaleRegistry struct {
	repo repository.Repository[*LocaleRecord]
	now  func() time.Time
}

// NewLocaleRegistry creates a locale registry without caching.
func NewLocaleRegistry(db *bun.DB) *LocaleRegistry {
	return NewLocaleRegistryWithCache(db, nil, nil)
}

// NewLocaleRegistryWithCache creates a locale registry whose reads go through
// the repository cache.
func NewLocaleRegistryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *LocaleRegistry {
	base := NewLocaleRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &LocaleRegistry{repo: base, now: time.Now}
}

// Locales lists the registered locales in registration order.
func (r *LocaleRegistry) Locales(ctx context.Context) ([]interfaces.Locale, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("position ASC", "code ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("bunstore: list locales: %w", err)
	}
	out := make([]interfaces.Locale, 0, len(records))
	for _, rec := range records {
		out = append(out, interfaces.Locale{Code: rec.Code, Name: rec.Name})
	}
	return out, nil
}

// Ensure registers locale unless its code is already present. Existing
// entries keep their name and position.
func (r *LocaleRegistry) Ensure(ctx context.Context, locale interfaces.Locale) error {
	code := strings.TrimSpace(locale.Code)
	if code == "" {
		return fmt.Errorf("bunstore: locale code is required")
	}
	if _, err := r.repo.GetByIdentifier(ctx, code); err == nil {
		return nil
	} else if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("bunstore: load locale %s: %w", code, err)
	}

	_, total, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: count locales: %w", err)
	}
	if _, err := r.repo.Create(ctx, &LocaleRecord{
		ID:        identity.LocaleUUID(code),
		Code:      code,
		Name:      strings.TrimSpace(locale.Name),
		Position:  total,
		CreatedAt: r.now().UTC(),
	}); err != nil {
		return fmt.Errorf("bunstore: create locale %s: %w", code, err)
	}
	return nil
}
