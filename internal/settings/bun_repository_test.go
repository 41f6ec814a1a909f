package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-cms-autotranslate/pkg/testsupport"
)

func TestBunRepository_CRUDEvents(t *testing.T) {
	db := newTestDB(t, "settings_crud")
	repo := NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := repo.Upsert(ctx, Settings{EndpointURL: "https://workflow.example.com/run", SourceLocale: "en"}); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	assertEvent(t, events, ChangeCreated)

	if _, err := repo.Upsert(ctx, Settings{EndpointURL: "https://workflow.example.com/run", SourceLocale: "de"}); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	assertEvent(t, events, ChangeUpdated)

	fetched, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fetched.SourceLocale != "de" || fetched.EndpointURL != "https://workflow.example.com/run" {
		t.Fatalf("Get() returned %+v", fetched)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, ChangeDeleted)

	if _, err := repo.Get(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

func TestBunRepository_DeleteMissing(t *testing.T) {
	repo := NewBunRepository(newTestDB(t, "settings_delete_missing"))

	if err := repo.Delete(context.Background()); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()

	db, err := testsupport.NewBunSQLiteDB(context.Background(), name, (*settingsModel)(nil))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
