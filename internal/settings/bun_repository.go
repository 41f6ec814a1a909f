package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var errBunDatabaseRequired = errors.New("settings: bun repository requires a database")

// BunRepository persists settings as a single row.
type BunRepository struct {
	db          *bun.DB
	broadcaster *changeBroadcaster
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		broadcaster: newChangeBroadcaster(),
	}
}

// Model exposes the table model for migrations.
func (r *BunRepository) Model() any {
	return (*settingsModel)(nil)
}

func (r *BunRepository) Get(ctx context.Context) (Settings, error) {
	if r.db == nil {
		return Settings{}, errBunDatabaseRequired
	}
	var model settingsModel
	if err := r.db.NewSelect().Model(&model).Where("id = ?", 1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrSettingsNotFound
		}
		return Settings{}, err
	}
	return model.settings(), nil
}

func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if r.db == nil {
		return Settings{}, errBunDatabaseRequired
	}

	previous, err := r.Get(ctx)
	created := errors.Is(err, ErrSettingsNotFound)
	if err != nil && !created {
		return Settings{}, err
	}

	model := modelFromSettings(settings)
	model.ID = 1
	model.UpdatedAt = time.Now().UTC()

	if created {
		if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return Settings{}, err
		}
	} else {
		if _, err := r.db.NewUpdate().
			Model(&model).
			Column("endpoint_url", "api_key", "callback_base_url", "callback_path", "user_id", "source_locale", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return Settings{}, err
		}
	}

	stored, err := r.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	if !created && previous == stored {
		return stored, nil
	}

	eventType := ChangeUpdated
	if created {
		eventType = ChangeCreated
	}
	r.broadcaster.Broadcast(newChangeEvent(eventType, stored))
	return stored, nil
}

func (r *BunRepository) Delete(ctx context.Context) error {
	if r.db == nil {
		return errBunDatabaseRequired
	}
	res, err := r.db.NewDelete().Model((*settingsModel)(nil)).Where("id = ?", 1).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrSettingsNotFound
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, Settings{}))
	return nil
}

func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

type settingsModel struct {
	bun.BaseModel `bun:"table:autotranslate_settings"`

	ID              int       `bun:",pk"`
	EndpointURL     string    `bun:"endpoint_url"`
	APIKey          string    `bun:"api_key"`
	CallbackBaseURL string    `bun:"callback_base_url"`
	CallbackPath    string    `bun:"callback_path"`
	UserID          string    `bun:"user_id"`
	SourceLocale    string    `bun:"source_locale"`
	UpdatedAt       time.Time `bun:"updated_at"`
}

func modelFromSettings(s Settings) settingsModel {
	return settingsModel{
		EndpointURL:     s.EndpointURL,
		APIKey:          s.APIKey,
		CallbackBaseURL: s.CallbackBaseURL,
		CallbackPath:    s.CallbackPath,
		UserID:          s.UserID,
		SourceLocale:    s.SourceLocale,
	}
}

func (m settingsModel) settings() Settings {
	return Settings{
		EndpointURL:     m.EndpointURL,
		APIKey:          m.APIKey,
		CallbackBaseURL: m.CallbackBaseURL,
		CallbackPath:    m.CallbackPath,
		UserID:          m.UserID,
		SourceLocale:    m.SourceLocale,
	}
}
