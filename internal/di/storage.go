package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-cms-autotranslate/internal/adapters/bunstore"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
)

// configureStorage builds the bun-backed collaborators when the bun provider
// is selected, then falls back to memory implementations for anything unset.
func (c *Container) configureStorage(ctx context.Context) error {
	if strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), "bun") {
		if err := c.configureBunStorage(ctx); err != nil {
			return err
		}
	}
	c.memoryDefaults()
	return nil
}

func (c *Container) configureBunStorage(ctx context.Context) error {
	if c.bunDB == nil {
		db, err := openBunDB(c.Config.Storage.Driver, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	settingsRepo := settings.NewBunRepository(c.bunDB)
	models := append(bunstore.Models(), settingsRepo.Model())
	for _, model := range models {
		if _, err := c.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("di: create table for %T: %w", model, err)
		}
	}

	if c.documents == nil {
		c.documents = bunstore.NewDocumentStore(c.bunDB)
	}
	if c.settingsRepo == nil {
		c.settingsRepo = settingsRepo
	}
	if c.locales == nil {
		if err := c.configureCache(); err != nil {
			return err
		}
		registry := bunstore.NewLocaleRegistryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		for _, locale := range c.Config.Locales {
			if err := registry.Ensure(ctx, locale); err != nil {
				return fmt.Errorf("di: seed locale %s: %w", locale.Code, err)
			}
		}
		c.locales = registry
	}
	return nil
}

// configureCache builds the repository cache service when caching is enabled
// and none was supplied.
func (c *Container) configureCache() error {
	if !c.Config.Cache.Enabled || c.cacheService != nil {
		return nil
	}
	cfg := repocache.DefaultConfig()
	if c.Config.Cache.TTL > 0 {
		cfg.TTL = c.Config.Cache.TTL
	} else {
		cfg.TTL = time.Minute
	}
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		return fmt.Errorf("di: configure cache: %w", err)
	}
	c.cacheService = service
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func openBunDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pg":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	}
}

func (c *Container) closeDB() error {
	if !c.ownsDB || c.bunDB == nil {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}
