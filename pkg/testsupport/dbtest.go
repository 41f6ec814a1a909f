// Package testsupport provides database and fixture helpers shared by the
// package tests.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// SQLiteMemoryDSN names a shared in-memory sqlite database. Every connection
// opened with the same DSN sees the same data while one of them stays open.
func SQLiteMemoryDSN(name string) string {
	if name == "" {
		name = "autotranslate"
	}
	return "file:" + name + "?mode=memory&cache=shared&_fk=1"
}

// NewSQLiteMemoryDB opens a named shared in-memory sqlite database. Distinct
// names give isolated databases within one test binary.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", SQLiteMemoryDSN(name))
}

// NewBunSQLiteDB wraps NewSQLiteMemoryDB in bun and creates a table for each
// model.
func NewBunSQLiteDB(ctx context.Context, name string, models ...any) (*bun.DB, error) {
	sqldb, err := NewSQLiteMemoryDB(name)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("testsupport: create table for %T: %w", model, err)
		}
	}
	return db, nil
}
