package bunstore

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDocumentRepository creates a repository for document records.
func NewDocumentRepository(db *bun.DB) repository.Repository[*DocumentRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DocumentRecord]{
		NewRecord: func() *DocumentRecord { return &DocumentRecord{} },
		GetID: func(rec *DocumentRecord) uuid.UUID {
			return rec.ID
		},
		SetID: func(rec *DocumentRecord, id uuid.UUID) {
			rec.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(rec *DocumentRecord) string {
			return rec.ID.String()
		},
	})
}

// NewLocaleRepository creates a repository for locale records keyed by code.
func NewLocaleRepository(db *bun.DB) repository.Repository[*LocaleRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*LocaleRecord]{
		NewRecord: func() *LocaleRecord { return &LocaleRecord{} },
		GetID: func(rec *LocaleRecord) uuid.UUID {
			return rec.ID
		},
		SetID: func(rec *LocaleRecord, id uuid.UUID) {
			rec.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(rec *LocaleRecord) string {
			return rec.Code
		},
	})
}
