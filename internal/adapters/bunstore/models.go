package bunstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DocumentRecord stores one locale version of a host document. The row id is
// derived from content type, document id and locale.
type DocumentRecord struct {
	bun.BaseModel `bun:"table:autotranslate_documents,alias:ad"`

	ID          uuid.UUID      `bun:",pk,type:uuid"                json:"id"`
	ContentType string         `bun:"content_type,notnull"         json:"content_type"`
	DocumentID  string         `bun:"document_id,notnull"          json:"document_id"`
	Locale      string         `bun:"locale,notnull"               json:"locale"`
	Status      string         `bun:"status,notnull,default:'draft'" json:"status"`
	Data        map[string]any `bun:"data,type:jsonb,notnull"      json:"data"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// LocaleRecord is an entry of the locale registry table.
type LocaleRecord struct {
	bun.BaseModel `bun:"table:autotranslate_locales,alias:al"`

	ID        uuid.UUID `bun:",pk,type:uuid"        json:"id"`
	Code      string    `bun:"code,notnull,unique"  json:"code"`
	Name      string    `bun:"name"                 json:"name"`
	Position  int       `bun:"position,notnull"     json:"position"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Models lists the table models owned by this package, in creation order.
func Models() []any {
	return []any{
		(*DocumentRecord)(nil),
		(*LocaleRecord)(nil),
	}
}
