// Package identity derives stable row identifiers for stored documents and
// locales.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyPrefix = "autotranslate:"

// UUID hashes key into a UUID. Equal keys always produce equal ids. Blank
// keys yield uuid.Nil.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID identifies one locale version of a document.
func DocumentUUID(contentType, documentID, locale string) uuid.UUID {
	return UUID(keyPrefix + "document:" +
		strings.TrimSpace(contentType) + ":" +
		strings.TrimSpace(documentID) + ":" +
		normalizeLocale(locale))
}

func LocaleUUID(code string) uuid.UUID {
	return UUID(keyPrefix + "locale:" + normalizeLocale(code))
}

func normalizeLocale(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
