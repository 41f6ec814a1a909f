package merge

import (
	"errors"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/fields"
)

// ErrSourceDocumentNotFound means the callback refers to a document without
// a source locale version.
var ErrSourceDocumentNotFound = errors.New("merge: source document not found")

// Metadata is the optional status block the workflow sends with a callback.
// Success accepts a bool or a "true"/"false" string.
type Metadata struct {
	Success any    `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the workflow flagged this locale as failed.
func (m *Metadata) Failed() bool {
	if m == nil {
		return false
	}
	switch v := m.Success.(type) {
	case bool:
		return !v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "false")
	default:
		return false
	}
}

// Request is one per-locale callback to reconcile.
type Request struct {
	ContentType  string
	DocumentID   string
	Locale       string
	SourceLocale string
	// Fields is keyed by the external encoding (component__field).
	Fields   map[string]any
	Metadata *Metadata
	// Specs are the configured translatable fields used to decode keys and to
	// keep configured nested paths populated.
	Specs []fields.Spec
}

// Result describes the outcome of a merge. Data is the payload written to
// the target locale; it is nil when nothing was written.
type Result struct {
	Success bool           `json:"success"`
	Locale  string         `json:"locale"`
	Message string         `json:"message"`
	Status  string         `json:"status,omitempty"`
	Data    map[string]any `json:"-"`
}
