package schema

import "errors"

// ErrContentTypeNotFound is returned when a required content type schema is
// not registered.
var ErrContentTypeNotFound = errors.New("schema: content type not found")
