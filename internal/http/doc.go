// Package http provides net/http adapters for the translation engine.
//
// Routes mount under /api/autotranslate by default:
//   - POST /translate: start a translation job for a document
//   - POST /callback?contentType={uid}: merge one translated locale
//   - GET /progress/{jobId}?since=N: poll job progress events
//   - GET, PUT /settings: read or replace the runtime settings
//
// Host applications register the handlers on their own mux.
package http
