package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	command "github.com/goliatone/go-command"

	translationcmd "github.com/goliatone/go-cms-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// DefaultBasePath is the mount point used when WithBasePath is not supplied.
const DefaultBasePath = "/api/autotranslate"

var (
	ErrTranslateHandlerRequired = errors.New("http: translate handler is required")
	ErrApplyHandlerRequired     = errors.New("http: apply handler is required")
	ErrProgressReaderRequired   = errors.New("http: progress reader is required")
)

// ProgressReader exposes job progress events.
type ProgressReader interface {
	Progress(ctx context.Context, jobID string, since int) translation.ProgressResult
}

// API registers the translation endpoints.
type API struct {
	basePath       string
	translate      command.Commander[translationcmd.TranslateDocumentCommand]
	apply          command.Commander[translationcmd.ApplyTranslationCommand]
	progress       ProgressReader
	settingsRepo   settings.Repository
	settingsView   translation.SettingsResolver
	callbackSecret string
	logger         interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: DefaultBasePath,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api/autotranslate").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithCommandHandlers wires the translate and callback command handlers.
func WithCommandHandlers(set *translationcmd.HandlerSet) Option {
	return func(api *API) {
		if set == nil {
			return
		}
		api.translate = set.Translate
		api.apply = set.Apply
	}
}

func WithTranslateHandler(handler command.Commander[translationcmd.TranslateDocumentCommand]) Option {
	return func(api *API) {
		api.translate = handler
	}
}

func WithApplyHandler(handler command.Commander[translationcmd.ApplyTranslationCommand]) Option {
	return func(api *API) {
		api.apply = handler
	}
}

func WithProgressReader(reader ProgressReader) Option {
	return func(api *API) {
		api.progress = reader
	}
}

// WithSettings enables the settings routes. Reads go through resolver so the
// response reflects config-file defaults; writes go to repo.
func WithSettings(repo settings.Repository, resolver translation.SettingsResolver) Option {
	return func(api *API) {
		api.settingsRepo = repo
		api.settingsView = resolver
	}
}

// WithCallbackSecret sets the bearer token required on the callback route.
func WithCallbackSecret(secret string) Option {
	return func(api *API) {
		api.callbackSecret = strings.TrimSpace(secret)
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		api.logger = logging.Ensure(logger)
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api.translate == nil {
		return ErrTranslateHandlerRequired
	}
	if api.apply == nil {
		return ErrApplyHandlerRequired
	}
	if api.progress == nil {
		return ErrProgressReaderRequired
	}

	base := api.basePath
	mux.HandleFunc("POST "+joinPath(base, "translate"), api.handleTranslate)
	mux.HandleFunc("POST "+joinPath(base, "callback"), api.handleCallback)
	mux.HandleFunc("GET "+joinPath(base, "progress/{jobId}"), api.handleProgress)

	if api.settingsRepo != nil && api.settingsView != nil {
		settingsPath := joinPath(base, "settings")
		mux.HandleFunc("GET "+settingsPath, api.handleGetSettings)
		mux.HandleFunc("PUT "+settingsPath, api.handlePutSettings)
	}

	if api.callbackSecret == "" {
		api.logger.Warn("http.callback.unauthenticated", "path", joinPath(base, "callback"))
	}
	return nil
}
