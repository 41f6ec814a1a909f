package autotranslate

import (
	"context"
	"net/http"

	translationcmd "github.com/goliatone/go-cms-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-cms-autotranslate/internal/di"
	cmshttp "github.com/goliatone/go-cms-autotranslate/internal/http"
	"github.com/goliatone/go-cms-autotranslate/internal/progress"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
)

// Service exports the translation orchestration contract.
type Service = translation.Service

type (
	TranslateRequest = translation.TranslateRequest
	TranslateResult  = translation.TranslateResult
	CallbackRequest  = translation.CallbackRequest
	CallbackResult   = translation.CallbackResult
	ProgressResult   = translation.ProgressResult
	ProgressEvent    = progress.Event
	Settings         = settings.Settings
)

// CommandHandlers exports the go-command handlers for translate and callback.
type CommandHandlers = translationcmd.HandlerSet

// HTTPOption customises the HTTP adapter returned by Module.HTTPAPI.
type HTTPOption = cmshttp.Option

// Option overrides a collaborator built by the module.
type Option = di.Option

var (
	WithLoggerProvider     = di.WithLoggerProvider
	WithBunDB              = di.WithBunDB
	WithCache              = di.WithCache
	WithHTTPClient         = di.WithHTTPClient
	WithDocumentStore      = di.WithDocumentStore
	WithSchemaRegistry     = di.WithSchemaRegistry
	WithLocaleRegistry     = di.WithLocaleRegistry
	WithSettingsRepository = di.WithSettingsRepository
	WithCommandRegistry    = di.WithCommandRegistry
)

// Module is the top level façade over the translation engine.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional collaborator overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Service() Service {
	return m.container.Service()
}

func (m *Module) Commands() *CommandHandlers {
	return m.container.Commands()
}

// Translate starts a translation job for a source document.
func (m *Module) Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error) {
	return m.container.Service().Translate(ctx, req)
}

// HandleCallback merges one locale's translated fields.
func (m *Module) HandleCallback(ctx context.Context, req CallbackRequest) (CallbackResult, error) {
	return m.container.Service().HandleCallback(ctx, req)
}

// Progress returns the job events with index >= since.
func (m *Module) Progress(ctx context.Context, jobID string, since int) ProgressResult {
	return m.container.Service().Progress(ctx, jobID, since)
}

// EffectiveSettings resolves the stored settings over the config defaults.
func (m *Module) EffectiveSettings(ctx context.Context) (Settings, error) {
	return m.container.SettingsResolver().Resolve(ctx)
}

// HTTPAPI builds the HTTP adapter wired to the module services.
func (m *Module) HTTPAPI(opts ...HTTPOption) *cmshttp.API {
	return m.container.HTTPAPI(opts...)
}

// Register mounts the HTTP routes on mux.
func (m *Module) Register(mux *http.ServeMux, opts ...HTTPOption) error {
	return m.HTTPAPI(opts...).Register(mux)
}

// Wait blocks until background workflow dispatches have returned.
func (m *Module) Wait() {
	m.container.WaitDispatches()
}

// Shutdown drains dispatches, bounded by ctx, and releases resources.
func (m *Module) Shutdown(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Shutdown(ctx)
}
