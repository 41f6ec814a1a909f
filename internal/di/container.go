// Package di wires the translation engine from a runtime configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cms-autotranslate/internal/adapters/memory"
	translationcmd "github.com/goliatone/go-cms-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-cms-autotranslate/internal/dispatch"
	"github.com/goliatone/go-cms-autotranslate/internal/extractor"
	cmshttp "github.com/goliatone/go-cms-autotranslate/internal/http"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/logging/gologger"
	"github.com/goliatone/go-cms-autotranslate/internal/merge"
	"github.com/goliatone/go-cms-autotranslate/internal/progress"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/internal/schema"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Container holds the wired services. Collaborators supplied through options
// take precedence over the ones built from the configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	httpClient    *http.Client

	documents    interfaces.DocumentStore
	schemas      interfaces.SchemaRegistry
	locales      interfaces.LocaleRegistry
	settingsRepo settings.Repository
	registry     translationcmd.CommandRegistry

	resolver     *settings.Resolver
	introspector *schema.Introspector
	tracker      *progress.Tracker
	dispatcher   *dispatch.Dispatcher
	merger       *merge.Engine
	service      translation.Service
	commands     *translationcmd.HandlerSet

	stopWatch context.CancelFunc
	closeOnce sync.Once
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an open database for the bun storage provider. The
// container does not close databases it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		if db != nil {
			c.bunDB = db
		}
	}
}

// WithCache enables the repository cache for the bun locale registry.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithHTTPClient sets the client used for outbound workflow requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithDocumentStore(store interfaces.DocumentStore) Option {
	return func(c *Container) {
		if store != nil {
			c.documents = store
		}
	}
}

func WithSchemaRegistry(registry interfaces.SchemaRegistry) Option {
	return func(c *Container) {
		if registry != nil {
			c.schemas = registry
		}
	}
}

func WithLocaleRegistry(registry interfaces.LocaleRegistry) Option {
	return func(c *Container) {
		if registry != nil {
			c.locales = registry
		}
	}
}

func WithSettingsRepository(repo settings.Repository) Option {
	return func(c *Container) {
		if repo != nil {
			c.settingsRepo = repo
		}
	}
}

// WithCommandRegistry registers the translation command handlers on reg.
func WithCommandRegistry(reg translationcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(context.Background()); err != nil {
		c.closeDB()
		return nil, err
	}
	if err := c.configureServices(); err != nil {
		c.closeDB()
		return nil, err
	}
	c.watchSettings()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(c.Config.Logging)
			if err != nil {
				return fmt.Errorf("di: configure logger: %w", err)
			}
			c.loggerProvider = provider
		case "", "none":
		}
	}
	c.logger = logging.RootLogger(c.loggerProvider)
	return nil
}

func (c *Container) configureServices() error {
	provider := c.loggerProvider

	c.resolver = settings.NewResolver(c.settingsRepo, settings.DefaultsFromConfig(c.Config))
	c.introspector = schema.NewIntrospector(c.schemas)
	c.tracker = progress.NewTracker(
		progress.WithRetention(c.Config.Progress.Retention),
		progress.WithLogger(logging.ProgressLogger(provider)),
	)

	dispatchLogger := logging.DispatchLogger(provider)
	processor := dispatch.NewProcessor(c.tracker, c.Config.Dispatch.SaveNodeKeywords, c.Config.Dispatch.SucceededStatus, dispatchLogger)
	dispatchOpts := []dispatch.Option{
		dispatch.WithTimeout(c.Config.Endpoint.Timeout),
		dispatch.WithLogger(dispatchLogger),
	}
	if c.httpClient != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithHTTPClient(c.httpClient))
	}
	c.dispatcher = dispatch.New(c.tracker, processor, dispatchOpts...)

	c.merger = merge.NewEngine(c.documents, c.introspector, merge.WithLogger(logging.MergeLogger(provider)))
	c.service = translation.NewService(translation.Dependencies{
		Settings:     c.resolver,
		Locales:      c.locales,
		Introspector: c.introspector,
		Extractor:    extractor.New(c.documents, c.introspector, extractor.WithLogger(logging.ExtractorLogger(provider))),
		Tracker:      c.tracker,
		Dispatcher:   c.dispatcher,
		Merger:       c.merger,
	},
		translation.WithFields(c.Config.Fields),
		translation.WithLogger(c.logger),
	)

	handlers, err := translationcmd.RegisterTranslationCommands(c.registry, c.service, provider)
	if err != nil {
		return fmt.Errorf("di: register translation commands: %w", err)
	}
	c.commands = handlers
	return nil
}

// watchSettings logs settings changes so operators can see when runtime
// overrides take effect.
func (c *Container) watchSettings() {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.settingsRepo.Subscribe(ctx)
	if err != nil {
		cancel()
		c.logger.Warn("settings.watch.unavailable", "error", err)
		return
	}
	c.stopWatch = cancel
	go func() {
		for evt := range events {
			masked := evt.Settings.Masked()
			c.logger.Info("settings.changed",
				"change", string(evt.Type),
				"endpoint_url", masked.EndpointURL,
				"callback_base_url", masked.CallbackBaseURL,
				"source_locale", masked.SourceLocale,
			)
		}
	}()
}

// Service returns the translation orchestration service.
func (c *Container) Service() translation.Service {
	return c.service
}

// Commands returns the go-command handlers for translate and callback.
func (c *Container) Commands() *translationcmd.HandlerSet {
	return c.commands
}

func (c *Container) Tracker() *progress.Tracker {
	return c.tracker
}

func (c *Container) SettingsRepository() settings.Repository {
	return c.settingsRepo
}

func (c *Container) SettingsResolver() *settings.Resolver {
	return c.resolver
}

func (c *Container) DocumentStore() interfaces.DocumentStore {
	return c.documents
}

func (c *Container) LocaleRegistry() interfaces.LocaleRegistry {
	return c.locales
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// HTTPAPI builds the HTTP adapter over the container services.
func (c *Container) HTTPAPI(opts ...cmshttp.Option) *cmshttp.API {
	base := []cmshttp.Option{
		cmshttp.WithBasePath(c.Config.HTTP.BasePath),
		cmshttp.WithCommandHandlers(c.commands),
		cmshttp.WithProgressReader(c.service),
		cmshttp.WithSettings(c.settingsRepo, c.resolver),
		cmshttp.WithCallbackSecret(c.Config.Callback.Secret),
		cmshttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	return cmshttp.NewAPI(append(base, opts...)...)
}

// WaitDispatches blocks until every background dispatch has returned.
func (c *Container) WaitDispatches() {
	c.dispatcher.Wait()
}

// Shutdown waits for in-flight dispatches, bounded by ctx, then releases the
// tracker, the settings watcher and any database the container opened.
func (c *Container) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.dispatcher.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("di: shutdown: %w", ctx.Err())
	}

	c.closeOnce.Do(func() {
		if c.stopWatch != nil {
			c.stopWatch()
		}
		c.tracker.Close()
		if dbErr := c.closeDB(); dbErr != nil {
			err = errors.Join(err, dbErr)
		}
	})
	return err
}

// memoryDefaults fills collaborators left unset after storage configuration
// with in-memory implementations seeded from the config.
func (c *Container) memoryDefaults() {
	if c.documents == nil {
		c.documents = memory.NewDocumentStore()
	}
	if c.schemas == nil {
		c.schemas = memory.NewSchemaRegistry(c.Config.ContentTypes...)
	}
	if c.locales == nil {
		c.locales = memory.NewLocaleRegistry(c.Config.Locales...)
	}
	if c.settingsRepo == nil {
		c.settingsRepo = settings.NewMemoryRepository()
	}
}
