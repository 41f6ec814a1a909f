package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

var ErrSourceLocaleRequired = errors.New("autotranslate config: source locale is required")
var ErrEndpointURLInvalid = errors.New("autotranslate config: endpoint url must be an absolute http(s) url")
var ErrCallbackBaseURLInvalid = errors.New("autotranslate config: callback base url must be an absolute http(s) url")
var ErrCallbackPathInvalid = errors.New("autotranslate config: callback path must start with /")
var ErrProgressRetentionInvalid = errors.New("autotranslate config: progress retention must be zero or positive")
var ErrStorageProviderUnknown = errors.New("autotranslate config: storage provider is invalid")
var ErrStorageDriverUnknown = errors.New("autotranslate config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("autotranslate config: storage dsn is required for the bun provider")
var ErrLoggingProviderUnknown = errors.New("autotranslate config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("autotranslate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("autotranslate config: logging format is invalid")
var ErrContentTypeUIDRequired = errors.New("autotranslate config: content type uid is required")

// Config aggregates the settings of the translation engine. Values here are
// defaults: the settings store can override the endpoint, callback, user and
// source locale at runtime.
type Config struct {
	SourceLocale string                         `yaml:"source_locale"`
	Fields       []string                       `yaml:"fields"`
	Endpoint     EndpointConfig                 `yaml:"endpoint"`
	Callback     CallbackConfig                 `yaml:"callback"`
	Dispatch     DispatchConfig                 `yaml:"dispatch"`
	Progress     ProgressConfig                 `yaml:"progress"`
	HTTP         HTTPConfig                     `yaml:"http"`
	Storage      StorageConfig                  `yaml:"storage"`
	Cache        CacheConfig                    `yaml:"cache"`
	Logging      LoggingConfig                  `yaml:"logging"`
	Locales      []interfaces.Locale            `yaml:"locales"`
	ContentTypes []interfaces.ContentTypeSchema `yaml:"content_types"`
}

// EndpointConfig points at the external workflow engine.
type EndpointConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	User   string `yaml:"user"`
	// Timeout bounds a whole streamed dispatch. Zero leaves it unbounded.
	Timeout time.Duration `yaml:"timeout"`
}

// CallbackConfig controls the URL handed to the workflow and the bearer
// secret expected back on the callback route.
type CallbackConfig struct {
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
	Secret  string `yaml:"secret"`
}

// DispatchConfig tunes how workflow stream events are interpreted.
type DispatchConfig struct {
	SaveNodeKeywords []string `yaml:"save_node_keywords"`
	SucceededStatus  string   `yaml:"succeeded_status"`
}

type ProgressConfig struct {
	Retention time.Duration `yaml:"retention"`
}

type HTTPConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
}

// StorageConfig selects the document, locale and settings backends.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig toggles the repository cache wrapped around the bun locale registry.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults suitable for a local, in-memory setup.
func DefaultConfig() Config {
	return Config{
		SourceLocale: "en",
		Endpoint: EndpointConfig{
			User: "autotranslate",
		},
		Callback: CallbackConfig{
			Path: "/api/autotranslate/callback",
		},
		Dispatch: DispatchConfig{
			SaveNodeKeywords: []string{"callback", "save"},
			SucceededStatus:  "succeeded",
		},
		Progress: ProgressConfig{
			Retention: 5 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			BasePath: "/api/autotranslate",
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite3",
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// LoadFile reads a YAML config file on top of DefaultConfig.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("autotranslate config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("autotranslate config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.SourceLocale) == "" {
		return ErrSourceLocaleRequired
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint.URL); endpoint != "" && !isHTTPURL(endpoint) {
		return fmt.Errorf("%w: %s", ErrEndpointURLInvalid, endpoint)
	}
	if base := strings.TrimSpace(cfg.Callback.BaseURL); base != "" && !isHTTPURL(base) {
		return fmt.Errorf("%w: %s", ErrCallbackBaseURLInvalid, base)
	}
	if path := strings.TrimSpace(cfg.Callback.Path); path != "" && !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %s", ErrCallbackPathInvalid, path)
	}
	if cfg.Progress.Retention < 0 {
		return ErrProgressRetentionInvalid
	}

	switch normalize(cfg.Storage.Provider) {
	case "", "memory":
	case "bun":
		switch normalize(cfg.Storage.Driver) {
		case "", "sqlite3", "sqlite", "postgres", "pg":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	for i, ct := range cfg.ContentTypes {
		if strings.TrimSpace(ct.UID) == "" {
			return fmt.Errorf("%w: content_types[%d]", ErrContentTypeUIDRequired, i)
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "none", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
