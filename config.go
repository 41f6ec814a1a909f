package autotranslate

import (
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

var (
	ErrSourceLocaleRequired     = runtimeconfig.ErrSourceLocaleRequired
	ErrEndpointURLInvalid       = runtimeconfig.ErrEndpointURLInvalid
	ErrCallbackBaseURLInvalid   = runtimeconfig.ErrCallbackBaseURLInvalid
	ErrCallbackPathInvalid      = runtimeconfig.ErrCallbackPathInvalid
	ErrProgressRetentionInvalid = runtimeconfig.ErrProgressRetentionInvalid
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrContentTypeUIDRequired   = runtimeconfig.ErrContentTypeUIDRequired

	ErrSettingsNotFound      = settings.ErrSettingsNotFound
	ErrDocumentNotFound      = interfaces.ErrDocumentNotFound
	ErrEndpointNotConfigured = translation.ErrEndpointNotConfigured
	ErrCallbackNotConfigured = translation.ErrCallbackNotConfigured
)

type (
	Config         = runtimeconfig.Config
	EndpointConfig = runtimeconfig.EndpointConfig
	CallbackConfig = runtimeconfig.CallbackConfig
	DispatchConfig = runtimeconfig.DispatchConfig
	ProgressConfig = runtimeconfig.ProgressConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
