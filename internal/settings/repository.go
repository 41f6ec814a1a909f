package settings

import (
	"context"
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrSettingsNotFound indicates that no settings were stored yet; callers
// fall back to config-file defaults.
var ErrSettingsNotFound = errors.New("settings: not found")

// Settings are the runtime-editable parts of the engine configuration.
// Empty fields defer to the config-file defaults.
type Settings struct {
	EndpointURL     string `json:"endpointUrl"`
	APIKey          string `json:"apiKey"`
	CallbackBaseURL string `json:"callbackBaseUrl"`
	CallbackPath    string `json:"callbackPath"`
	UserID          string `json:"userId"`
	SourceLocale    string `json:"sourceLocale"`
}

// Validate checks the shape of explicitly set values.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.EndpointURL, validation.By(httpURLRule("settings.endpoint_url_invalid", "endpointUrl must be an absolute http(s) url"))),
		validation.Field(&s.CallbackBaseURL, validation.By(httpURLRule("settings.callback_base_url_invalid", "callbackBaseUrl must be an absolute http(s) url"))),
		validation.Field(&s.CallbackPath, validation.By(func(value any) error {
			path, _ := value.(string)
			if path = strings.TrimSpace(path); path != "" && !strings.HasPrefix(path, "/") {
				return validation.NewError("settings.callback_path_invalid", "callbackPath must start with /")
			}
			return nil
		})),
	)
}

// Masked returns a copy safe to expose over HTTP.
func (s Settings) Masked() Settings {
	if s.APIKey == "" {
		return s
	}
	masked := s
	if len(s.APIKey) <= 4 {
		masked.APIKey = "****"
		return masked
	}
	masked.APIKey = "****" + s.APIKey[len(s.APIKey)-4:]
	return masked
}

// Repository persists settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

func httpURLRule(code, message string) validation.RuleFunc {
	return func(value any) error {
		raw, _ := value.(string)
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
