package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
)

// Resolver overlays stored settings on the config-file defaults.
type Resolver struct {
	repo     Repository
	defaults Settings
}

func NewResolver(repo Repository, defaults Settings) *Resolver {
	return &Resolver{repo: repo, defaults: defaults}
}

// DefaultsFromConfig extracts the settings-store view of cfg.
func DefaultsFromConfig(cfg runtimeconfig.Config) Settings {
	return Settings{
		EndpointURL:     strings.TrimSpace(cfg.Endpoint.URL),
		APIKey:          strings.TrimSpace(cfg.Endpoint.APIKey),
		CallbackBaseURL: strings.TrimSpace(cfg.Callback.BaseURL),
		CallbackPath:    strings.TrimSpace(cfg.Callback.Path),
		UserID:          strings.TrimSpace(cfg.Endpoint.User),
		SourceLocale:    strings.TrimSpace(cfg.SourceLocale),
	}
}

// Resolve returns the effective settings: each non-blank stored value wins
// over its default.
func (r *Resolver) Resolve(ctx context.Context) (Settings, error) {
	if r == nil {
		return Settings{}, nil
	}
	if r.repo == nil {
		return r.defaults, nil
	}
	stored, err := r.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			return r.defaults, nil
		}
		return Settings{}, err
	}
	return Merge(r.defaults, stored), nil
}

// Defaults returns the config-file defaults.
func (r *Resolver) Defaults() Settings {
	if r == nil {
		return Settings{}
	}
	return r.defaults
}

// Merge overlays the non-blank fields of override on base.
func Merge(base, override Settings) Settings {
	out := base
	pick(&out.EndpointURL, override.EndpointURL)
	pick(&out.APIKey, override.APIKey)
	pick(&out.CallbackBaseURL, override.CallbackBaseURL)
	pick(&out.CallbackPath, override.CallbackPath)
	pick(&out.UserID, override.UserID)
	pick(&out.SourceLocale, override.SourceLocale)
	return out
}

func pick(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*target = trimmed
	}
}
