package http

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-autotranslate/internal/settings"
)

type settingsResponse struct {
	Stored    settings.Settings `json:"stored"`
	Effective settings.Settings `json:"effective"`
}

func (api *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	stored, err := api.storedSettings(r)
	if err != nil {
		writeError(w, err)
		return
	}
	effective, err := api.settingsView.Resolve(r.Context())
	if err != nil {
		writeError(w, goerrors.Wrap(err, goerrors.CategoryInternal, "resolve settings"))
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Stored: stored.Masked(), Effective: effective.Masked()})
}

func (api *API) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var incoming settings.Settings
	if err := decodeJSON(raw, &incoming); err != nil {
		writeError(w, badRequest(err))
		return
	}
	if err := incoming.Validate(); err != nil {
		writeError(w, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid settings").WithTextCode("AUTOTRANSLATE_SETTINGS_INVALID"))
		return
	}

	current, err := api.storedSettings(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// A masked key echoed back from a GET keeps the stored key.
	if strings.HasPrefix(incoming.APIKey, "****") && incoming.APIKey == current.Masked().APIKey {
		incoming.APIKey = current.APIKey
	}

	saved, err := api.settingsRepo.Upsert(r.Context(), incoming)
	if err != nil {
		writeError(w, goerrors.Wrap(err, goerrors.CategoryInternal, "save settings"))
		return
	}
	api.logger.Info("http.settings.updated")

	effective, err := api.settingsView.Resolve(r.Context())
	if err != nil {
		writeError(w, goerrors.Wrap(err, goerrors.CategoryInternal, "resolve settings"))
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Stored: saved.Masked(), Effective: effective.Masked()})
}

// storedSettings returns the persisted settings, or the zero value when none
// were saved yet.
func (api *API) storedSettings(r *http.Request) (settings.Settings, error) {
	stored, err := api.settingsRepo.Get(r.Context())
	if err == nil {
		return stored, nil
	}
	if errors.Is(err, settings.ErrSettingsNotFound) {
		return settings.Settings{}, nil
	}
	return settings.Settings{}, goerrors.Wrap(err, goerrors.CategoryInternal, "load settings")
}
