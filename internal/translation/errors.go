package translation

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-autotranslate/internal/extractor"
	"github.com/goliatone/go-cms-autotranslate/internal/merge"
	"github.com/goliatone/go-cms-autotranslate/internal/schema"
)

// CategoryMisconfigured tags errors caused by missing or invalid settings.
const CategoryMisconfigured = goerrors.Category("misconfigured")

const (
	CodeMisconfigured   = "AUTOTRANSLATE_MISCONFIGURED"
	CodeNotFound        = "AUTOTRANSLATE_NOT_FOUND"
	CodeInvalidRequest  = "AUTOTRANSLATE_INVALID_REQUEST"
	CodeSettingsFailure = "AUTOTRANSLATE_SETTINGS_UNAVAILABLE"
	CodeStoreFailure    = "AUTOTRANSLATE_STORE_FAILURE"
)

var (
	ErrEndpointNotConfigured    = errors.New("translation: workflow endpoint is not configured")
	ErrCallbackNotConfigured    = errors.New("translation: callback base url is not configured")
	ErrNoTargetLocales          = errors.New("translation: no target locales to translate into")
	ErrDocumentIDRequired       = errors.New("translation: document id is required")
	ErrContentTypeRequired      = errors.New("translation: content type is required")
	ErrLocaleRequired           = errors.New("translation: locale is required")
	ErrSourceLocaleNotSupported = errors.New("translation: callback locale matches the source locale")
)

func misconfigured(err error) error {
	return goerrors.Wrap(err, CategoryMisconfigured, err.Error()).WithTextCode(CodeMisconfigured)
}

func invalidRequest(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).WithTextCode(CodeInvalidRequest)
}

// classify maps package sentinels onto go-errors categories.
func classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, extractor.ErrNoTranslatableFields):
		return misconfigured(err)
	case errors.Is(err, extractor.ErrSourceDocumentNotFound),
		errors.Is(err, merge.ErrSourceDocumentNotFound),
		errors.Is(err, schema.ErrContentTypeNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).WithTextCode(CodeNotFound)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, message).WithTextCode(CodeStoreFailure)
	}
}
