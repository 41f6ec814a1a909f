package translationcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-cms-autotranslate/internal/merge"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
)

const (
	translateDocumentMessageType = "autotranslate.document.translate"
	applyTranslationMessageType  = "autotranslate.document.apply"
)

// TranslateDocumentCommand starts a translation job for a document. Result
// is filled by the handler on success.
type TranslateDocumentCommand struct {
	DocumentID    string   `json:"documentId"`
	ContentType   string   `json:"contentType"`
	TargetLocales []string `json:"targetLocales,omitempty"`

	Result *translation.TranslateResult `json:"-"`
}

func (TranslateDocumentCommand) Type() string { return translateDocumentMessageType }

func (m TranslateDocumentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DocumentID, validation.By(required("autotranslate.translate.document_id_required", "documentId is required"))),
		validation.Field(&m.ContentType, validation.By(required("autotranslate.translate.content_type_required", "contentType is required"))),
		validation.Field(&m.TargetLocales, validation.Each(validation.By(required("autotranslate.translate.locale_blank", "target locales cannot be blank")))),
	)
}

// ApplyTranslationCommand merges one locale returned by the workflow.
type ApplyTranslationCommand struct {
	DocumentID  string          `json:"documentId"`
	ContentType string          `json:"contentType"`
	Locale      string          `json:"locale"`
	Fields      map[string]any  `json:"fields"`
	Metadata    *merge.Metadata `json:"metadata,omitempty"`

	Result *translation.CallbackResult `json:"-"`
}

func (ApplyTranslationCommand) Type() string { return applyTranslationMessageType }

func (m ApplyTranslationCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.DocumentID) == "" {
		errs["documentId"] = validation.NewError("autotranslate.apply.document_id_required", "documentId is required")
	}
	if strings.TrimSpace(m.ContentType) == "" {
		errs["contentType"] = validation.NewError("autotranslate.apply.content_type_required", "contentType is required")
	}
	if strings.TrimSpace(m.Locale) == "" {
		errs["locale"] = validation.NewError("autotranslate.apply.locale_required", "locale is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func required(code, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
