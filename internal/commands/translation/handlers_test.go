package translationcmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-autotranslate/internal/commands/fixtures"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
)

type serviceStub struct {
	translateReq translation.TranslateRequest
	callbackReq  translation.CallbackRequest
	err          error
}

func (s *serviceStub) Translate(_ context.Context, req translation.TranslateRequest) (translation.TranslateResult, error) {
	s.translateReq = req
	if s.err != nil {
		return translation.TranslateResult{}, s.err
	}
	return translation.TranslateResult{Success: true, Message: "started", JobID: "job-1"}, nil
}

func (s *serviceStub) HandleCallback(_ context.Context, req translation.CallbackRequest) (translation.CallbackResult, error) {
	s.callbackReq = req
	if s.err != nil {
		return translation.CallbackResult{}, s.err
	}
	return translation.CallbackResult{Success: true, Message: "saved", Locale: req.Locale}, nil
}

func (s *serviceStub) Progress(context.Context, string, int) translation.ProgressResult {
	return translation.ProgressResult{}
}

func TestTranslateDocumentHandlerFillsResult(t *testing.T) {
	svc := &serviceStub{}
	handler := NewTranslateDocumentHandler(svc, nil)

	var result translation.TranslateResult
	err := handler.Execute(context.Background(), TranslateDocumentCommand{
		DocumentID:    "doc-1",
		ContentType:   "api::article.article",
		TargetLocales: []string{"de"},
		Result:        &result,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.JobID != "job-1" || svc.translateReq.DocumentID != "doc-1" || len(svc.translateReq.TargetLocales) != 1 {
		t.Fatalf("unexpected result %+v / request %+v", result, svc.translateReq)
	}
}

func TestTranslateDocumentCommandValidation(t *testing.T) {
	svc := &serviceStub{}
	handler := NewTranslateDocumentHandler(svc, nil)

	err := handler.Execute(context.Background(), TranslateDocumentCommand{ContentType: "api::article.article", TargetLocales: []string{" "}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if svc.translateReq.ContentType != "" {
		t.Fatal("expected service not to be called")
	}
}

func TestApplyTranslationHandler(t *testing.T) {
	svc := &serviceStub{}
	handler := NewApplyTranslationHandler(svc, nil)

	var result translation.CallbackResult
	err := handler.Execute(context.Background(), ApplyTranslationCommand{
		DocumentID:  "doc-1",
		ContentType: "api::article.article",
		Locale:      "fr",
		Fields:      map[string]any{"title": "Bonjour"},
		Result:      &result,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success || result.Locale != "fr" || svc.callbackReq.Fields["title"] != "Bonjour" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestApplyTranslationCommandValidation(t *testing.T) {
	err := ApplyTranslationCommand{DocumentID: "doc-1"}.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApplyTranslationHandlerKeepsServiceCategory(t *testing.T) {
	svc := &serviceStub{err: goerrors.New("missing", goerrors.CategoryNotFound)}
	handler := NewApplyTranslationHandler(svc, nil)

	err := handler.Execute(context.Background(), ApplyTranslationCommand{DocumentID: "doc-1", ContentType: "x", Locale: "fr"})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegisterTranslationCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	set, err := RegisterTranslationCommands(reg, &serviceStub{}, nil)
	if err != nil {
		t.Fatalf("RegisterTranslationCommands() error = %v", err)
	}
	if set.Translate == nil || set.Apply == nil || len(reg.Handlers) != 2 {
		t.Fatalf("unexpected registration %+v (%d)", set, len(reg.Handlers))
	}

	failing := fixtures.NewRecordingRegistry()
	failing.Err = errors.New("registry closed")
	if _, err := RegisterTranslationCommands(failing, &serviceStub{}, nil); !errors.Is(err, failing.Err) {
		t.Fatalf("expected registry error, got %v", err)
	}
	if _, err := RegisterTranslationCommands(nil, nil, nil); err == nil {
		t.Fatalf("expected nil service error, got %v", err)
	}
}
