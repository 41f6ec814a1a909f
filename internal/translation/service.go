// Package translation orchestrates extraction, dispatch, progress polling and
// callback merging.
package translation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-autotranslate/internal/dispatch"
	"github.com/goliatone/go-cms-autotranslate/internal/extractor"
	"github.com/goliatone/go-cms-autotranslate/internal/fields"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/merge"
	"github.com/goliatone/go-cms-autotranslate/internal/progress"
	"github.com/goliatone/go-cms-autotranslate/internal/schema"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Service is the translation entry point used by the HTTP adapter, commands
// and the CLI.
type Service interface {
	Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error)
	HandleCallback(ctx context.Context, req CallbackRequest) (CallbackResult, error)
	Progress(ctx context.Context, jobID string, since int) ProgressResult
}

type TranslateRequest struct {
	DocumentID    string   `json:"documentId"`
	ContentType   string   `json:"contentType"`
	TargetLocales []string `json:"targetLocales,omitempty"`
}

type TranslateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

// CallbackRequest carries one locale's translated fields.
type CallbackRequest struct {
	DocumentID  string          `json:"documentId"`
	ContentType string          `json:"contentType"`
	Locale      string          `json:"locale"`
	Fields      map[string]any  `json:"fields"`
	Metadata    *merge.Metadata `json:"metadata,omitempty"`
}

type CallbackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Locale  string `json:"locale,omitempty"`
}

type ProgressResult struct {
	JobID  string           `json:"jobId"`
	Events []progress.Event `json:"events"`
}

// SettingsResolver yields the effective runtime settings.
type SettingsResolver interface {
	Resolve(ctx context.Context) (settings.Settings, error)
}

// Dispatcher starts a background workflow request.
type Dispatcher interface {
	Start(ctx context.Context, req dispatch.Request)
}

// Dependencies groups the collaborators of the service.
type Dependencies struct {
	Settings     SettingsResolver
	Locales      interfaces.LocaleRegistry
	Introspector *schema.Introspector
	Extractor    *extractor.Extractor
	Tracker      *progress.Tracker
	Dispatcher   Dispatcher
	Merger       *merge.Engine
}

type ServiceOption func(*service)

// WithFields sets the configured translatable field list.
func WithFields(raw []string) ServiceOption {
	return func(s *service) {
		s.fieldList = append([]string(nil), raw...)
		s.specs = fields.ParseAll(raw)
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	deps      Dependencies
	fieldList []string
	specs     []fields.Spec
	locks     *keyedMutex
	logger    interfaces.Logger
}

func NewService(deps Dependencies, opts ...ServiceOption) Service {
	s := &service{
		deps:   deps,
		locks:  newKeyedMutex(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error) {
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	req.ContentType = strings.TrimSpace(req.ContentType)
	if req.DocumentID == "" {
		return TranslateResult{}, invalidRequest(ErrDocumentIDRequired)
	}
	if req.ContentType == "" {
		return TranslateResult{}, invalidRequest(ErrContentTypeRequired)
	}
	logger := logging.WithDocumentContext(s.logger, req.ContentType, req.DocumentID, "")

	current, err := s.deps.Settings.Resolve(ctx)
	if err != nil {
		return TranslateResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "resolve settings").WithTextCode(CodeSettingsFailure)
	}
	if strings.TrimSpace(current.EndpointURL) == "" {
		return TranslateResult{}, misconfigured(ErrEndpointNotConfigured)
	}
	if strings.TrimSpace(current.CallbackBaseURL) == "" {
		return TranslateResult{}, misconfigured(ErrCallbackNotConfigured)
	}

	targets, err := s.targetLocales(ctx, current.SourceLocale, req.TargetLocales)
	if err != nil {
		return TranslateResult{}, err
	}

	if _, err := s.deps.Introspector.Require(req.ContentType); err != nil {
		return TranslateResult{}, classify(err, "resolve content type")
	}

	extracted, err := s.deps.Extractor.Extract(ctx, extractor.Request{
		ContentType:  req.ContentType,
		DocumentID:   req.DocumentID,
		SourceLocale: current.SourceLocale,
		Fields:       s.fieldList,
	})
	if err != nil {
		return TranslateResult{}, classify(err, "extract source fields")
	}

	callbackURL, err := dispatch.CallbackURL(current.CallbackBaseURL, current.CallbackPath, req.ContentType)
	if err != nil {
		return TranslateResult{}, misconfigured(err)
	}

	jobID := s.deps.Tracker.StartJob(progress.JobSpec{
		DocumentID:    req.DocumentID,
		ContentType:   req.ContentType,
		TargetLocales: targets,
	})
	s.deps.Dispatcher.Start(ctx, dispatch.Request{
		JobID:         jobID,
		DocumentID:    req.DocumentID,
		ContentType:   req.ContentType,
		SourceLocale:  current.SourceLocale,
		TargetLocales: targets,
		Fields:        extracted,
		Target: dispatch.Target{
			EndpointURL: current.EndpointURL,
			APIKey:      current.APIKey,
			User:        current.UserID,
			CallbackURL: callbackURL,
		},
	})

	logging.WithJob(logger, jobID).Info("translation.dispatched", "locales", targets, "fields", len(extracted))
	return TranslateResult{
		Success: true,
		Message: fmt.Sprintf("Translation started for %d locale(s)", len(targets)),
		JobID:   jobID,
	}, nil
}

func (s *service) HandleCallback(ctx context.Context, req CallbackRequest) (CallbackResult, error) {
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	req.ContentType = strings.TrimSpace(req.ContentType)
	req.Locale = strings.TrimSpace(req.Locale)
	switch {
	case req.DocumentID == "":
		return CallbackResult{}, invalidRequest(ErrDocumentIDRequired)
	case req.ContentType == "":
		return CallbackResult{}, invalidRequest(ErrContentTypeRequired)
	case req.Locale == "":
		return CallbackResult{}, invalidRequest(ErrLocaleRequired)
	}

	current, err := s.deps.Settings.Resolve(ctx)
	if err != nil {
		return CallbackResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "resolve settings").WithTextCode(CodeSettingsFailure)
	}
	if strings.EqualFold(req.Locale, current.SourceLocale) {
		return CallbackResult{}, invalidRequest(ErrSourceLocaleNotSupported)
	}

	unlock := s.locks.Lock(req.ContentType + "|" + req.DocumentID + "|" + req.Locale)
	defer unlock()

	result, err := s.deps.Merger.Merge(ctx, merge.Request{
		ContentType:  req.ContentType,
		DocumentID:   req.DocumentID,
		Locale:       req.Locale,
		SourceLocale: current.SourceLocale,
		Fields:       req.Fields,
		Metadata:     req.Metadata,
		Specs:        s.specs,
	})
	if err != nil {
		logging.WithDocumentContext(s.logger, req.ContentType, req.DocumentID, req.Locale).
			Error("translation.callback.failed", "error", err)
		return CallbackResult{}, classify(err, "merge translation")
	}
	return CallbackResult{Success: result.Success, Message: result.Message, Locale: result.Locale}, nil
}

func (s *service) Progress(_ context.Context, jobID string, since int) ProgressResult {
	if since < 0 {
		since = 0
	}
	return ProgressResult{JobID: jobID, Events: s.deps.Tracker.Events(jobID, since)}
}

// targetLocales resolves the explicit list, or every registry locale, minus
// the source locale.
func (s *service) targetLocales(ctx context.Context, source string, requested []string) ([]string, error) {
	candidates := requested
	if len(candidates) == 0 {
		if s.deps.Locales == nil {
			return nil, misconfigured(ErrNoTargetLocales)
		}
		locales, err := s.deps.Locales.Locales(ctx)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "list locales").WithTextCode(CodeStoreFailure)
		}
		for _, locale := range locales {
			candidates = append(candidates, locale.Code)
		}
	}

	targets := make([]string, 0, len(candidates))
	for _, code := range candidates {
		code = strings.TrimSpace(code)
		if code == "" || strings.EqualFold(code, source) || slices.Contains(targets, code) {
			continue
		}
		targets = append(targets, code)
	}
	if len(targets) == 0 {
		return nil, misconfigured(ErrNoTargetLocales)
	}
	return targets, nil
}
