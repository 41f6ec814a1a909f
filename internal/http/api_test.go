package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-cms-autotranslate/internal/adapters/memory"
	translationcmd "github.com/goliatone/go-cms-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-cms-autotranslate/internal/dispatch"
	"github.com/goliatone/go-cms-autotranslate/internal/extractor"
	"github.com/goliatone/go-cms-autotranslate/internal/merge"
	"github.com/goliatone/go-cms-autotranslate/internal/progress"
	"github.com/goliatone/go-cms-autotranslate/internal/schema"
	"github.com/goliatone/go-cms-autotranslate/internal/settings"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

const articleUID = "api::article.article"

type stubDispatcher struct {
	mu       sync.Mutex
	requests []dispatch.Request
}

func (d *stubDispatcher) Start(_ context.Context, req dispatch.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
}

type apiFixture struct {
	mux        *http.ServeMux
	store      *memory.DocumentStore
	settings   *settings.MemoryRepository
	dispatcher *stubDispatcher
}

func setupAPI(t *testing.T, defaults settings.Settings, opts ...Option) apiFixture {
	t.Helper()

	store := memory.NewDocumentStore()
	registry := memory.NewSchemaRegistry(interfaces.ContentTypeSchema{
		UID:       articleUID,
		Localized: true,
		Attributes: map[string]interfaces.Attribute{
			"title": {Type: "string"},
			"body":  {Type: "text"},
		},
	})
	introspector := schema.NewIntrospector(registry)
	tracker := progress.NewTracker()
	t.Cleanup(tracker.Close)
	dispatcher := &stubDispatcher{}
	repo := settings.NewMemoryRepository()
	resolver := settings.NewResolver(repo, defaults)

	svc := translation.NewService(translation.Dependencies{
		Settings:     resolver,
		Locales:      memory.NewLocaleRegistry(interfaces.Locale{Code: "en"}, interfaces.Locale{Code: "de"}),
		Introspector: introspector,
		Extractor:    extractor.New(store, introspector),
		Tracker:      tracker,
		Dispatcher:   dispatcher,
		Merger:       merge.NewEngine(store, introspector),
	}, translation.WithFields([]string{"title", "body"}))

	handlers, err := translationcmd.RegisterTranslationCommands(nil, svc, nil)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	apiOpts := []Option{
		WithCommandHandlers(handlers),
		WithProgressReader(svc),
		WithSettings(repo, resolver),
	}
	apiOpts = append(apiOpts, opts...)

	mux := http.NewServeMux()
	if err := NewAPI(apiOpts...).Register(mux); err != nil {
		t.Fatalf("register api: %v", err)
	}
	return apiFixture{mux: mux, store: store, settings: repo, dispatcher: dispatcher}
}

func configuredDefaults() settings.Settings {
	return settings.Settings{
		EndpointURL:     "https://workflow.example.com/v1/workflows/run",
		APIKey:          "workflow-secret-1234",
		CallbackBaseURL: "https://cms.example.com",
		CallbackPath:    "/api/autotranslate/callback",
		UserID:          "bot",
		SourceLocale:    "en",
	}
}

func TestAPI_TranslateStartsJobAndReportsProgress(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())
	fx.store.Put(articleUID, "doc-1", "en", map[string]any{"title": "Hello", "body": "World"})

	resp := doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/translate", map[string]any{
		"documentId":  "doc-1",
		"contentType": articleUID,
	}, http.StatusOK)

	var result translation.TranslateResult
	decodeJSONBody(t, resp, &result)
	if !result.Success || result.JobID == "" {
		t.Fatalf("unexpected translate result %+v", result)
	}
	if len(fx.dispatcher.requests) != 1 || fx.dispatcher.requests[0].TargetLocales[0] != "de" {
		t.Fatalf("unexpected dispatches %+v", fx.dispatcher.requests)
	}

	progressResp := doJSONRequest(t, fx.mux, http.MethodGet, "/api/autotranslate/progress/"+result.JobID+"?since=0", nil, http.StatusOK)
	var events translation.ProgressResult
	decodeJSONBody(t, progressResp, &events)
	if events.JobID != result.JobID || len(events.Events) != 1 || events.Events[0].Kind != progress.EventStarted {
		t.Fatalf("unexpected progress %+v", events)
	}

	laterResp := doJSONRequest(t, fx.mux, http.MethodGet, "/api/autotranslate/progress/"+result.JobID+"?since=1", nil, http.StatusOK)
	var later translation.ProgressResult
	decodeJSONBody(t, laterResp, &later)
	if len(later.Events) != 0 {
		t.Fatalf("expected no events after index 1, got %+v", later.Events)
	}
}

func TestAPI_TranslateRejectsUnknownProperties(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())

	resp := doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/translate", map[string]any{
		"documentId":  "doc-1",
		"contentType": articleUID,
		"priority":    "high",
	}, http.StatusBadRequest)

	var payload errorResponse
	decodeJSONBody(t, resp, &payload)
	if payload.Error != "validation_failed" || len(payload.Issues) == 0 {
		t.Fatalf("expected schema issues, got %+v", payload)
	}
}

func TestAPI_TranslateWithoutEndpointIsMisconfigured(t *testing.T) {
	defaults := configuredDefaults()
	defaults.EndpointURL = ""
	fx := setupAPI(t, defaults)
	fx.store.Put(articleUID, "doc-1", "en", map[string]any{"title": "Hello"})

	resp := doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/translate", map[string]any{
		"documentId":  "doc-1",
		"contentType": articleUID,
	}, http.StatusBadRequest)

	var payload errorResponse
	decodeJSONBody(t, resp, &payload)
	if payload.Error != "misconfigured" || payload.Code != translation.CodeMisconfigured {
		t.Fatalf("unexpected error payload %+v", payload)
	}
	if len(fx.dispatcher.requests) != 0 {
		t.Fatalf("expected no dispatch")
	}
}

func TestAPI_TranslateUnknownDocumentIsNotFound(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())

	doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/translate", map[string]any{
		"documentId":  "missing",
		"contentType": articleUID,
	}, http.StatusNotFound)
}

func TestAPI_CallbackMergesLocale(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())
	fx.store.Put(articleUID, "doc-1", "en", map[string]any{"title": "Hello", "body": "World"})

	resp := doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/callback?contentType="+articleUID, map[string]any{
		"documentId": "doc-1",
		"locale":     "de",
		"fields":     map[string]any{"title": "Hallo", "body": "Welt"},
	}, http.StatusOK)

	var result callbackResponse
	decodeJSONBody(t, resp, &result)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	doc, err := fx.store.FindOne(context.Background(), interfaces.DocumentQuery{ContentType: articleUID, DocumentID: "doc-1", Locale: "de"})
	if err != nil {
		t.Fatalf("find translated document: %v", err)
	}
	if doc["title"] != "Hallo" || doc["body"] != "Welt" {
		t.Fatalf("unexpected translated document %v", doc)
	}
	if status := fx.store.Status(articleUID, "doc-1", "de"); status != interfaces.StatusDraft {
		t.Fatalf("expected draft status, got %q", status)
	}
}

func TestAPI_CallbackFailedMetadataSkipsWrite(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())
	fx.store.Put(articleUID, "doc-1", "en", map[string]any{"title": "Hello"})

	resp := doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/callback?contentType="+articleUID, map[string]any{
		"documentId": "doc-1",
		"locale":     "de",
		"fields":     map[string]any{"title": "Hallo"},
		"metadata":   map[string]any{"success": "false", "error": "model refused"},
	}, http.StatusOK)

	var result callbackResponse
	decodeJSONBody(t, resp, &result)
	if result.Success {
		t.Fatalf("expected failure result, got %+v", result)
	}
	if _, err := fx.store.FindOne(context.Background(), interfaces.DocumentQuery{ContentType: articleUID, DocumentID: "doc-1", Locale: "de"}); err == nil {
		t.Fatalf("expected no German document to be written")
	}
}

func TestAPI_CallbackRequiresLocale(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())

	resp := doJSONRequest(t, fx.mux, http.MethodPost, "/api/autotranslate/callback?contentType="+articleUID, map[string]any{
		"documentId": "doc-1",
		"fields":     map[string]any{"title": "Hallo"},
	}, http.StatusBadRequest)

	var payload errorResponse
	decodeJSONBody(t, resp, &payload)
	if payload.Error != "validation_failed" {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func TestAPI_CallbackRejectsWrongBearerToken(t *testing.T) {
	fx := setupAPI(t, configuredDefaults(), WithCallbackSecret("s3cret"))
	fx.store.Put(articleUID, "doc-1", "en", map[string]any{"title": "Hello"})
	body := map[string]any{
		"documentId": "doc-1",
		"locale":     "de",
		"fields":     map[string]any{"title": "Hallo"},
	}
	path := "/api/autotranslate/callback?contentType=" + articleUID

	doJSONRequest(t, fx.mux, http.MethodPost, path, body, http.StatusUnauthorized)

	rec := doAuthorizedRequest(t, fx.mux, path, "Bearer wrong", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", rec.Code)
	}

	rec = doAuthorizedRequest(t, fx.mux, path, "Bearer s3cret", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestAPI_SettingsRoundTripMasksKey(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())

	getResp := doJSONRequest(t, fx.mux, http.MethodGet, "/api/autotranslate/settings", nil, http.StatusOK)
	var initial settingsResponse
	decodeJSONBody(t, getResp, &initial)
	if initial.Effective.APIKey != "****1234" || initial.Stored.APIKey != "" {
		t.Fatalf("unexpected initial settings %+v", initial)
	}

	putResp := doJSONRequest(t, fx.mux, http.MethodPut, "/api/autotranslate/settings", map[string]any{
		"apiKey":       "override-key-9876",
		"sourceLocale": "de",
	}, http.StatusOK)
	var updated settingsResponse
	decodeJSONBody(t, putResp, &updated)
	if updated.Stored.APIKey != "****9876" || updated.Effective.SourceLocale != "de" {
		t.Fatalf("unexpected updated settings %+v", updated)
	}
	if updated.Effective.EndpointURL != configuredDefaults().EndpointURL {
		t.Fatalf("expected endpoint default to survive, got %q", updated.Effective.EndpointURL)
	}

	doJSONRequest(t, fx.mux, http.MethodPut, "/api/autotranslate/settings", map[string]any{
		"apiKey":       "****9876",
		"sourceLocale": "de",
	}, http.StatusOK)
	stored, err := fx.settings.Get(context.Background())
	if err != nil {
		t.Fatalf("get stored settings: %v", err)
	}
	if stored.APIKey != "override-key-9876" {
		t.Fatalf("expected masked echo to keep stored key, got %q", stored.APIKey)
	}
}

func TestAPI_SettingsRejectsInvalidURL(t *testing.T) {
	fx := setupAPI(t, configuredDefaults())

	doJSONRequest(t, fx.mux, http.MethodPut, "/api/autotranslate/settings", map[string]any{
		"endpointUrl": "ftp://workflow.example.com",
	}, http.StatusBadRequest)
}

func TestAPI_RegisterRequiresHandlers(t *testing.T) {
	if err := NewAPI().Register(http.NewServeMux()); err != ErrTranslateHandlerRequired {
		t.Fatalf("expected ErrTranslateHandlerRequired, got %v", err)
	}
}

func TestJoinPath(t *testing.T) {
	cases := map[string][2]string{
		"/api/autotranslate/translate": {"/api/autotranslate/", "/translate"},
		"/translate":                   {"", "translate"},
		"/":                            {" ", ""},
		"/base":                        {"base", ""},
	}
	for want, in := range cases {
		if got := joinPath(in[0], in[1]); got != want {
			t.Fatalf("joinPath(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func doJSONRequest(t *testing.T, mux *http.ServeMux, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("expected status %d got %d (%s)", wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func doAuthorizedRequest(t *testing.T, mux *http.ServeMux, path, authorization string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
