package autotranslate_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	autotranslate "github.com/goliatone/go-cms-autotranslate"
	"github.com/goliatone/go-cms-autotranslate/internal/adapters/memory"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

const articleUID = "api::article.article"

func moduleConfig(endpoint string) autotranslate.Config {
	cfg := autotranslate.DefaultConfig()
	cfg.Logging.Provider = "none"
	cfg.Fields = []string{"title"}
	cfg.Endpoint.URL = endpoint
	cfg.Callback.BaseURL = "https://cms.example.com"
	cfg.Callback.Secret = "callback-secret"
	cfg.Locales = []interfaces.Locale{{Code: "en"}, {Code: "fr"}}
	cfg.ContentTypes = []interfaces.ContentTypeSchema{{
		UID:        articleUID,
		Localized:  true,
		Attributes: map[string]interfaces.Attribute{"title": {Type: "string"}},
	}}
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := autotranslate.DefaultConfig()
	cfg.Endpoint.URL = "ftp://workflow"
	if _, err := autotranslate.New(cfg); !errors.Is(err, autotranslate.ErrEndpointURLInvalid) {
		t.Fatalf("expected ErrEndpointURLInvalid, got %v", err)
	}
}

func TestModuleTranslateAndCallbackOverHTTP(t *testing.T) {
	workflow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"event\":\"node_finished\",\"data\":{\"title\":\"callback\"}}\n\n")
		fmt.Fprint(w, "data: {\"event\":\"workflow_finished\",\"data\":{\"status\":\"succeeded\"}}\n\n")
	}))
	defer workflow.Close()

	store := memory.NewDocumentStore()
	store.Put(articleUID, "doc-1", "en", map[string]any{"title": "Hello"})

	module, err := autotranslate.New(moduleConfig(workflow.URL),
		autotranslate.WithDocumentStore(store),
		autotranslate.WithHTTPClient(workflow.Client()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer module.Shutdown(context.Background())

	mux := http.NewServeMux()
	if err := module.Register(mux); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := module.Translate(context.Background(), autotranslate.TranslateRequest{
		DocumentID:  "doc-1",
		ContentType: articleUID,
	})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	module.Wait()

	events := module.Progress(context.Background(), result.JobID, 0).Events
	if len(events) == 0 || events[len(events)-1].Kind != "completed" {
		t.Fatalf("expected completed as last event, got %+v", events)
	}

	body := []byte(`{"documentId":"doc-1","locale":"fr","fields":{"title":"Bonjour"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/autotranslate/callback?contentType="+articleUID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer callback-secret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback status %d body %s", rec.Code, rec.Body.String())
	}

	doc, err := store.FindOne(context.Background(), interfaces.DocumentQuery{
		ContentType: articleUID,
		DocumentID:  "doc-1",
		Locale:      "fr",
	})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if doc["title"] != "Bonjour" {
		t.Fatalf("expected translated title, got %v", doc["title"])
	}
}

func TestEffectiveSettingsUsesConfigDefaults(t *testing.T) {
	module, err := autotranslate.New(moduleConfig("https://workflow.example.com/run"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer module.Shutdown(context.Background())

	current, err := module.EffectiveSettings(context.Background())
	if err != nil {
		t.Fatalf("EffectiveSettings() error = %v", err)
	}
	if current.EndpointURL != "https://workflow.example.com/run" || current.SourceLocale != "en" {
		t.Fatalf("unexpected settings %+v", current)
	}
}
