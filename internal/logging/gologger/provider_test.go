package gologger

import (
	"context"
	"slices"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
)

func TestNewProviderCreatesLogger(t *testing.T) {
	p, err := NewProvider(runtimeconfig.LoggingConfig{
		Level:  "debug",
		Format: "console",
	})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	logger := logging.DispatchLogger(p)
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	logger.Debug("dispatch.adapter.ready")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(runtimeconfig.LoggingConfig{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewProviderQualifiesFocusModules(t *testing.T) {
	p, err := NewProvider(runtimeconfig.LoggingConfig{
		Focus: []string{" merge ", "autotranslate.dispatch", "Merge", "", logging.ModuleHTTP},
	})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	want := []string{logging.ModuleMerge, logging.ModuleDispatch, logging.ModuleHTTP}
	if !slices.Equal(p.Focus(), want) {
		t.Fatalf("expected focus %v, got %v", want, p.Focus())
	}
}

func TestNewProviderAllDisablesFocus(t *testing.T) {
	for _, entry := range []string{"*", "ALL"} {
		p, err := NewProvider(runtimeconfig.LoggingConfig{Focus: []string{"merge", entry}})
		if err != nil {
			t.Fatalf("NewProvider(%q) returned error: %v", entry, err)
		}
		if focus := p.Focus(); len(focus) != 0 {
			t.Fatalf("focus entry %q: expected no focus, got %v", entry, focus)
		}
	}
}

func TestGetLoggerFallsBackToRootModule(t *testing.T) {
	p, err := NewProvider(runtimeconfig.LoggingConfig{Format: "console"})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if _, ok := p.GetLogger("  ").(*adapter); !ok {
		t.Fatal("expected blank module to resolve to the root adapter")
	}

	var nilProvider *Provider
	if nilProvider.GetLogger("merge") == nil {
		t.Fatal("expected no-op logger from nil provider")
	}
}

func TestAdapterDelegatesToUnderlyingLogger(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("trace", "key", "value")
	adapted.Debug("debug")
	adapted.Info("info")
	adapted.Warn("warn")
	adapted.Error("error")
	adapted.Fatal("fatal")

	wantCalls := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(wantCalls) {
		t.Fatalf("expected %d calls, got %d", len(wantCalls), len(stub.calls))
	}
	for i, want := range wantCalls {
		if stub.calls[i] != want {
			t.Fatalf("call %d: expected %q, got %q", i, want, stub.calls[i])
		}
	}
}

func TestAdapterClonesFields(t *testing.T) {
	stub := &stubLogger{}
	fields := map[string]any{"job_id": "abc"}

	logging.WithFields(wrap(stub), fields)
	fields["job_id"] = "mutated"

	if len(stub.fields) != 1 || stub.fields[0]["job_id"] != "abc" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}
}

func TestAdapterLiftsContextFields(t *testing.T) {
	stub := &stubLogger{}
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"locale": "fr"})

	wrap(stub).WithContext(ctx)

	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %#v", stub.contexts)
	}
	if len(stub.fields) != 1 || stub.fields[0]["locale"] != "fr" {
		t.Fatalf("expected context fields to be applied, got %v", stub.fields)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}
