package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type pingMessage struct{}

func (pingMessage) Type() string { return "autotranslate.test.ping" }

func (pingMessage) Validate() error { return nil }

type brokenMessage struct{}

func (brokenMessage) Type() string { return "autotranslate.test.broken" }

func (brokenMessage) Validate() error { return errors.New("document id is required") }

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), pingMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[brokenMessage](func(ctx context.Context, msg brokenMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), brokenMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, execErr) {
		t.Fatalf("expected original error to stay reachable, got %v", err)
	}
}

func TestHandlerKeepsServiceCategories(t *testing.T) {
	notFound := goerrors.New("document missing", goerrors.CategoryNotFound)
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return notFound
	})

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category to pass through, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	}, WithTimeout[pingMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerReportsTelemetry(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return nil
	},
		WithOperation[pingMessage]("autotranslate.ping"),
		WithTelemetry[pingMessage](func(_ context.Context, _ pingMessage, info TelemetryInfo) {
			got = info
		}),
	)

	if err := h.Execute(context.Background(), pingMessage{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.Status != TelemetryStatusSuccess || got.Operation != "autotranslate.ping" {
		t.Fatalf("unexpected telemetry %+v", got)
	}
}
