package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-cms-autotranslate/internal/progress"
	"github.com/goliatone/go-cms-autotranslate/pkg/testsupport"
)

func TestBuildPayload(t *testing.T) {
	body, collisions, err := BuildPayload(Request{
		DocumentID:    "doc-1",
		SourceLocale:  "en",
		TargetLocales: []string{"de", "fr"},
		Fields:        map[string]any{"title": "Hello", "document_id": "shadow"},
		Target:        Target{User: "bot", CallbackURL: "https://cms.example.com/cb"},
	})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	inputs := body["inputs"].(map[string]any)
	if inputs["title"] != "Hello" || inputs["document_id"] != "doc-1" {
		t.Fatalf("unexpected inputs %v", inputs)
	}
	if inputs["target_locales"] != `["de","fr"]` {
		t.Fatalf("expected target locales as json string, got %v", inputs["target_locales"])
	}
	if body["response_mode"] != "streaming" || body["user"] != "bot" {
		t.Fatalf("unexpected envelope %v", body)
	}
	if len(collisions) != 1 || collisions[0] != "document_id" {
		t.Fatalf("unexpected collisions %v", collisions)
	}
}

func TestBuildPayloadMatchesGolden(t *testing.T) {
	body, _, err := BuildPayload(Request{
		DocumentID:    "doc-1",
		SourceLocale:  "en",
		TargetLocales: []string{"de", "fr"},
		Fields:        map[string]any{"title": "Hello", "seo__metaTitle": "Meta"},
		Target: Target{
			User:        "autotranslate",
			CallbackURL: "https://cms.example.com/api/autotranslate/callback?contentType=api%3A%3Aarticle.article",
		},
	})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var want map[string]any
	testsupport.Golden(t, "workflow_payload.golden.json", &want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("payload mismatch\n got: %s\nwant: %v", encoded, want)
	}
}

func TestDispatcherRunStreamsToCompletion(t *testing.T) {
	var gotAuth, gotAccept string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		lines := []string{
			`data: {"event":"workflow_started"}`,
			`data: {"event":"node_started","data":{"title":"save_translation"}}`,
			`data: {"event":"node_finished","data":{"title":"save_translation"}}`,
			`data: {"event":"workflow_finished","data":{"status":"succeeded"}}`,
		}
		for _, line := range lines {
			fmt.Fprint(w, line+"\n\n")
			flusher.Flush()
		}
	}))
	defer server.Close()

	tracker := progress.NewTracker()
	defer tracker.Close()
	id := tracker.StartJob(progress.JobSpec{ID: "job-1", TargetLocales: []string{"de"}})

	d := New(tracker, nil)
	d.Run(context.Background(), Request{
		JobID:         id,
		DocumentID:    "doc-1",
		SourceLocale:  "en",
		TargetLocales: []string{"de"},
		Fields:        map[string]any{"title": "Hello"},
		Target:        Target{EndpointURL: server.URL, APIKey: "secret", User: "bot"},
	})

	if gotAuth != "Bearer secret" || gotAccept != "text/event-stream" {
		t.Fatalf("unexpected headers auth=%q accept=%q", gotAuth, gotAccept)
	}
	if gotBody["response_mode"] != "streaming" {
		t.Fatalf("unexpected request body %v", gotBody)
	}

	snap, _ := tracker.Job(id)
	if snap.Status != progress.StatusCompleted || snap.CompletedLocales != 1 {
		t.Fatalf("unexpected job state %+v", snap)
	}
	kinds := make([]progress.EventKind, 0, len(snap.Events))
	for _, evt := range snap.Events {
		kinds = append(kinds, evt.Kind)
	}
	want := []progress.EventKind{progress.EventStarted, progress.EventNodeStarted, progress.EventNodeFinished, progress.EventCompleted}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("unexpected event kinds %v", kinds)
	}
}

func TestDispatcherOmitsAuthWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, "data: {\"event\":\"error\",\"message\":\"boom\"}\n")
	}))
	defer server.Close()

	tracker := progress.NewTracker()
	defer tracker.Close()
	id := tracker.StartJob(progress.JobSpec{ID: "job-1"})
	New(tracker, nil).Run(context.Background(), Request{JobID: id, Target: Target{EndpointURL: server.URL}})

	if gotAuth != "" {
		t.Fatalf("expected no authorization header, got %q", gotAuth)
	}
	snap, _ := tracker.Job(id)
	if snap.Status != progress.StatusError || snap.Events[len(snap.Events)-1].Message != "boom" {
		t.Fatalf("unexpected job state %+v", snap)
	}
}

func TestDispatcherFailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	tracker := progress.NewTracker()
	defer tracker.Close()
	id := tracker.StartJob(progress.JobSpec{ID: "job-1"})
	New(tracker, nil).Run(context.Background(), Request{JobID: id, Target: Target{EndpointURL: server.URL}})

	snap, _ := tracker.Job(id)
	last := snap.Events[len(snap.Events)-1]
	if snap.Status != progress.StatusError || !strings.Contains(last.Message, "401") || !strings.Contains(last.Message, "invalid api key") {
		t.Fatalf("unexpected failure event %+v", last)
	}
}

func TestDispatcherFailsWhenStreamEndsEarly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"event\":\"node_started\",\"data\":{\"title\":\"translate\"}}\n")
	}))
	defer server.Close()

	tracker := progress.NewTracker()
	defer tracker.Close()
	id := tracker.StartJob(progress.JobSpec{ID: "job-1"})
	New(tracker, nil).Run(context.Background(), Request{JobID: id, Target: Target{EndpointURL: server.URL}})

	snap, _ := tracker.Job(id)
	if snap.Status != progress.StatusError || snap.Events[len(snap.Events)-1].Message != "Stream ended before workflow finished" {
		t.Fatalf("unexpected job state %+v", snap)
	}
}

func TestDispatcherFailsOnConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	tracker := progress.NewTracker()
	defer tracker.Close()
	id := tracker.StartJob(progress.JobSpec{ID: "job-1"})
	New(tracker, nil).Run(context.Background(), Request{JobID: id, Target: Target{EndpointURL: endpoint}})

	snap, _ := tracker.Job(id)
	if snap.Status != progress.StatusError {
		t.Fatalf("expected connection failure to fail the job, got %+v", snap)
	}
}

func TestDispatcherStartIsDetachedFromCaller(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, "data: {\"event\":\"workflow_finished\",\"data\":{\"status\":\"succeeded\"}}\n")
	}))
	defer server.Close()

	tracker := progress.NewTracker()
	defer tracker.Close()
	id := tracker.StartJob(progress.JobSpec{ID: "job-1"})

	ctx, cancel := context.WithCancel(context.Background())
	d := New(tracker, nil, WithTimeout(5*time.Second))
	d.Start(ctx, Request{JobID: id, Target: Target{EndpointURL: server.URL}})
	cancel()

	if snap, _ := tracker.Job(id); snap.Status != progress.StatusRunning {
		t.Fatalf("expected Start to return before completion, got %s", snap.Status)
	}
	close(release)
	d.Wait()

	if snap, _ := tracker.Job(id); snap.Status != progress.StatusCompleted {
		t.Fatalf("expected detached dispatch to complete, got %+v", snap)
	}
}
