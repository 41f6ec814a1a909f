// Package dispatch sends translation requests to the external workflow and
// turns its event stream into job progress.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

const (
	responseModeStreaming = "streaming"
	errorBodyLimit        = 1024
	readChunkSize         = 4096
)

// Reserved workflow input keys. They override extracted fields that collide.
const (
	InputDocumentID    = "document_id"
	InputSourceLocale  = "source_locale"
	InputTargetLocales = "target_locales"
	InputCallbackURL   = "callback_url"
)

var reservedInputs = []string{InputDocumentID, InputSourceLocale, InputTargetLocales, InputCallbackURL}

// Target is the resolved workflow endpoint for one dispatch.
type Target struct {
	EndpointURL string
	APIKey      string
	User        string
	CallbackURL string
}

// Request is one outbound translation job.
type Request struct {
	JobID         string
	DocumentID    string
	ContentType   string
	SourceLocale  string
	TargetLocales []string
	Fields        map[string]any
	Target        Target
}

// Dispatcher posts requests and consumes the streamed response in the
// background. Job state is only ever communicated through the Recorder.
type Dispatcher struct {
	client    *resty.Client
	recorder  Recorder
	processor *Processor
	timeout   time.Duration
	logger    interfaces.Logger
	wg        sync.WaitGroup
}

type Option func(*Dispatcher)

// WithHTTPClient routes requests through client. Client-level timeouts also
// bound the stream read, so prefer WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = resty.NewWithClient(client)
		}
	}
}

// WithTimeout bounds a whole dispatch including the stream. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout >= 0 {
			d.timeout = timeout
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logging.Ensure(logger)
	}
}

func New(recorder Recorder, processor *Processor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:    resty.New(),
		recorder:  recorder,
		processor: processor,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.processor == nil {
		d.processor = NewProcessor(recorder, nil, "", d.logger)
	}
	return d
}

// Start runs the dispatch on its own goroutine and returns immediately. The
// caller's cancellation does not propagate to the background work.
func (d *Dispatcher) Start(ctx context.Context, req Request) {
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Run(detached, req)
	}()
}

// Wait blocks until every started dispatch has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Run performs the dispatch synchronously. Every outcome ends with the job in
// a terminal state.
func (d *Dispatcher) Run(ctx context.Context, req Request) {
	logger := logging.WithJob(logging.WithDocumentContext(d.logger, req.ContentType, req.DocumentID, req.SourceLocale), req.JobID)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, collisions, err := BuildPayload(req)
	if err != nil {
		d.fail(logger, req.JobID, fmt.Sprintf("Failed to build workflow request: %v", err))
		return
	}
	for _, key := range collisions {
		logger.Warn("dispatch.request.input_collision", "field", key)
	}

	r := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetBody(body).
		SetDoNotParseResponse(true)
	if key := strings.TrimSpace(req.Target.APIKey); key != "" {
		r.SetAuthToken(key)
	}

	logger.Info("dispatch.request.start", "endpoint", req.Target.EndpointURL, "locales", len(req.TargetLocales))
	resp, err := r.Post(req.Target.EndpointURL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			_ = resp.RawBody().Close()
		}
		d.fail(logger, req.JobID, fmt.Sprintf("Workflow request failed: %v", err))
		return
	}

	raw := resp.RawBody()
	if raw == nil {
		d.fail(logger, req.JobID, "Workflow response has no body")
		return
	}
	defer raw.Close()

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(raw, errorBodyLimit))
		message := fmt.Sprintf("Workflow request failed with status %d", code)
		if text := strings.TrimSpace(string(snippet)); text != "" {
			message += ": " + text
		}
		d.fail(logger, req.JobID, message)
		return
	}

	d.consume(ctx, logger, req.JobID, raw)
}

func (d *Dispatcher) consume(ctx context.Context, logger interfaces.Logger, jobID string, body io.Reader) {
	var decoder Decoder
	buf := make([]byte, readChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, msg := range decoder.Feed(buf[:n]) {
				if d.processor.Handle(jobID, msg) {
					logger.Info("dispatch.stream.terminal", "event", msg.Type)
					return
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			d.fail(logger, jobID, fmt.Sprintf("Workflow stream failed: %v", err))
			return
		}
	}
	for _, msg := range decoder.Flush() {
		if d.processor.Handle(jobID, msg) {
			return
		}
	}
	d.fail(logger, jobID, "Stream ended before workflow finished")
}

func (d *Dispatcher) fail(logger interfaces.Logger, jobID, message string) {
	logger.Error("dispatch.failed", "error", message)
	d.recorder.CompleteJob(jobID, false, message)
}

// BuildPayload renders the workflow request body. It returns the extracted
// field keys that were overridden by reserved inputs.
func BuildPayload(req Request) (map[string]any, []string, error) {
	locales := req.TargetLocales
	if locales == nil {
		locales = []string{}
	}
	encodedLocales, err := json.Marshal(locales)
	if err != nil {
		return nil, nil, err
	}

	inputs := make(map[string]any, len(req.Fields)+len(reservedInputs))
	for key, value := range req.Fields {
		inputs[key] = value
	}

	var collisions []string
	for _, key := range reservedInputs {
		if _, ok := inputs[key]; ok {
			collisions = append(collisions, key)
		}
	}
	inputs[InputDocumentID] = req.DocumentID
	inputs[InputSourceLocale] = req.SourceLocale
	inputs[InputTargetLocales] = string(encodedLocales)
	inputs[InputCallbackURL] = req.Target.CallbackURL

	return map[string]any{
		"inputs":        inputs,
		"response_mode": responseModeStreaming,
		"user":          req.Target.User,
	}, collisions, nil
}
