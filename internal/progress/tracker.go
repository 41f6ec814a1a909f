// Package progress keeps the volatile, in-process log of translation jobs
// polled by clients while dispatch runs in the background.
package progress

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// DefaultRetention is how long terminal jobs stay pollable.
const DefaultRetention = 5 * time.Minute

type job struct {
	mu       sync.Mutex
	snapshot Snapshot
	evict    Stopper
}

// Stopper cancels a scheduled eviction.
type Stopper interface {
	Stop() bool
}

// Tracker is the job registry. It is safe for concurrent use; readers get
// copies and never observe a partially appended event.
type Tracker struct {
	jobs      *xsync.MapOf[string, *job]
	retention time.Duration
	now       func() time.Time
	after     func(time.Duration, func()) Stopper
	logger    interfaces.Logger
}

type Option func(*Tracker)

// WithRetention overrides how long terminal jobs are kept. Zero evicts
// immediately on completion.
func WithRetention(d time.Duration) Option {
	return func(t *Tracker) {
		if d >= 0 {
			t.retention = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithScheduler replaces time.AfterFunc for eviction scheduling.
func WithScheduler(after func(time.Duration, func()) Stopper) Option {
	return func(t *Tracker) {
		if after != nil {
			t.after = after
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(t *Tracker) {
		t.logger = logging.Ensure(logger)
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		jobs:      xsync.NewMapOf[string, *job](),
		retention: DefaultRetention,
		now:       time.Now,
		after: func(d time.Duration, fn func()) Stopper {
			return time.AfterFunc(d, fn)
		},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GenerateJobID returns a base36 millisecond timestamp followed by a random
// hex suffix.
func GenerateJobID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return ts + "-" + suffix
}

// StartJob registers a running job with its initial started event. A blank
// ID is filled with GenerateJobID. The assigned ID is returned.
func (t *Tracker) StartJob(spec JobSpec) string {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = GenerateJobID()
	}
	now := t.now()
	j := &job{snapshot: Snapshot{
		ID:            id,
		DocumentID:    spec.DocumentID,
		ContentType:   spec.ContentType,
		TargetLocales: append([]string(nil), spec.TargetLocales...),
		Status:        StatusRunning,
		CreatedAt:     now,
	}}
	j.append(Event{
		Kind:    EventStarted,
		Message: fmt.Sprintf("Translation started for %d locale(s)", len(spec.TargetLocales)),
	}, now)

	if previous, loaded := t.jobs.LoadAndStore(id, j); loaded {
		previous.stopEviction()
	}
	logging.WithJob(t.logger, id).Debug("progress.job.started", "locales", len(spec.TargetLocales))
	return id
}

// AddEvent appends evt to the job log. Unknown or evicted jobs are ignored.
func (t *Tracker) AddEvent(jobID string, evt Event) {
	j, ok := t.jobs.Load(jobID)
	if !ok {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.append(evt, t.now())
}

// Events returns events with Index >= since. Unknown jobs yield an empty slice.
func (t *Tracker) Events(jobID string, since int) []Event {
	j, ok := t.jobs.Load(jobID)
	if !ok {
		return []Event{}
	}
	if since < 0 {
		since = 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if since >= len(j.snapshot.Events) {
		return []Event{}
	}
	out := make([]Event, len(j.snapshot.Events)-since)
	copy(out, j.snapshot.Events[since:])
	return out
}

// Job returns a copy of the job state.
func (t *Tracker) Job(jobID string) (Snapshot, bool) {
	j, ok := t.jobs.Load(jobID)
	if !ok {
		return Snapshot{}, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := j.snapshot
	snap.TargetLocales = append([]string(nil), j.snapshot.TargetLocales...)
	snap.Events = append([]Event(nil), j.snapshot.Events...)
	return snap, true
}

// IncrementCompleted bumps the completed locale counter of a running job and
// returns the new count and the number of target locales.
func (t *Tracker) IncrementCompleted(jobID string) (int, int, bool) {
	j, ok := t.jobs.Load(jobID)
	if !ok {
		return 0, 0, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.snapshot.Status.Terminal() {
		return j.snapshot.CompletedLocales, len(j.snapshot.TargetLocales), false
	}
	j.snapshot.CompletedLocales++
	return j.snapshot.CompletedLocales, len(j.snapshot.TargetLocales), true
}

// CompleteJob moves a running job to a terminal status, records the terminal
// event and schedules eviction. Completing a terminal job is a no-op and
// reports false.
func (t *Tracker) CompleteJob(jobID string, success bool, message string) bool {
	j, ok := t.jobs.Load(jobID)
	if !ok {
		return false
	}
	j.mu.Lock()
	if j.snapshot.Status.Terminal() {
		j.mu.Unlock()
		return false
	}
	now := t.now()
	kind, status := EventCompleted, StatusCompleted
	if !success {
		kind, status = EventError, StatusError
	}
	j.snapshot.Status = status
	j.snapshot.FinishedAt = &now
	j.append(Event{Kind: kind, Message: message}, now)
	j.mu.Unlock()

	logging.WithJob(t.logger, jobID).Info("progress.job.completed", "status", string(status))
	t.scheduleEviction(jobID, j)
	return true
}

// Len reports the number of retained jobs.
func (t *Tracker) Len() int {
	return t.jobs.Size()
}

// Close cancels pending evictions and drops every job.
func (t *Tracker) Close() {
	t.jobs.Range(func(id string, j *job) bool {
		j.stopEviction()
		t.jobs.Delete(id)
		return true
	})
}

func (t *Tracker) scheduleEviction(jobID string, j *job) {
	evict := func() {
		t.jobs.Compute(jobID, func(current *job, loaded bool) (*job, bool) {
			// a restarted job with the same id keeps its slot
			return current, !loaded || current == j
		})
		logging.WithJob(t.logger, jobID).Debug("progress.job.evicted")
	}
	if t.retention <= 0 {
		evict()
		return
	}
	timer := t.after(t.retention, evict)
	j.mu.Lock()
	j.evict = timer
	j.mu.Unlock()
}

func (j *job) append(evt Event, now time.Time) {
	evt.JobID = j.snapshot.ID
	evt.Index = len(j.snapshot.Events)
	if evt.Timestamp.IsZero() {
		evt.Timestamp = now
	}
	j.snapshot.Events = append(j.snapshot.Events, evt)
}

func (j *job) stopEviction() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.evict != nil {
		j.evict.Stop()
		j.evict = nil
	}
}
