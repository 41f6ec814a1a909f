package progress

import "time"

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// EventKind classifies a progress event.
type EventKind string

const (
	EventStarted      EventKind = "started"
	EventNodeStarted  EventKind = "node_started"
	EventNodeFinished EventKind = "node_finished"
	EventCompleted    EventKind = "completed"
	EventError        EventKind = "error"
)

// Event is an append-only entry of a job's progress log. Index is assigned
// by the tracker at append time.
type Event struct {
	JobID     string    `json:"jobId"`
	Kind      EventKind `json:"type"`
	Message   string    `json:"message"`
	Current   *int      `json:"current,omitempty"`
	Total     *int      `json:"total,omitempty"`
	NodeName  string    `json:"nodeName,omitempty"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a read-only copy of a job.
type Snapshot struct {
	ID               string     `json:"id"`
	DocumentID       string     `json:"documentId"`
	ContentType      string     `json:"contentType"`
	TargetLocales    []string   `json:"targetLocales"`
	Status           Status     `json:"status"`
	CompletedLocales int        `json:"completedLocales"`
	Events           []Event    `json:"events"`
	CreatedAt        time.Time  `json:"createdAt"`
	FinishedAt       *time.Time `json:"finishedAt,omitempty"`
}

// JobSpec describes a job being started.
type JobSpec struct {
	ID            string
	DocumentID    string
	ContentType   string
	TargetLocales []string
}

// Counter builds the optional current/total pair of an event.
func Counter(current, total int) (*int, *int) {
	return &current, &total
}
