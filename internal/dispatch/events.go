package dispatch

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/progress"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// EventKind is the closed set of workflow stream events the processor acts on.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindWorkflowStarted
	KindNodeStarted
	KindNodeFinished
	KindWorkflowFinished
	KindError
	KindPing
)

func ParseKind(raw string) EventKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "workflow_started":
		return KindWorkflowStarted
	case "node_started":
		return KindNodeStarted
	case "node_finished":
		return KindNodeFinished
	case "workflow_finished":
		return KindWorkflowFinished
	case "error":
		return KindError
	case "ping":
		return KindPing
	default:
		return KindUnknown
	}
}

// Recorder is the slice of the progress tracker the processor mutates.
type Recorder interface {
	AddEvent(jobID string, evt progress.Event)
	IncrementCompleted(jobID string) (int, int, bool)
	CompleteJob(jobID string, success bool, message string) bool
}

// Processor turns workflow stream messages into job progress.
type Processor struct {
	recorder        Recorder
	keywords        []string
	succeededStatus string
	logger          interfaces.Logger
}

// DefaultSaveKeywords identify the workflow node that posts results back.
var DefaultSaveKeywords = []string{"callback", "save"}

const DefaultSucceededStatus = "succeeded"

func NewProcessor(recorder Recorder, keywords []string, succeededStatus string, logger interfaces.Logger) *Processor {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			normalized = append(normalized, kw)
		}
	}
	if len(normalized) == 0 {
		normalized = append(normalized, DefaultSaveKeywords...)
	}
	if strings.TrimSpace(succeededStatus) == "" {
		succeededStatus = DefaultSucceededStatus
	}
	return &Processor{
		recorder:        recorder,
		keywords:        normalized,
		succeededStatus: succeededStatus,
		logger:          logging.Ensure(logger),
	}
}

// Handle applies msg to the job and reports whether the job reached a
// terminal state.
func (p *Processor) Handle(jobID string, msg Message) bool {
	kind := ParseKind(msg.Type)
	logger := logging.WithJob(p.logger, jobID)

	switch kind {
	case KindNodeStarted:
		name := nodeName(msg.Data)
		p.recorder.AddEvent(jobID, progress.Event{
			Kind:     progress.EventNodeStarted,
			Message:  name,
			NodeName: name,
		})
		return false
	case KindNodeFinished:
		name := nodeName(msg.Data)
		if !p.isSaveNode(name) {
			return false
		}
		current, total, ok := p.recorder.IncrementCompleted(jobID)
		if !ok {
			return false
		}
		cur, tot := progress.Counter(current, total)
		p.recorder.AddEvent(jobID, progress.Event{
			Kind:     progress.EventNodeFinished,
			Message:  fmt.Sprintf("Saved translation (%d/%d)", current, total),
			NodeName: name,
			Current:  cur,
			Total:    tot,
		})
		return false
	case KindWorkflowFinished:
		inner := nested(msg.Data)
		status := stringField(inner, "status")
		if status == p.succeededStatus {
			p.recorder.CompleteJob(jobID, true, "Translation completed")
			return true
		}
		message := fmt.Sprintf("Workflow finished with status: %s", status)
		if upstream := stringField(inner, "error"); upstream != "" {
			message += " (" + upstream + ")"
		}
		p.recorder.CompleteJob(jobID, false, message)
		return true
	case KindError:
		message := stringField(msg.Data, "message")
		if message == "" {
			message = stringField(nested(msg.Data), "error")
		}
		if message == "" {
			message = "Workflow reported an error"
		}
		p.recorder.CompleteJob(jobID, false, message)
		return true
	case KindWorkflowStarted, KindPing:
		logger.Debug("dispatch.stream.event", "event", msg.Type)
		return false
	default:
		logger.Debug("dispatch.stream.ignored", "event", msg.Type)
		return false
	}
}

func (p *Processor) isSaveNode(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range p.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func nodeName(data map[string]any) string {
	inner := nested(data)
	for _, key := range []string{"title", "node_type", "node_id"} {
		if value := stringField(inner, key); value != "" {
			return TitleCase(value)
		}
	}
	return "Unknown Node"
}

// TitleCase turns raw identifiers such as "save_translation" into
// "Save Translation".
func TitleCase(raw string) string {
	words := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + word[size:]
	}
	return strings.Join(words, " ")
}

func nested(data map[string]any) map[string]any {
	inner, _ := data["data"].(map[string]any)
	return inner
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	value, _ := data[key].(string)
	return strings.TrimSpace(value)
}
