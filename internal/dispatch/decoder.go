package dispatch

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Message is one decoded server-sent event. Type is the explicit "event:"
// line when present, otherwise the "event" field of the payload.
type Message struct {
	Type string
	Data map[string]any
}

// MaxLineBytes caps a buffered partial line. Longer lines are discarded up to
// their terminating newline.
const MaxLineBytes = 1 << 20

// Decoder incrementally splits a server-sent event stream into messages.
// Chunks may end mid-line; the trailing partial line is kept until the next
// Feed or Flush.
type Decoder struct {
	buf        []byte
	eventType  string
	maxLine    int
	discarding bool
}

// Feed consumes a chunk and returns the messages completed by it.
func (d *Decoder) Feed(chunk []byte) []Message {
	if d.discarding {
		idx := bytes.IndexByte(chunk, '\n')
		if idx < 0 {
			return nil
		}
		chunk = chunk[idx+1:]
		d.discarding = false
	}
	d.buf = append(d.buf, chunk...)
	var out []Message
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(d.buf[:idx])
		d.buf = d.buf[idx+1:]
		if msg, ok := d.line(line); ok {
			out = append(out, msg)
		}
	}
	if len(d.buf) > d.lineLimit() {
		d.buf = nil
		d.discarding = true
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return out
}

func (d *Decoder) lineLimit() int {
	if d.maxLine > 0 {
		return d.maxLine
	}
	return MaxLineBytes
}

// Flush processes a final unterminated line, if any.
func (d *Decoder) Flush() []Message {
	if len(d.buf) == 0 {
		return nil
	}
	line := string(d.buf)
	d.buf = nil
	if msg, ok := d.line(line); ok {
		return []Message{msg}
	}
	return nil
}

func (d *Decoder) line(raw string) (Message, bool) {
	line := strings.TrimSuffix(raw, "\r")
	switch {
	case strings.HasPrefix(line, "event:"):
		d.eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		return Message{}, false
	case strings.HasPrefix(line, "data:"):
		explicit := d.eventType
		d.eventType = ""
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		var data map[string]any
		if err := json.Unmarshal([]byte(payload), &data); err != nil || data == nil {
			return Message{}, false
		}
		msgType := explicit
		if msgType == "" {
			msgType, _ = data["event"].(string)
		}
		return Message{Type: msgType, Data: data}, true
	default:
		return Message{}, false
	}
}
