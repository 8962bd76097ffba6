package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"
)

// LogEntry is a single event in the session log. Exactly one of the event
// fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionOpen    *SessionOpen    `json:"session_open,omitempty"`
	SessionClose   *SessionClose   `json:"session_close,omitempty"`
	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	Panic          *Panic          `json:"panic,omitempty"`
}

// SessionOpen is logged when a client connects.
type SessionOpen struct {
	RemoteAddr string `json:"remote_addr"`
	Transport  string `json:"transport"`
	User       string `json:"user,omitempty"`
}

// SessionClose is logged when a session ends.
type SessionClose struct {
	LastReturn int    `json:"last_return"`
	Error      string `json:"error,omitempty"`
}

// RunCommand is logged for each dispatched command or functor.
type RunCommand struct {
	Command string `json:"command"`
	Functor bool   `json:"functor,omitempty"`
	Result  string `json:"result"`
}

// UnknownCommand is logged when a name resolves to nothing.
type UnknownCommand struct {
	Command string `json:"command"`
}

// Panic is logged when a command panics.
type Panic struct {
	Command    string `json:"command"`
	Context    string `json:"context"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

// Event is one of the event types above.
type Event interface {
	attach(le *LogEntry)
}

func (e *SessionOpen) attach(le *LogEntry)    { le.SessionOpen = e }
func (e *SessionClose) attach(le *LogEntry)   { le.SessionClose = e }
func (e *RunCommand) attach(le *LogEntry)     { le.RunCommand = e }
func (e *UnknownCommand) attach(le *LogEntry) { le.UnknownCommand = e }
func (e *Panic) attach(le *LogEntry)          { le.Panic = e }

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// EventLog captures session events.
type EventLog struct {
	Record LogRecorder
}

// NewJSONLinesEventLog creates an EventLog that exports events as newline
// delimited JSON objects. Writes from concurrent sessions are serialized.
func NewJSONLinesEventLog(w io.Writer) *EventLog {
	var mu sync.Mutex
	return &EventLog{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

func (l *EventLog) record(sessionID string, event Event) error {
	le := &LogEntry{}
	le.TimestampMicros = time.Now().UnixNano() / int64(time.Microsecond)
	le.SessionID = sessionID
	event.attach(le)

	return l.Record(le)
}

// NewSession creates a session log with a random session ID.
func (l *EventLog) NewSession() *SessionLog {
	return &SessionLog{log: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLog records events with a shared session ID. A nil SessionLog
// discards events.
type SessionLog struct {
	log       *EventLog
	sessionID string
}

// ID returns the session identifier.
func (s *SessionLog) ID() string {
	if s == nil {
		return ""
	}
	return s.sessionID
}

// Record stores the event.
func (s *SessionLog) Record(event Event) error {
	if s == nil || s.log == nil {
		return nil
	}
	return s.log.record(s.sessionID, event)
}
