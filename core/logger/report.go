package logger

import (
	"encoding/json"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON event log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int `json:"log_entries"`

	Sessions       SessionReport        `json:"session_report"`
	RunCommand     RunCommandReport     `json:"run_command_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	Panic          PanicReport          `json:"panic_report"`
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.SessionOpen != nil:
		r.Sessions.Opened++
		r.Sessions.Transports.Increment(le.SessionOpen.Transport)
		r.Sessions.RemoteAddrs.Increment(le.SessionOpen.RemoteAddr)
	case le.SessionClose != nil:
		r.Sessions.Closed++
		if le.SessionClose.Error != "" {
			r.Sessions.Errors.Increment(le.SessionClose.Error)
		}
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
	case le.UnknownCommand != nil:
		r.UnknownCommand.CommandNames.Increment(le.UnknownCommand.Command)
	case le.Panic != nil:
		r.Panic.Contexts = append(r.Panic.Contexts, le.Panic.Command+": "+le.Panic.Context)
	}
}

type SessionReport struct {
	Opened      int        `json:"opened"`
	Closed      int        `json:"closed"`
	Transports  StrCounter `json:"transports"`
	RemoteAddrs StrCounter `json:"remote_addrs"`
	Errors      StrCounter `json:"errors,omitempty"`
}

type RunCommandReport struct {
	// Names of dispatched commands
	CommandNames StrCounter `json:"command_names"`
	// Names of dispatched functors
	FunctorNames StrCounter `json:"functor_names"`
	// Results of all dispatches
	Results StrCounter `json:"results"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if rc.Functor {
		r.FunctorNames.Increment(rc.Command)
	} else {
		r.CommandNames.Increment(rc.Command)
	}
	r.Results.Increment(rc.Result)
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Keys returns the counted keys, sorted.
func (s *StrCounter) Keys() []string {
	var out []string
	for k := range s.internal {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}
