package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).WithFlags(0)

	l.Severe("Command %q not found.", "frob")
	l.Warning("history write failed")
	l.Info("listening")

	assert.Equal(t, "SEVERE: Command \"frob\" not found.\nWARNING: history write failed\nINFO: listening\n", buf.String())

	buf.Reset()
	l.SetMinLevel(Warning)
	l.Info("dropped")
	assert.Empty(t, buf.String())
}

func TestLogger_nil(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Severe("ignored") })
}

func TestEventLog_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	events := NewJSONLinesEventLog(&buf)

	session := events.NewSession()
	require.NoError(t, session.Record(&SessionOpen{RemoteAddr: "127.0.0.1:5000", Transport: "tcp"}))
	require.NoError(t, session.Record(&RunCommand{Command: "put", Result: "SUCCESS"}))
	require.NoError(t, session.Record(&RunCommand{Command: "greet", Functor: true, Result: "FAILURE"}))
	require.NoError(t, session.Record(&UnknownCommand{Command: "frob"}))
	require.NoError(t, session.Record(&Panic{Command: "boom", Context: "runtime error"}))
	require.NoError(t, session.Record(&SessionClose{LastReturn: 1}))

	assert.Equal(t, 6, strings.Count(buf.String(), "\n"))

	var report Report
	var ids []string
	require.NoError(t, ReadJSONLinesLog(&buf, func(le *LogEntry) {
		ids = append(ids, le.SessionID)
		report.Update(le)
	}))

	assert.Equal(t, 6, report.LogEntries)
	assert.Equal(t, 1, report.Sessions.Opened)
	assert.Equal(t, 1, report.Sessions.Closed)
	assert.Equal(t, 1, report.RunCommand.CommandNames.Count("put"))
	assert.Equal(t, 1, report.RunCommand.FunctorNames.Count("greet"))
	assert.Equal(t, []string{"FAILURE", "SUCCESS"}, report.RunCommand.Results.Keys())
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("frob"))
	assert.Equal(t, []string{"boom: runtime error"}, report.Panic.Contexts)

	for _, id := range ids {
		assert.Equal(t, session.ID(), id)
	}
}

func TestSessionLog_nil(t *testing.T) {
	var s *SessionLog
	assert.NoError(t, s.Record(&UnknownCommand{Command: "x"}))
	assert.Equal(t, "", s.ID())
}
