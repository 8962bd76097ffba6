package logger

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/fatih/color"
)

// Level is the severity of an application log message.
type Level int

const (
	Info Level = iota
	Warning
	Severe
)

var levelNames = map[Level]string{
	Info:    "INFO",
	Warning: "WARNING",
	Severe:  "SEVERE",
}

var levelColors = map[Level]*color.Color{
	Info:    color.New(color.FgCyan),
	Warning: color.New(color.FgYellow, color.Bold),
	Severe:  color.New(color.FgRed, color.Bold),
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger writes levelled messages. It is safe for concurrent use.
type Logger struct {
	out      *log.Logger
	colorize bool
	min      Level
}

// New creates a Logger writing to w. Level tags are coloured when w is a
// terminal and colour hasn't been disabled.
func New(w io.Writer) *Logger {
	_, isFile := w.(*os.File)
	return &Logger{
		out:      log.New(w, "", log.LstdFlags),
		colorize: isFile && !color.NoColor,
	}
}

// Discard creates a Logger that drops everything.
func Discard() *Logger {
	return &Logger{out: log.New(ioutil.Discard, "", 0)}
}

// WithFlags returns a copy of the logger using the given log flags.
func (l *Logger) WithFlags(flags int) *Logger {
	return &Logger{
		out:      log.New(l.out.Writer(), l.out.Prefix(), flags),
		colorize: l.colorize,
		min:      l.min,
	}
}

// SetMinLevel drops messages below min.
func (l *Logger) SetMinLevel(min Level) {
	l.min = min
}

// Log writes a message at the given level.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	if l == nil || level < l.min {
		return
	}

	tag := level.String()
	if l.colorize {
		tag = levelColors[level].Sprint(tag)
	}
	l.out.Printf("%s: %s", tag, fmt.Sprintf(format, args...))
}

// Severe logs a failure that stops the current interpreter loop.
func (l *Logger) Severe(format string, args ...interface{}) {
	l.Log(Severe, format, args...)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(Warning, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(Info, format, args...)
}
