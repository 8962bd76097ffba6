// Package logger holds the interpreter's levelled application logger and the
// newline delimited JSON event log written for server sessions.
package logger
