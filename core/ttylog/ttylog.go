// Package ttylog records the input and output of interpreter sessions and
// plays the recordings back.
package ttylog

import (
	"io"
	"sync"
	"time"
)

// Stream identifies which side of a session a chunk of data came from.
type Stream int

const (
	// Input was read from the client.
	Input Stream = iota
	// Output was written to the client.
	Output
)

// Entry is one chunk of session traffic.
type Entry struct {
	TimestampMicros int64
	Stream          Stream
	Data            []byte
}

// LogSink receives log entries.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Entry) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes what the client saw to w.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Entry) error {
		if e.Stream != Output {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder tees session traffic into a LogSink. Sink errors go to OnError
// and never fail the session.
type Recorder struct {
	mu     sync.Mutex
	output LogSink

	OnError func(error)
}

// NewRecorder creates a recorder that forwards all traffic to output.
func NewRecorder(output LogSink) *Recorder {
	return &Recorder{output: output}
}

func (r *Recorder) record(stream Stream, data []byte) {
	if len(data) == 0 {
		return
	}
	e := &Entry{
		TimestampMicros: time.Now().UnixNano() / int64(time.Microsecond),
		Stream:          stream,
		Data:            append([]byte(nil), data...),
	}

	r.mu.Lock()
	err := r.output(e)
	r.mu.Unlock()
	if err != nil && r.OnError != nil {
		r.OnError(err)
	}
}

// Reader records everything read from rd.
func (r *Recorder) Reader(rd io.Reader) io.Reader {
	return &recordingReader{r: r, wrapped: rd}
}

// Writer records everything written to w.
func (r *Recorder) Writer(w io.Writer) io.Writer {
	return &recordingWriter{r: r, wrapped: w}
}

type recordingReader struct {
	r       *Recorder
	wrapped io.Reader
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.wrapped.Read(p)
	rr.r.record(Input, p[:n])
	return n, err
}

type recordingWriter struct {
	r       *Recorder
	wrapped io.Writer
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.record(Output, p[:n])
	return n, err
}
