// Package server exposes interpreter sessions over TCP, TLS and SSH. A
// Listener accepts connections and runs one interpreter session per
// connection in its own goroutine.
package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	"github.com/tevino/abool/v2"
)

// DefaultAcceptTimeout bounds each accept so the loop can notice Stop.
const DefaultAcceptTimeout = 4000 * time.Millisecond

// ErrAlreadyListening is returned by Start on a running listener.
var ErrAlreadyListening = errors.New("listener is already listening")

// ScopePolicy chooses how a session interpreter relates to the listener's
// parent interpreter.
type ScopePolicy int

const (
	// Standalone sessions start with empty scopes and only share the
	// command registry with the parent.
	Standalone ScopePolicy = iota
	// Chained sessions are spawned from the parent with private tuples and
	// functors but see its constants and properties.
	Chained
	// Shared sessions alias the parent's global tuples and functors. Each
	// session keeps its own local frames. Concurrent sessions mutate the
	// same globals; the parent should use a guarded scope.
	Shared
)

// Option configures a Listener.
type Option func(*Listener)

// WithAddress sets the host to bind, empty for all interfaces.
func WithAddress(addr string) Option {
	return func(l *Listener) { l.address = addr }
}

// WithPort sets the TCP port. Zero picks a free port.
func WithPort(port int) Option {
	return func(l *Listener) { l.port = port }
}

// WithAcceptTimeout sets the bounded accept wait.
func WithAcceptTimeout(d time.Duration) Option {
	return func(l *Listener) { l.acceptTimeout = d }
}

// WithTLS wraps accepted connections in TLS.
func WithTLS(cfg *tls.Config) Option {
	return func(l *Listener) { l.tlsConfig = cfg }
}

// WithSSH serves SSH sessions instead of raw lines.
func WithSSH(cfg *SSHConfig) Option {
	return func(l *Listener) { l.sshConfig = cfg }
}

// WithBlock runs block once per connection instead of reading lines.
func WithBlock(block string) Option {
	return func(l *Listener) { l.block = block }
}

// WithScopePolicy sets how session interpreters inherit from the parent.
func WithScopePolicy(p ScopePolicy) Option {
	return func(l *Listener) { l.policy = p }
}

// WithScopeMode sets the mode of private session TupleMaps.
func WithScopeMode(mode interp.ScopeMode) Option {
	return func(l *Listener) { l.mode = mode }
}

// WithRateLimit throttles session output to bytesPerSec. Zero disables it.
func WithRateLimit(bytesPerSec int64) Option {
	return func(l *Listener) { l.rateLimit = bytesPerSec }
}

// WithEventLog records session events.
func WithEventLog(events *logger.EventLog) Option {
	return func(l *Listener) { l.events = events }
}

// WithSandbox gives each session a copy-on-write view of the parent's
// filesystem.
func WithSandbox(sandbox bool) Option {
	return func(l *Listener) { l.sandbox = sandbox }
}

// RecordingOpener creates the transcript file for a session.
type RecordingOpener func(sessionID string) (io.WriteCloser, error)

// WithRecordings saves an asciicast transcript of every session.
func WithRecordings(open RecordingOpener) Option {
	return func(l *Listener) { l.recordings = open }
}

// Listener accepts connections on one port and spawns a session for each.
type Listener struct {
	parent *interp.Interpreter
	log    *logger.Logger
	events *logger.EventLog

	address       string
	port          int
	acceptTimeout time.Duration
	tlsConfig     *tls.Config
	sshConfig     *SSHConfig
	block         string
	policy        ScopePolicy
	mode          interp.ScopeMode
	rateLimit     int64
	recordings    RecordingOpener
	sandbox       bool

	mu        sync.Mutex
	ln        *net.TCPListener
	done      chan struct{}
	listening *abool.AtomicBool
	spawns    uint64
	sessions  sync.WaitGroup
}

// NewListener creates a stopped listener whose sessions dispatch to the
// parent's commands.
func NewListener(parent *interp.Interpreter, opts ...Option) *Listener {
	l := &Listener{
		parent:        parent,
		log:           parent.Logger(),
		acceptTimeout: DefaultAcceptTimeout,
		listening:     abool.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.acceptTimeout <= 0 {
		l.acceptTimeout = DefaultAcceptTimeout
	}
	return l
}

// AutonomeCommand implements interp.Autonomic.
func (l *Listener) AutonomeCommand() string {
	return "server"
}

// Start binds the port and runs the accept loop in its own goroutine.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listening.IsSet() {
		return ErrAlreadyListening
	}

	addr := net.JoinHostPort(l.address, strconv.Itoa(l.port))
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		l.log.Severe("Listener could not listen on port: %d. %v", l.port, err)
		return err
	}

	l.ln = ln
	l.done = make(chan struct{})
	l.listening.Set()
	go l.acceptLoop(ln, l.done)
	return nil
}

func (l *Listener) acceptLoop(ln *net.TCPListener, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := ln.Close(); err != nil {
			l.log.Warning("Error closing socket: %v", err)
		}
	}()

	for l.listening.IsSet() {
		if err := ln.SetDeadline(time.Now().Add(l.acceptTimeout)); err != nil {
			l.log.Severe("Error spawning Server: %v", err)
			l.listening.UnSet()
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			l.log.Severe("Error spawning Server: %v", err)
			l.listening.UnSet()
			return
		}

		id := atomic.AddUint64(&l.spawns, 1)
		l.sessions.Add(1)
		go func() {
			defer l.sessions.Done()
			l.handle(conn, id)
		}()
	}
}

// Stop clears the listening flag and waits for the accept loop to close
// the socket, which takes at most one accept timeout. Running sessions are
// left alone.
func (l *Listener) Stop() {
	l.mu.Lock()
	done := l.done
	l.listening.UnSet()
	l.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Done is closed when the accept loop exits. It is nil before Start.
func (l *Listener) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Wait blocks until every spawned session has finished.
func (l *Listener) Wait() {
	l.sessions.Wait()
}

// IsListening reports whether the accept loop is running.
func (l *Listener) IsListening() bool {
	return l.listening.IsSet()
}

// SpawnCount is the number of sessions started so far.
func (l *Listener) SpawnCount() uint64 {
	return atomic.LoadUint64(&l.spawns)
}

// Port is the bound port once started, else the configured one.
func (l *Listener) Port() int {
	if a, ok := l.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return l.port
}

// Addr is the bound address, nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// SetPort changes the port used by the next Start.
func (l *Listener) SetPort(port int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.port = port
}

// SetAcceptTimeout changes the accept wait used by the next Start.
func (l *Listener) SetAcceptTimeout(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d > 0 {
		l.acceptTimeout = d
	}
}

// Transport names the protocol served.
func (l *Listener) Transport() string {
	switch {
	case l.sshConfig != nil:
		return "ssh"
	case l.tlsConfig != nil:
		return "tls"
	default:
		return "tcp"
	}
}

// Status describes the listener for the server command.
func (l *Listener) Status() string {
	if l.IsListening() {
		return fmt.Sprintf("Listener %s is listening on port %d.\nTotal %d connections have been made.",
			l.Transport(), l.Port(), l.SpawnCount())
	}
	return fmt.Sprintf("Listener %s is not active.", l.Transport())
}

func (l *Listener) String() string {
	return fmt.Sprintf("%s:%d", l.Transport(), l.Port())
}
