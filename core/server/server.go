package server

import (
	"crypto/tls"
	"io"
	"net"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	"github.com/josephlewis42/ublush/core/ttylog"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
)

type closeReader interface {
	CloseRead() error
}

type closeWriter interface {
	CloseWrite() error
}

// handle runs one accepted connection to completion.
func (l *Listener) handle(conn net.Conn, id uint64) {
	if l.sshConfig != nil {
		l.serveSSH(conn)
		return
	}

	transport := "tcp"
	if l.tlsConfig != nil {
		conn = tls.Server(conn, l.tlsConfig)
		transport = "tls"
	}

	events := l.events.NewSession()
	events.Record(&logger.SessionOpen{
		RemoteAddr: conn.RemoteAddr().String(),
		Transport:  transport,
	})

	lastReturn := l.runSession(conn, conn, events)
	events.Record(&logger.SessionClose{LastReturn: lastReturn})

	l.closeConn(conn, id)
}

// closeConn shuts input, then output, then the connection itself. Failures
// are logged and otherwise ignored.
func (l *Listener) closeConn(conn net.Conn, id uint64) {
	if cr, ok := conn.(closeReader); ok {
		if err := cr.CloseRead(); err != nil {
			l.log.Info("Session %d: closing input: %v", id, err)
		}
	}
	if cw, ok := conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			l.log.Info("Session %d: closing output: %v", id, err)
		}
	}
	if err := conn.Close(); err != nil {
		l.log.Warning("Session %d: closing socket: %v", id, err)
	}
}

// runSession builds an interpreter over r and w, then either runs the fixed
// block once or interprets lines until goodbye or end of input. A failing
// line doesn't end the session. It returns the interpreter's exit code.
func (l *Listener) runSession(r io.Reader, w io.Writer, events *logger.SessionLog, extra ...interp.Option) int {
	if l.recordings != nil {
		f, err := l.recordings(events.ID())
		if err != nil {
			l.log.Warning("Session %s: not recording: %v", events.ID(), err)
		} else {
			defer f.Close()
			rec := ttylog.NewRecorder(ttylog.NewAsciicastLogSink(f, "session "+events.ID()))
			rec.OnError = func(err error) {
				l.log.Warning("Session %s: recording: %v", events.ID(), err)
			}
			r, w = rec.Reader(r), rec.Writer(w)
		}
	}
	if l.rateLimit > 0 {
		bucket := ratelimit.NewBucketWithRate(float64(l.rateLimit), l.rateLimit)
		w = ratelimit.Writer(w, bucket)
	}

	in := l.newInterpreter(r, w, events, extra...)
	if l.block != "" {
		in.RunLine(l.block)
		return in.ExitCode()
	}
	return in.Interpret()
}

func (l *Listener) newInterpreter(r io.Reader, w io.Writer, events *logger.SessionLog, extra ...interp.Option) *interp.Interpreter {
	opts := append([]interp.Option{
		interp.WithIO(r, w, w),
		interp.WithEvents(events),
		interp.WithPrompt(interp.DefaultPrompt, false),
	}, extra...)
	if l.sandbox {
		opts = append(opts, interp.WithFs(sandboxFs(l.parent.Fs())))
	}

	switch l.policy {
	case Shared:
		return l.parent.Spawn(true, opts...)
	case Chained:
		return l.parent.Spawn(false, append(opts, interp.WithScopeMode(l.mode))...)
	default:
		p := l.parent
		return interp.New(p.Commands(), append([]interp.Option{
			interp.WithFs(p.Fs()),
			interp.WithLogger(p.Logger()),
			interp.WithIntroducers(p.Introducers()),
			interp.WithScopeMode(l.mode),
		}, opts...)...)
	}
}

// sandboxFs layers a private in-memory filesystem over base. Sessions read
// base but their writes vanish when the session ends.
func sandboxFs(base afero.Fs) afero.Fs {
	return afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(base), afero.NewMemMapFs())
}
