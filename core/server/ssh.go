package server

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"net"
	"sync/atomic"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/ublush/core/console"
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	gossh "golang.org/x/crypto/ssh"
)

// SSHConfig configures the SSH transport.
type SSHConfig struct {
	// HostKeyFile is a PEM private key. When empty an ephemeral ed25519 key
	// is generated per listener.
	HostKeyFile string
	// Passwords accepted for any user. When empty no authentication is
	// required.
	Passwords []string

	server *ssh.Server
}

func (l *Listener) sshServer() (*ssh.Server, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := l.sshConfig
	if cfg.server != nil {
		return cfg.server, nil
	}

	// HandleConn skips the handler defaults that Serve would install.
	srv := &ssh.Server{
		Handler:           l.handleSSHSession,
		ChannelHandlers:   map[string]ssh.ChannelHandler{},
		RequestHandlers:   map[string]ssh.RequestHandler{},
		SubsystemHandlers: map[string]ssh.SubsystemHandler{},
	}
	for k, v := range ssh.DefaultChannelHandlers {
		srv.ChannelHandlers[k] = v
	}
	for k, v := range ssh.DefaultRequestHandlers {
		srv.RequestHandlers[k] = v
	}
	for k, v := range ssh.DefaultSubsystemHandlers {
		srv.SubsystemHandlers[k] = v
	}

	if len(cfg.Passwords) > 0 {
		srv.PasswordHandler = func(ctx ssh.Context, password string) bool {
			for _, p := range cfg.Passwords {
				if subtle.ConstantTimeCompare([]byte(password), []byte(p)) == 1 {
					return true
				}
			}
			return false
		}
	}

	if cfg.HostKeyFile != "" {
		if err := srv.SetOption(ssh.HostKeyFile(cfg.HostKeyFile)); err != nil {
			return nil, err
		}
	} else {
		signer, err := ephemeralSigner()
		if err != nil {
			return nil, err
		}
		srv.AddHostKey(signer)
	}

	cfg.server = srv
	return srv, nil
}

func ephemeralSigner() (gossh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return gossh.NewSignerFromKey(priv)
}

// serveSSH runs the SSH protocol on conn until the client disconnects.
func (l *Listener) serveSSH(conn net.Conn) {
	srv, err := l.sshServer()
	if err != nil {
		l.log.Severe("Could not configure SSH server: %v", err)
		conn.Close()
		return
	}
	srv.HandleConn(conn)
}

func (l *Listener) handleSSHSession(s ssh.Session) {
	events := l.events.NewSession()
	events.Record(&logger.SessionOpen{
		RemoteAddr: s.RemoteAddr().String(),
		Transport:  "ssh",
		User:       s.User(),
	})

	var opts []interp.Option
	if pty, winch, isPty := s.Pty(); isPty {
		width := int32(pty.Window.Width)
		go func() {
			for window := range winch {
				atomic.StoreInt32(&width, int32(window.Width))
			}
		}()

		c, err := console.New(console.Config{
			Stdin:      s,
			Stdout:     s,
			Stderr:     s.Stderr(),
			IsTerminal: func() bool { return true },
			Width:      func() int { return int(atomic.LoadInt32(&width)) },
			Remote:     true,
		})
		if err != nil {
			l.log.Warning("SSH session for %s: no line editor: %v", s.User(), err)
		} else {
			defer c.Close()
			opts = append(opts,
				interp.WithLineReader(c),
				interp.WithPrompt(interp.DefaultPrompt, true))
		}
	}

	lastReturn := l.runSession(s, s, events, opts...)
	events.Record(&logger.SessionClose{LastReturn: lastReturn})

	if err := s.Exit(lastReturn); err != nil {
		l.log.Info("SSH session for %s: exit: %v", s.User(), err)
	}
}
