package server

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	"github.com/josephlewis42/ublush/core/ttylog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
)

func testParent(opts ...interp.Option) *interp.Interpreter {
	r := interp.NewRegistry()
	r.MustAdd(&interp.CommandEntry{
		Names: []string{"echo"},
		Command: interp.CommandFunc(func(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
			s, ok := args.NextMaybeQuotationTuplePopString()
			if !ok {
				return args, interp.Failure
			}
			return args, call.PutOrFail(s)
		}),
	})
	r.MustAdd(&interp.CommandEntry{
		Names: []string{"setx"},
		Command: interp.CommandFunc(func(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
			call.In.SetTuple("@x", args.NextString())
			return args, interp.Success
		}),
	})
	r.MustAdd(&interp.CommandEntry{
		Names: []string{"bye"},
		Command: interp.CommandFunc(func(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
			call.In.Goodbye()
			return args, interp.Success
		}),
	})
	return interp.New(r, opts...)
}

func startListener(t *testing.T, parent *interp.Interpreter, opts ...Option) *Listener {
	t.Helper()

	base := []Option{
		WithAddress("127.0.0.1"),
		WithPort(0),
		WithAcceptTimeout(100 * time.Millisecond),
	}
	l := NewListener(parent, append(base, opts...)...)
	require.NoError(t, l.Start())
	t.Cleanup(l.Stop)
	return l
}

func dialAndRun(t *testing.T, l *Listener, input string) string {
	t.Helper()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(input))
	require.NoError(t, err)
	out, err := ioutil.ReadAll(conn)
	require.NoError(t, err)
	return string(out)
}

func TestListener_boundedShutdown(t *testing.T) {
	l := startListener(t, testParent())
	assert.True(t, l.IsListening())
	assert.Equal(t, fmt.Sprintf("Listener tcp is listening on port %d.\nTotal 0 connections have been made.", l.Port()), l.Status())

	start := time.Now()
	l.Stop()
	assert.Less(t, int64(time.Since(start)), int64(300*time.Millisecond))

	select {
	case <-l.Done():
	default:
		t.Fatal("accept loop still running after Stop")
	}
	assert.False(t, l.IsListening())
	assert.Equal(t, "Listener tcp is not active.", l.Status())

	// The socket is closed.
	_, err := net.DialTimeout("tcp", l.Addr().String(), 100*time.Millisecond)
	assert.Error(t, err)
}

func TestListener_startTwice(t *testing.T) {
	l := startListener(t, testParent())
	assert.ErrorIs(t, l.Start(), ErrAlreadyListening)
	assert.Equal(t, "server", l.AutonomeCommand())
}

func TestListener_sessions(t *testing.T) {
	cases := map[string]struct {
		opts  []Option
		input string
		want  string
	}{
		"lines-until-goodbye": {
			input: "echo hello\necho world\nbye\n",
			want:  "hello\nworld\n",
		},
		"failure-keeps-session-open": {
			input: "nope\necho after\nbye\n",
			want:  "after\n",
		},
		"quotation": {
			input: "echo ${ a b }$\nbye\n",
			want:  "a b\n",
		},
		"fixed-block": {
			opts:  []Option{WithBlock("echo fixed echo twice")},
			input: "",
			want:  "fixed\ntwice\n",
		},
		"rate-limited": {
			opts:  []Option{WithRateLimit(1 << 20)},
			input: "echo slow\nbye\n",
			want:  "slow\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			l := startListener(t, testParent(), tc.opts...)
			assert.Equal(t, tc.want, dialAndRun(t, l, tc.input))
			assert.Equal(t, uint64(1), l.SpawnCount())
		})
	}
}

func TestListener_endOfInputEndsSession(t *testing.T) {
	l := startListener(t, testParent())

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("echo once\n"))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	out, err := ioutil.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "once\n", string(out))
}

func TestListener_scopePolicy(t *testing.T) {
	cases := map[string]struct {
		policy      ScopePolicy
		wantVisible bool
	}{
		"standalone": {policy: Standalone, wantVisible: false},
		"chained":    {policy: Chained, wantVisible: false},
		"shared":     {policy: Shared, wantVisible: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			parent := testParent(interp.WithScopeMode(interp.Guarded))
			l := startListener(t, parent, WithScopePolicy(tc.policy), WithScopeMode(interp.Guarded))

			dialAndRun(t, l, "setx fromsession\nbye\n")
			l.Stop()
			l.Wait()

			x, ok := parent.GetTuple("@x")
			assert.Equal(t, tc.wantVisible, ok)
			if ok {
				assert.Equal(t, "fromsession", x.Value())
			}
		})
	}
}

func TestListener_events(t *testing.T) {
	var buf bytes.Buffer
	l := startListener(t, testParent(), WithEventLog(logger.NewJSONLinesEventLog(&buf)))

	dialAndRun(t, l, "echo hi\nnope\nbye\n")
	l.Stop()
	l.Wait()

	raw := buf.String()
	assert.Contains(t, raw, `"transport":"tcp"`)

	report := &logger.Report{}
	require.NoError(t, logger.ReadJSONLinesLog(strings.NewReader(raw), report.Update))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("nope"))
	assert.Equal(t, 1, report.RunCommand.CommandNames.Count("echo"))
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestListener_recordings(t *testing.T) {
	var mu sync.Mutex
	casts := map[string]*bufferCloser{}
	open := func(id string) (io.WriteCloser, error) {
		mu.Lock()
		defer mu.Unlock()
		b := &bufferCloser{}
		casts[id] = b
		return b, nil
	}

	l := startListener(t, testParent(), WithRecordings(open))
	assert.Equal(t, "recorded\n", dialAndRun(t, l, "echo recorded\nbye\n"))
	l.Stop()
	l.Wait()

	require.Len(t, casts, 1)
	for id, cast := range casts {
		assert.True(t, cast.closed)

		var out bytes.Buffer
		require.NoError(t, ttylog.Replay(ttylog.NewAsciicastLogSource(&cast.Buffer), ttylog.NewClientOutput(&out)))
		assert.Equal(t, "recorded\n", out.String(), "session %s", id)
	}
}

func TestListener_recordingsUnavailable(t *testing.T) {
	open := func(string) (io.WriteCloser, error) {
		return nil, errors.New("read-only filesystem")
	}
	l := startListener(t, testParent(), WithRecordings(open))
	assert.Equal(t, "still served\n", dialAndRun(t, l, "echo ${ still served }$\nbye\n"))
}

func selfSignedConfig(t *testing.T) *tls.Config {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
	}
}

func TestListener_tls(t *testing.T) {
	l := startListener(t, testParent(), WithTLS(selfSignedConfig(t)))
	assert.Equal(t, "tls", l.Transport())

	conn, err := tls.Dial("tcp", l.Addr().String(), &tls.Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("echo secure\nbye\n"))
	require.NoError(t, err)
	out, err := ioutil.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "secure\n", string(out))
}

func TestListener_ssh(t *testing.T) {
	l := startListener(t, testParent(), WithSSH(&SSHConfig{Passwords: []string{"hunter2"}}))
	assert.Equal(t, "ssh", l.Transport())

	dial := func(password string) (*gossh.Client, error) {
		return gossh.Dial("tcp", l.Addr().String(), &gossh.ClientConfig{
			User:            "tester",
			Auth:            []gossh.AuthMethod{gossh.Password(password)},
			HostKeyCallback: gossh.InsecureIgnoreHostKey(),
			Timeout:         time.Second,
		})
	}

	t.Run("bad-password", func(t *testing.T) {
		_, err := dial("wrong")
		assert.Error(t, err)
	})

	t.Run("session", func(t *testing.T) {
		client, err := dial("hunter2")
		require.NoError(t, err)
		defer client.Close()

		sess, err := client.NewSession()
		require.NoError(t, err)
		defer sess.Close()

		sess.Stdin = strings.NewReader("echo via-ssh\nbye\n")
		out, err := sess.Output("")
		require.NoError(t, err)
		assert.Equal(t, "via-ssh\n", string(out))
	})
}

func TestListener_sandbox(t *testing.T) {
	cases := map[string]struct {
		sandbox   bool
		wantWrite bool
	}{
		"host-fs": {sandbox: false, wantWrite: true},
		"sandbox": {sandbox: true, wantWrite: false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "motd", []byte("welcome"), 0600))

			parent := testParent(interp.WithFs(fs))
			parent.Commands().MustAdd(&interp.CommandEntry{
				Names: []string{"touch"},
				Command: interp.CommandFunc(func(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
					motd, err := afero.ReadFile(call.In.Fs(), "motd")
					if err != nil {
						return args, interp.Failure
					}
					if err := afero.WriteFile(call.In.Fs(), args.NextString(), motd, 0600); err != nil {
						return args, interp.Failure
					}
					return args, call.PutOrFail("ok")
				}),
			})

			l := startListener(t, parent, WithSandbox(tc.sandbox))
			assert.Equal(t, "ok\n", dialAndRun(t, l, "touch copy\nbye\n"))
			l.Stop()
			l.Wait()

			ok, err := afero.Exists(fs, "copy")
			require.NoError(t, err)
			assert.Equal(t, tc.wantWrite, ok)
		})
	}
}

func TestListener_sshServerHandlers(t *testing.T) {
	l := NewListener(testParent(), WithSSH(&SSHConfig{}))
	srv, err := l.sshServer()
	require.NoError(t, err)
	assert.Contains(t, srv.ChannelHandlers, "session")

	again, err := l.sshServer()
	require.NoError(t, err)
	assert.Same(t, srv, again)
}
