package interp

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop(t *testing.T) {
	cases := map[string]struct {
		line       string
		wantResult Result
		wantOut    string
		wantLog    string
	}{
		"set-then-print": {
			line:       "set @x 5 print @x",
			wantResult: Success,
			wantOut:    "5\n",
		},
		"alias": {
			line:       "p hello",
			wantResult: Success,
			wantOut:    "hello\n",
		},
		"quotation": {
			line:       "print ${ two words }$",
			wantResult: Success,
			wantOut:    "two words\n",
		},
		"not-found": {
			line:       "nope print hi",
			wantResult: Failure,
			wantLog:    `Command "nope" not found.`,
		},
		"failure-short-circuits": {
			line:       "print a fail print b",
			wantResult: Failure,
			wantOut:    "a\n",
		},
		"panic-is-failure": {
			line:       "boom print after",
			wantResult: Failure,
			wantLog:    `Command "boom" threw exception: kaboom`,
		},
		"bye-stops": {
			line:       "print a bye print b",
			wantResult: Success,
			wantOut:    "a\n",
		},
		"unbound-head-tuple": {
			line:       "@nothing print a",
			wantResult: Failure,
			wantLog:    "non-autonomized tuple or pop @nothing",
		},
		"empty-pop": {
			line:       "~ print a",
			wantResult: Failure,
			wantLog:    "non-autonomized tuple or pop ~",
		},
		"empty-line": {
			line:       "   ",
			wantResult: Success,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env := newTestEnv(t, "")
			result := env.in.RunLine(tc.line)

			assert.Equal(t, tc.wantResult, result)
			assert.Equal(t, tc.wantOut, env.stdout.String())
			if tc.wantLog != "" {
				assert.Contains(t, env.log.String(), tc.wantLog)
			}
			assert.Equal(t, int(tc.wantResult), env.in.LastReturn())
		})
	}
}

func TestLoop_recoversAfterPanic(t *testing.T) {
	env := newTestEnv(t, "")
	assert.Equal(t, Failure, env.in.RunLine("boom"))
	assert.Equal(t, Success, env.in.RunLine("print ok"))
	assert.Equal(t, "ok\n", env.stdout.String())
}

func TestLoop_autonomize(t *testing.T) {
	t.Run("autonomic", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.in.SetTuple("@d", &autonomicValue{label: "thing"})

		assert.Equal(t, Success, env.in.RunLine("@d"))
		assert.Equal(t, "auto:thing\n", env.stdout.String())
	})

	t.Run("autonomic-pop", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.in.Stack().PushValue(&autonomicValue{label: "stacked"})

		assert.Equal(t, Success, env.in.RunLine("~"))
		assert.Equal(t, "auto:stacked\n", env.stdout.String())
		assert.Equal(t, 0, env.in.Stack().Depth())
	})

	t.Run("plain-value", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.in.SetTuple("@cmd", "print")

		assert.Equal(t, Success, env.in.RunLine("@cmd hello"))
		assert.Equal(t, "hello\n", env.stdout.String())
	})
}

func TestLoop_functors(t *testing.T) {
	newEnv := func(t *testing.T) *testEnv {
		env := newTestEnv(t, "")
		env.in.Functors().Put(&Functor{Name: "greet", Params: []string{"who"}, Body: "print @@who"})
		env.in.Functors().Put(&Functor{Name: "setter", Params: []string{"out"}, Body: "set @@out done"})
		env.in.Functors().Put(&Functor{Name: "early", Params: []string{}, Body: "print a ret print b"})
		return env
	}

	cases := map[string]struct {
		line       string
		wantResult Result
		wantOut    string
		wantLog    string
	}{
		"tuple-arg": {
			line:       "set @n bob greet ( @n )",
			wantResult: Success,
			wantOut:    "bob\n",
		},
		"literal-arg": {
			line:       "greet ( alice )",
			wantResult: Success,
			wantOut:    "alice\n",
		},
		"writes-through-to-caller": {
			line:       "setter ( @r ) print @r",
			wantResult: Success,
			wantOut:    "done\n",
		},
		"arity-mismatch": {
			line:       "greet ( )",
			wantResult: Failure,
			wantLog:    "expects 1 parameters but was given 0",
		},
		"missing-param-list": {
			line:       "greet alice",
			wantResult: Failure,
			wantLog:    "Found function greet but could not execute it",
		},
		"return-unwinds-functor-only": {
			line:       "early ( ) print c",
			wantResult: Success,
			wantOut:    "a\nc\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env := newEnv(t)
			assert.Equal(t, tc.wantResult, env.in.RunLine(tc.line))
			assert.Equal(t, tc.wantOut, env.stdout.String())
			if tc.wantLog != "" {
				assert.Contains(t, env.log.String(), tc.wantLog)
			}
			assert.Equal(t, 0, env.in.Tuples().LocalDepth())
			assert.False(t, env.in.IsBreakIssued())
		})
	}
}

func TestLoop_builtinShadowsFunctor(t *testing.T) {
	env := newTestEnv(t, "")
	env.in.Functors().Put(&Functor{Name: "print", Params: []string{}, Body: "fail"})

	assert.Equal(t, Builtin, env.in.Resolve("print").Kind)
	assert.Equal(t, NotFound, env.in.Resolve("absent").Kind)
	assert.Equal(t, Success, env.in.RunLine("print x"))
}

func TestExecuteLoopBody_break(t *testing.T) {
	env := newTestEnv(t, "")

	result, cont := env.in.ExecuteLoopBody("print a brk print b")
	assert.Equal(t, Success, result)
	assert.False(t, cont)
	assert.Equal(t, "a\n", env.stdout.String())
	assert.False(t, env.in.IsBreakIssued())

	result, cont = env.in.ExecuteLoopBody("print c")
	assert.Equal(t, Success, result)
	assert.True(t, cont)
}

func TestSpawn_scopeSharing(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		env := newTestEnv(t, "")
		child := env.in.Spawn(true)
		require.Equal(t, Success, child.RunLine("set @x fromchild"))

		x, ok := env.in.GetTuple("@x")
		require.True(t, ok)
		assert.Equal(t, "fromchild", x.Value())
	})

	t.Run("private", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.in.SetTuple("@x", "parent")
		child := env.in.Spawn(false)

		_, ok := child.GetTuple("@x")
		assert.False(t, ok)

		require.Equal(t, Success, child.RunLine("set @x child"))
		x, _ := env.in.GetTuple("@x")
		assert.Equal(t, "parent", x.Value())
	})

	t.Run("consts-inherited", func(t *testing.T) {
		env := newTestEnv(t, "")
		require.NoError(t, env.in.Consts().Define("*k", "v"))
		child := env.in.Spawn(false)

		require.Equal(t, Success, child.RunLine("print *k"))
		assert.Equal(t, "v\n", env.stdout.String())
		assert.Same(t, env.in, child.Parent())
	})
}

type failingHistory struct{}

func (failingHistory) Append(string) error      { return errors.New("disk full") }
func (failingHistory) Lines() ([]string, error) { return nil, nil }
func (failingHistory) Name() string             { return "broken.history" }

func TestLoop_history(t *testing.T) {
	t.Run("written", func(t *testing.T) {
		env := newTestEnv(t, "")
		h := NewFileHistory(env.fs, "/h")
		env.in = New(testRegistry(), WithFs(env.fs), WithHistory(h))

		env.in.RunLine("print   one")
		env.in.RunLine("")
		env.in.RunLine("nope")

		lines, err := h.Lines()
		require.NoError(t, err)
		assert.Equal(t, []string{"print one", "nope"}, lines)
	})

	t.Run("failure-is-a-warning", func(t *testing.T) {
		env := newTestEnv(t, "", WithHistory(failingHistory{}))

		assert.Equal(t, Success, env.in.RunLine("print x"))
		assert.Contains(t, env.log.String(), "WARNING: Couldn't write to history file broken.history")
	})
}

func TestInterpret(t *testing.T) {
	env := newTestEnv(t, "print one\nfail\nprint two\n")

	code := env.in.Interpret()
	assert.Equal(t, 0, code)
	assert.Equal(t, "one\ntwo\n", env.stdout.String())
	assert.True(t, env.in.IsGoodbye())
}

func TestInterpret_exitCode(t *testing.T) {
	env := newTestEnv(t, "print one\nfail\n")
	assert.Equal(t, int(Failure), env.in.Interpret())

	env = newTestEnv(t, "print one\n")
	env.in.SetExitCode(7)
	assert.Equal(t, 7, env.in.ExitCode())
}

func TestInclude(t *testing.T) {
	t.Run("runs-lines", func(t *testing.T) {
		env := newTestEnv(t, "", WithEchoInclude(true))
		require.NoError(t, afero.WriteFile(env.fs, "/scripts/a.ub", []byte("set @x 1\n\nprint @x\n"), 0644))

		assert.Equal(t, Success, env.in.Include("/scripts/a.ub"))
		assert.Equal(t, "1\n", env.stdout.String())
		assert.Equal(t, ":: set @x 1\n:: \n:: print @x\n", env.stderr.String())
		assert.False(t, env.in.IsIncluding())
	})

	t.Run("stops-at-failure", func(t *testing.T) {
		env := newTestEnv(t, "")
		require.NoError(t, afero.WriteFile(env.fs, "/b.ub", []byte("print a\nnope\nprint b\n"), 0644))

		assert.Equal(t, Failure, env.in.Include("/b.ub"))
		assert.Equal(t, "a\n", env.stdout.String())
		assert.Contains(t, env.log.String(), "Include of /b.ub failed at line 2")
	})

	t.Run("block-spans-lines", func(t *testing.T) {
		env := newTestEnv(t, "")
		require.NoError(t, afero.WriteFile(env.fs, "/c.ub", []byte("print ${ multi\nline }$\n"), 0644))

		assert.Equal(t, Success, env.in.Include("/c.ub"))
		assert.Equal(t, "multi line\n", env.stdout.String())
	})

	t.Run("include-path", func(t *testing.T) {
		env := newTestEnv(t, "", WithIncludePath("/lib"))
		require.NoError(t, afero.WriteFile(env.fs, "/lib/util.ub", []byte("print util\n"), 0644))

		path, err := env.in.ResolveInclude("util.ub")
		require.NoError(t, err)
		assert.Equal(t, "/lib/util.ub", path)

		_, err = env.in.ResolveInclude("missing.ub")
		assert.Error(t, err)
	})

	t.Run("not-recorded-in-history", func(t *testing.T) {
		env := newTestEnv(t, "")
		h := NewFileHistory(env.fs, "/h")
		env.in = New(testRegistry(), WithFs(env.fs), WithHistory(h))
		require.NoError(t, afero.WriteFile(env.fs, "/d.ub", []byte("print a\n"), 0644))

		env.in.Include("/d.ub")
		lines, err := h.Lines()
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}
