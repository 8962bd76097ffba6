package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/josephlewis42/ublush/core/logger"
	"github.com/spf13/afero"
)

type autonomicValue struct {
	label string
}

func (a *autonomicValue) AutonomeCommand() string { return "auto" }

func (a *autonomicValue) String() string { return a.label }

// testRegistry holds a handful of minimal builtins for exercising the loop.
func testRegistry() *Registry {
	r := NewRegistry()

	r.MustAdd(&CommandEntry{
		Names: []string{"set"},
		Use:   "set @tuple value",
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			name := args.NextString()
			value, ok := args.NextMaybeQuotationTuplePopString()
			if !IsTupleName(name) || !ok {
				return args, call.Failf("bad set")
			}
			call.In.SetTuple(name, value)
			return args, Success
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"print", "p"},
		Use:   "print value",
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			value, ok := args.NextMaybeQuotationTuplePopString()
			if !ok {
				return args, call.Failf("nothing to print")
			}
			return args, call.PutOrFail(value)
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"fail"},
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			return args, Failure
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"boom"},
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			panic("kaboom")
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"brk"},
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			call.In.IssueBreak()
			return args, Success
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"ret"},
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			call.In.IssueReturn()
			return args, Success
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"auto"},
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			if args.NextString() != "--" {
				return args, call.Failf("expected --")
			}
			t := args.NextTupleOrPop()
			if t == nil {
				return args, call.Failf("no autonomic value")
			}
			return args, call.PutOrFail("auto:" + t.ValueString())
		}),
	})

	r.MustAdd(&CommandEntry{
		Names: []string{"bye"},
		Command: CommandFunc(func(call *Call, args *ArgArray) (*ArgArray, Result) {
			call.In.Goodbye()
			return args, Success
		}),
	})

	return r
}

type testEnv struct {
	in     *Interpreter
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	log    *bytes.Buffer
	fs     afero.Fs
}

func newTestEnv(t *testing.T, input string, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		log:    &bytes.Buffer{},
		fs:     afero.NewMemMapFs(),
	}
	base := []Option{
		WithIO(strings.NewReader(input), env.stdout, env.stderr),
		WithFs(env.fs),
		WithLogger(logger.New(env.log).WithFlags(0)),
	}
	env.in = New(testRegistry(), append(base, opts...)...)
	return env
}
