package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
)

func ExampleEval() {
	in := interp.New(AllCommands, interp.WithIO(nil, os.Stdout, os.Stdout))
	in.RunLine("eval -to @x * 6 7 put @x")

	// Output: 42
}

func TestAllCommands(t *testing.T) {
	for _, cmdEntry := range ListBuiltinCommands() {
		t.Run(strings.Join(cmdEntry.Names, ","), func(t *testing.T) {
			if cmdEntry.Command == nil {
				t.Fatal("nil command", cmdEntry.Names)
			}
			if cmdEntry.Use == "" || cmdEntry.Short == "" {
				t.Fatal("missing help", cmdEntry.Names)
			}
		})
	}
}

// testEnv is an interpreter over AllCommands with captured output and logs
// and an in-memory filesystem.
type testEnv struct {
	in   *interp.Interpreter
	out  *bytes.Buffer
	logs *bytes.Buffer
	fs   afero.Fs
}

func newTestEnv(t *testing.T, lines []string, opts ...interp.Option) *testEnv {
	t.Helper()

	env := &testEnv{
		out:  &bytes.Buffer{},
		logs: &bytes.Buffer{},
		fs:   afero.NewMemMapFs(),
	}
	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	base := []interp.Option{
		interp.WithIO(input, env.out, env.out),
		interp.WithFs(env.fs),
		interp.WithLogger(logger.New(env.logs).WithFlags(0)),
	}
	env.in = interp.New(AllCommands, append(base, opts...)...)
	return env
}

// run interprets every line and returns the exit code.
func (e *testEnv) run() int {
	return e.in.Interpret()
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	// Lines are read by the interpreter one at a time.
	Lines []string
}

func (gts goldenTestSuite) Run(t *testing.T) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			env := newTestEnv(t, tc.Lines)
			env.run()

			g.Assert(t, tn, env.out.Bytes())
		})
	}
}
