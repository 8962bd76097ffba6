package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/josephlewis42/ublush/core/config"
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLauncher(t *testing.T) {
	cases := map[string]struct {
		args     []string
		expected launcher
	}{
		"empty": {
			args:     nil,
			expected: launcher{},
		},
		"command line": {
			args:     []string{"put", "hello"},
			expected: launcher{line: []string{"put", "hello"}},
		},
		"includes": {
			args:     []string{"-i", "a.ublu", "-ib.ublu"},
			expected: launcher{includes: []string{"a.ublu", "b.ublu"}},
		},
		"silent gives back its argument": {
			args:     []string{"-s", "put", "hi"},
			expected: launcher{silent: true, line: []string{"put", "hi"}},
		},
		"silent before option": {
			args:     []string{"-s", "-c", "conf"},
			expected: launcher{silent: true, configDir: "conf"},
		},
		"double dash ends options": {
			args:     []string{"-i", "a.ublu", "--", "-x"},
			expected: launcher{includes: []string{"a.ublu"}, line: []string{"-x"}},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			actual, err := parseLauncher(tc.args)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, *actual)
		})
	}
}

func TestParseLauncher_errors(t *testing.T) {
	for _, args := range [][]string{
		{"-q"},
		{"-i"},
		{"-c"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := parseLauncher(args)
			assert.Error(t, err)
		})
	}
}

func TestLauncher_run(t *testing.T) {
	cases := map[string]struct {
		launcher launcher
		stdin    string
		expected string
		code     int
	}{
		"command line": {
			launcher: launcher{line: []string{"put", "hello"}},
			expected: "hello\n",
		},
		"interactive": {
			stdin:    "put one\nput two\n",
			expected: "one\ntwo\n",
		},
		"exit code": {
			launcher: launcher{line: []string{"exit", "-rc", "4"}},
			code:     4,
		},
		"failure": {
			launcher: launcher{line: []string{"nosuchcommand"}},
			code:     int(interp.Failure),
		},
		"missing include": {
			launcher: launcher{includes: []string{"does-not-exist.ublu"}},
			code:     int(interp.Failure),
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := config.Default()
			cfg.HistoryFile = ""

			var out, errOut bytes.Buffer
			in := newInterpreter(cfg, strings.NewReader(tc.stdin), &out, &errOut)

			code := tc.launcher.run(in)

			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.expected, out.String())
		})
	}
}
