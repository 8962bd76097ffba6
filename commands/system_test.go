package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	cases := map[string]struct {
		lines    []string
		expected string
		logs     string
	}{
		"quotation": {
			lines:    []string{"system ${ echo hello world }$"},
			expected: "hello world\n",
		},
		"shell quoting": {
			lines:    []string{`system ${ echo "a   b" 'c' }$`},
			expected: "a b c\n",
		},
		"from tuple": {
			lines:    []string{"put -to @cmd ${ echo tuple }$", "system -from @cmd"},
			expected: "tuple\n",
		},
		"exit code is logged": {
			lines:    []string{"system false"},
			expected: "\n",
			logs:     "false exited with code 1",
		},
		"missing program": {
			lines: []string{"system ${ no-such-program-here }$"},
			logs:  "Error executing system command",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env := newTestEnv(t, tc.lines)
			env.run()

			assert.Equal(t, tc.expected, env.out.String())
			assert.Contains(t, env.logs.String(), tc.logs)
		})
	}
}
