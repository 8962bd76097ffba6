package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory(t *testing.T) {
	goldenTestSuite{
		"replay": {Lines: []string{
			"history -on",
			"put one",
			"history -show",
			"history -do 2",
			"history -tail 1",
			"history -do 2 -change one two",
			"history -name",
			"history -range 2 3",
			"history -head 1",
		}},
	}.Run(t)
}

func TestHistory_off(t *testing.T) {
	env := newTestEnv(t, []string{"history -on", "history -off", "history -show"})
	env.run()

	assert.Nil(t, env.in.History())
	assert.Contains(t, env.logs.String(), "History is not enabled")
}

func TestHistory_onfile(t *testing.T) {
	env := newTestEnv(t, []string{"history -onfile my.hist", "put x"})
	env.run()

	lines, err := env.in.History().Lines()
	assert.NoError(t, err)
	assert.Equal(t, []string{"history -onfile my.hist", "put x"}, lines)
	assert.Equal(t, "my.hist", env.in.History().Name())
}

func TestHistory_noLine(t *testing.T) {
	env := newTestEnv(t, []string{"history -on", "history -do 9"})
	env.run()

	assert.Contains(t, env.logs.String(), "No history line 9")
}
