package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDbug(t *testing.T) {
	goldenTestSuite{
		"breakpoint": {Lines: []string{
			"dbug -brk put",
			"dbug -dbug $[ put a put b ]$",
			"",
			"g",
			"dbug -info",
		}},
		"step-quit": {Lines: []string{
			"dbug -step -dbug $[ put a put b ]$",
			"q",
			"put after",
		}},
		"no-breakpoints": {Lines: []string{
			"dbug -dbug $[ put a put b ]$",
		}},
	}.Run(t)
}

func TestDbug_clearMissing(t *testing.T) {
	env := newTestEnv(t, []string{"dbug -clr nothing"})
	env.run()

	assert.Contains(t, env.logs.String(), "There was no breakpoint set for nothing")
}

func TestDbug_instance(t *testing.T) {
	env := newTestEnv(t, []string{
		"dbug -to @d -instance",
		"@d -brk put",
	})
	env.run()

	assert.Equal(t, []string{"put"}, env.in.Debugger().Breakpoints())
}
