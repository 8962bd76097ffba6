package commands

import (
	"testing"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	goldenTestSuite{
		"block": {Lines: []string{"interpret -block $[ put inner ]$", "put outer"}},
		"nested-until-bye": {Lines: []string{
			"interpret",
			"put -to @x nested",
			"bye",
			"put @x",
		}},
		"state": {Lines: []string{"interpreter"}},
	}.Run(t)
}

func TestInterpreter_new(t *testing.T) {
	env := newTestEnv(t, []string{
		"interpreter -to @child -new",
		"put -to @x parent",
		"interpret -- @child -block $[ put -to @x child ]$",
	})
	env.run()

	x, ok := env.in.GetTuple("@x")
	assert.True(t, ok)
	assert.Equal(t, "parent", x.Value())

	child, ok := env.in.GetTuple("@child")
	assert.True(t, ok)
	in, ok := child.Value().(*interp.Interpreter)
	assert.True(t, ok)
	cx, ok := in.GetTuple("@x")
	assert.True(t, ok)
	assert.Equal(t, "child", cx.Value())
}
