package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifo(t *testing.T) {
	push := []string{"put -to ~ 1", "put -to ~ 2", "put -to ~ 3"}

	goldenTestSuite{
		"show":  {Lines: append(push, "lifo -show")},
		"swap":  {Lines: append(push, "lifo -swap -show")},
		"over":  {Lines: append(push, "lifo -over -show")},
		"rot":   {Lines: append(push, "lifo -rot -show")},
		"drop":  {Lines: append(push, "lifo -drop -show")},
		"dup":   {Lines: append(push, "lifo -dup -show")},
		"pick":  {Lines: append(push, "lifo -pick 2 -show")},
		"depth": {Lines: append(push, "lifo -depth")},
		"clear": {Lines: append(push, "lifo -clear -show")},
		"popval": {Lines: append(push,
			"lifo -popval",
			"lifo -show",
		)},
		"push-aliases": {Lines: []string{
			"put -to @t x",
			"lifo -push @t",
			"put -to @t y",
			"lifo -show",
			"lifo -popval",
		}},
	}.Run(t)
}

func TestLifo_popEmpty(t *testing.T) {
	env := newTestEnv(t, []string{"lifo -pop", "put after"})
	env.run()

	assert.Equal(t, "after\n", env.out.String())
	assert.Contains(t, env.logs.String(), "SEVERE")
}
