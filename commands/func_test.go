package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunc(t *testing.T) {
	goldenTestSuite{
		"define-and-call": {Lines: []string{
			"FUNC greet ( who ) $[ put -n hello put @@who ]$",
			"put -to @name world",
			"greet ( @name )",
			"greet ( there )",
		}},
		"param-aliases-caller-tuple": {Lines: []string{
			"FUNC setit ( t ) $[ put -to @@t changed ]$",
			"put -to @v original",
			"setit ( @v )",
			"put @v",
		}},
		"list": {Lines: []string{
			"FUNC b ( x ) $[ put @@x ]$",
			"function a ( ) $[ put a ]$",
			"FUNC -list",
		}},
		"show-delete": {Lines: []string{
			"FUNC f ( ) $[ put f ]$",
			"FUNC -show f",
			"FUNC -delete f",
			"f ( )",
			"put gone",
		}},
		"fun-call": {Lines: []string{
			"FUN -to @f ( x ) $[ put @@x ]$",
			"put -to @v hello",
			"CALL @f ( @v )",
		}},
		"defun": {Lines: []string{
			"FUN -to @f ( x y ) $[ put -n @@x put @@y ]$",
			"defun join @f",
			"join ( a b )",
			"FUNC -show join",
		}},
	}.Run(t)
}

func TestFunc_wrongArity(t *testing.T) {
	env := newTestEnv(t, []string{
		"FUNC f ( a b ) $[ put @@a ]$",
		"f ( x )",
	})
	env.run()

	assert.Empty(t, env.out.String())
	assert.Contains(t, env.logs.String(), "expects 2 parameters but was given 1")
}
