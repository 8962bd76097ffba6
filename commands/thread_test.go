package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThread(t *testing.T) {
	env := newTestEnv(t, []string{
		"thread -to @t -start $[ put hi ]$",
		"@t -wait",
		"@t -status",
	})
	env.run()

	assert.Equal(t, "hi\ndone SUCCESS\n", env.out.String())
}

func TestThread_lifecycle(t *testing.T) {
	env := newTestEnv(t, []string{
		"thread -to @t $[ put -to @shared set ]$",
		"@t -status",
		"@t -start",
		"@t -wait",
		"@t -start",
	})
	env.run()

	assert.Equal(t, "new\n", env.out.String()[:4])
	assert.Contains(t, env.logs.String(), errThreadStarted.Error())

	// Private scope by default.
	_, ok := env.in.GetTuple("@shared")
	assert.False(t, ok)
}

func TestThread_share(t *testing.T) {
	env := newTestEnv(t, []string{
		"thread -share -to @t -start $[ put -to @shared set ]$",
		"@t -wait",
		"put @shared",
	})
	env.run()

	assert.Equal(t, "set\n", env.out.String())
}

func TestNewThread(t *testing.T) {
	env := newTestEnv(t, nil)
	th := NewThread(env.in, "put -n x", false)

	assert.Equal(t, "new", th.Status())
	assert.Equal(t, "thread", th.AutonomeCommand())
	assert.NoError(t, th.Start())
	assert.Equal(t, "SUCCESS", th.Wait().String())
	assert.Equal(t, "thread[done SUCCESS]", th.String())
	assert.Equal(t, "x", env.out.String())
}
