package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ReadLine(t *testing.T) {
	var out bytes.Buffer
	c, err := New(Config{
		Stdin:      strings.NewReader("put hello\nbye\n"),
		Stdout:     &out,
		Stderr:     &out,
		IsTerminal: func() bool { return false },
		Width:      func() int { return 80 },
	})
	require.NoError(t, err)
	defer c.Close()

	line, err := c.ReadLine("> ")
	assert.NoError(t, err)
	assert.Equal(t, "put hello", line)

	line, err = c.ReadLine("> ")
	assert.NoError(t, err)
	assert.Equal(t, "bye", line)
}
