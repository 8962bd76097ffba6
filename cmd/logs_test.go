package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayRecording(t *testing.T) {
	cast := strings.Join([]string{
		`{"version":2,"width":80,"height":24}`,
		`[0.0, "i", "put hello\n"]`,
		`[0.5, "o", "hello\n"]`,
		`[0.75, "i", "bye\n"]`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, playRecording(strings.NewReader(cast), &out, 0))
	assert.Equal(t, "hello\n", out.String())
}
