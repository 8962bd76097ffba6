package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		expected Kind
	}{
		{"@foo", Tuple},
		{"@", Tuple},
		{"http://x", URL},
		{"https://example.com/post", URL},
		{"NULL:", Null},
		{"STD:", Std},
		{"ERR:", Err},
		{"~", Lifo},
		{"anything_else", File},
		{"", File},
		{"/tmp/out.txt", File},
		{"std:", File},
		{"~/notes.txt", File},
		{"STD:log.txt", File},
		{"NULL:x", File},
		{"ERR:out", File},
		// Tuple prefix beats every later rule.
		{"@http://x", Tuple},
		{"@~", Tuple},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual := Classify(tc.name)

			assert.Equal(t, DataSink{tc.expected, tc.name}, actual)
			// Classification is idempotent.
			assert.Equal(t, actual, Classify(actual.Name))
		})
	}
}

func TestFileFromValue(t *testing.T) {
	assert.Equal(t, DataSink{File, "report.txt"}, FileFromValue("report.txt"))
	assert.Equal(t, DataSink{File, "42"}, FileFromValue(42))
	assert.Equal(t, DataSink{File, "<nil>"}, FileFromValue(nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "LIFO", Lifo.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, "STD:STD:", Standard().String())
}
