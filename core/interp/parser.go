package interp

import "strings"

// Split breaks a line into whitespace separated lexemes.
func Split(line string) []string {
	return strings.Fields(line)
}

// Parse splits a line into an ArgArray bound to the interpreter.
func (in *Interpreter) Parse(line string) *ArgArray {
	return NewArgArray(in, Split(line)...)
}
