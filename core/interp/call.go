package interp

import (
	"fmt"

	"github.com/josephlewis42/ublush/core/logger"
	"github.com/josephlewis42/ublush/core/sink"
)

// Call is the state of one command invocation: the interpreter, the
// command's name and its input and output sinks, which start as STD.
type Call struct {
	Name  string
	In    *Interpreter
	Entry *CommandEntry

	Dest sink.DataSink
	Src  sink.DataSink

	unknownDashCommands []string
}

func newCall(in *Interpreter, name string, e *CommandEntry) *Call {
	return &Call{
		Name:  name,
		In:    in,
		Entry: e,
		Dest:  sink.Standard(),
		Src:   sink.Standard(),
	}
}

// NewCall creates a Call outside the dispatch loop, e.g. for tests.
func NewCall(in *Interpreter, name string) *Call {
	e, _ := in.commands.Get(name)
	return newCall(in, name, e)
}

// Log returns the interpreter's logger.
func (c *Call) Log() *logger.Logger {
	return c.In.log
}

// Failf logs a severe message attributed to the command and returns Failure.
func (c *Call) Failf(format string, args ...interface{}) Result {
	c.In.log.Severe("%s in %s", fmt.Sprintf(format, args...), c.Name)
	return Failure
}

// UnknownDashCommand records an unrecognized dash command.
func (c *Call) UnknownDashCommand(dashCommand string) {
	c.In.log.Severe("Unknown dash-command %s in %s", dashCommand, c.Name)
	c.unknownDashCommands = append(c.unknownDashCommands, dashCommand)
}

// HavingUnknownDashCommand reports whether any dash command was unknown.
func (c *Call) HavingUnknownDashCommand() bool {
	return len(c.unknownDashCommands) > 0
}

// SetDestFromArgs classifies the next token as the output sink.
func (c *Call) SetDestFromArgs(args *ArgArray) {
	c.Dest = sink.Classify(args.NextString())
}

// SetSrcFromArgs classifies the next token as the input sink.
func (c *Call) SetSrcFromArgs(args *ArgArray) {
	c.Src = sink.Classify(args.NextString())
}

// Put writes v to the call's destination with a trailing newline.
func (c *Call) Put(v interface{}) error {
	return c.In.Put(v, c.Dest, PutOptions{Newline: true})
}

// PutWith writes v to the call's destination.
func (c *Call) PutWith(v interface{}, opts PutOptions) error {
	return c.In.Put(v, c.Dest, opts)
}

// PutOrFail writes v and converts an error into a logged Failure.
func (c *Call) PutOrFail(v interface{}) Result {
	if err := c.Put(v); err != nil {
		return c.Failf("Could not put to %s: %v", c.Dest, err)
	}
	return Success
}

// Get reads a value from the call's source.
func (c *Call) Get() (interface{}, error) {
	return c.In.Get(c.Src)
}

// Usage returns the command's usage line.
func (c *Call) Usage() string {
	if c.Entry == nil {
		return c.Name
	}
	return c.Entry.Use
}
