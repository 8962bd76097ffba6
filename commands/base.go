package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/josephlewis42/ublush/core/interp"
	"golang.org/x/term"
)

// AllCommands holds every registered builtin.
var AllCommands = interp.NewRegistry()

// addCmd registers fn under names; the first name is canonical.
func addCmd(use, short string, fn interp.CommandFunc, names ...string) {
	AllCommands.MustAdd(&interp.CommandEntry{
		Names:   names,
		Use:     use,
		Short:   short,
		Command: fn,
	})
}

// ListBuiltinCommands returns each registered command once, sorted by name.
func ListBuiltinCommands() []*interp.CommandEntry {
	return AllCommands.Entries()
}

// parseDashCommands consumes leading dash commands, handing each to handle.
// handle returns false for a dash command it doesn't know. The result is
// Failure if any dash command was unknown.
func parseDashCommands(call *interp.Call, args *interp.ArgArray, handle func(dc string) bool) interp.Result {
	for args.HasDashCommand() {
		dc := args.ParseDashCommand()
		if dc == "-to" {
			call.SetDestFromArgs(args)
			continue
		}
		if !handle(dc) {
			call.UnknownDashCommand(dc)
		}
	}
	if call.HavingUnknownDashCommand() {
		return interp.Failure
	}
	return interp.Success
}

// nextValue takes the head as a value: a tuple's or popped value keeps its
// type, anything else becomes a string.
func nextValue(args *interp.ArgArray) (interface{}, bool) {
	if args.IsNextTupleNameOrPop() {
		t := args.NextTupleOrPop()
		if t == nil {
			return nil, false
		}
		return t.Value(), true
	}
	s, ok := args.NextMaybeQuotationTuplePopString()
	return s, ok
}

// isTrue reports whether v is the boolean true or its text.
func isTrue(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

// ColorPrinter colors output when asked to, or when writing to a terminal.
type ColorPrinter struct {
	Mode string
	W    io.Writer
}

// ShouldColor reports whether output should be colored.
func (c *ColorPrinter) ShouldColor() bool {
	switch c.Mode {
	case colorNever:
		return false
	case colorAlways:
		return true
	default:
		if color.NoColor {
			return false
		}
		fd, ok := c.W.(*os.File)
		return ok && term.IsTerminal(int(fd.Fd()))
	}
}

func (c *ColorPrinter) Sprintf(col *color.Color, format string, a ...interface{}) string {
	if !c.ShouldColor() {
		return fmt.Sprintf(format, a...)
	}
	// The color package only checks os.Stdout, so force it on for W.
	forced := *col
	forced.EnableColor()
	return forced.Sprintf(format, a...)
}
