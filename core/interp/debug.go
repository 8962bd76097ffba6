package interp

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// BreakHook is consulted by the loop before each command.
type BreakHook interface {
	// ShouldBreak reports whether the loop should pause before name.
	ShouldBreak(name string) bool
	// Break pauses at name. It returns true to quit the loop at once
	// without running name.
	Break(in *Interpreter, name string) (quit bool)
}

// Debugger holds breakpoints and stepping state for debug interpreters and
// reads breakpoint commands from the interpreter's input.
type Debugger struct {
	mu          sync.Mutex
	breakpoints map[string]bool
	stepping    bool
	onBrk       bool
	quickQuit   bool

	// ShareHostScope makes debug interpreters alias the host's tuples and
	// functors instead of starting empty.
	ShareHostScope bool
}

var _ BreakHook = (*Debugger)(nil)

// NewDebugger creates a debugger with no breakpoints.
func NewDebugger(shareHostScope bool) *Debugger {
	return &Debugger{
		breakpoints:    make(map[string]bool),
		ShareHostScope: shareHostScope,
	}
}

// AutonomeCommand implements Autonomic.
func (d *Debugger) AutonomeCommand() string {
	return "dbug"
}

// SetBreakpoint pauses before every command named name.
func (d *Debugger) SetBreakpoint(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breakpoints[strings.TrimSpace(name)] = true
}

// ClearBreakpoint removes a breakpoint.
func (d *Debugger) ClearBreakpoint(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.breakpoints, strings.TrimSpace(name))
}

// Breakpoints lists the breakpoints, sorted.
func (d *Debugger) Breakpoints() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for k := range d.breakpoints {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SetStepping pauses before every command when on.
func (d *Debugger) SetStepping(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepping = on
}

// IsStepping reports the stepping flag.
func (d *Debugger) IsStepping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stepping
}

// Reinit clears breakpoints and flags.
func (d *Debugger) Reinit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breakpoints = make(map[string]bool)
	d.stepping = false
	d.onBrk = false
	d.quickQuit = false
}

// ShouldBreak implements BreakHook.
func (d *Debugger) ShouldBreak(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quickQuit || d.stepping || d.breakpoints[name]
}

// Break implements BreakHook. It reads breakpoint commands until told to
// continue, go or quit.
func (d *Debugger) Break(in *Interpreter, name string) bool {
	if d.isQuickQuit() {
		in.frame.args.Clear()
		return true
	}

	out := in.Stdout()
	d.setOnBrk(true)
	for d.isOnBrk() {
		fmt.Fprintf(out, "\nat: %s %s\nbrk>", name, in.frame.args.ToHistoryLine())

		var line string
		var err error
		if in.lines != nil {
			line, err = in.lines.ReadLine("")
		} else {
			err = io.EOF
		}
		if err != nil {
			// Nothing left to read; run to completion.
			d.SetStepping(false)
			d.setOnBrk(false)
			break
		}
		d.process(in, out, Split(line))
	}

	if d.isQuickQuit() {
		in.frame.args.Clear()
		return true
	}
	return false
}

func (d *Debugger) process(in *Interpreter, out io.Writer, words []string) {
	if len(words) == 0 {
		d.setOnBrk(false)
		return
	}

	switch words[0] {
	case "b":
		switch {
		case len(words) == 2, len(words) == 3 && words[2] == "on":
			d.SetBreakpoint(words[1])
			fmt.Fprintf(out, "Brk set on %s\n", words[1])
		case len(words) == 3 && words[2] == "off":
			d.ClearBreakpoint(words[1])
			fmt.Fprintf(out, "Brk cleared for %s\n", words[1])
		default:
			fmt.Fprintf(out, "Bad brk command: %s\n", strings.Join(words, " "))
		}
	case "g":
		d.SetStepping(false)
		d.setOnBrk(false)
	case "i":
		fmt.Fprintln(out, d.String())
	case "m":
		// The map of the interpreter being debugged.
		host := in
		if p := in.Parent(); p != nil {
			host = p
		}
		host.tuples.Dump(out)
	case "t":
		if len(words) < 2 {
			fmt.Fprintln(out, "no tuple name specified to brk t")
			break
		}
		if t, ok := in.GetTuple(words[1]); ok {
			fmt.Fprintln(out, t.String())
		} else {
			fmt.Fprintf(out, "tuple %s not found\n", words[1])
		}
	case "q":
		d.quit()
	case "x":
		in.Spawn(true).ExecuteBlock(strings.Join(words[1:], " "))
	default:
		fmt.Fprintf(out, "Unknown dbug brk command: %s\n", words[0])
	}
}

func (d *Debugger) quit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quickQuit = true
	d.onBrk = false
}

func (d *Debugger) isQuickQuit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quickQuit
}

func (d *Debugger) setOnBrk(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onBrk = b
}

func (d *Debugger) isOnBrk() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.onBrk
}

// Execute runs block in a debug interpreter spawned from host. Quick quit is
// reset afterwards so the debugger can be reused.
func (d *Debugger) Execute(host *Interpreter, block string) Result {
	dbg := host.Spawn(d.ShareHostScope, WithBreakHook(d))
	result := dbg.ExecuteBlock(block)

	d.mu.Lock()
	d.quickQuit = false
	d.mu.Unlock()
	return result
}

func (d *Debugger) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var bps []string
	for k := range d.breakpoints {
		bps = append(bps, k)
	}
	sort.Strings(bps)

	var sb strings.Builder
	fmt.Fprintf(&sb, "stepping : %t\n", d.stepping)
	fmt.Fprintf(&sb, "breaking : %t\n", d.onBrk)
	sb.WriteString("breakpoints:\n")
	sb.WriteString("------------\n")
	for _, b := range bps {
		sb.WriteString(b)
		sb.WriteString("\n")
	}
	return sb.String()
}
