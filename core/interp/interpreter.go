// Package interp is the interpreter engine: the token stream, variable
// scopes, command and functor dispatch, includes and the debugger.
package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/josephlewis42/ublush/core/logger"
	"github.com/spf13/afero"
	"github.com/tevino/abool/v2"
)

// ErrUndefinedTuple is returned when a tuple reference isn't bound.
var ErrUndefinedTuple = errors.New("undefined tuple")

// DefaultPrompt is shown before each interactive line.
const DefaultPrompt = "> "

// frame is the per-nesting state saved when a block, functor or include
// starts and restored when it ends.
type frame struct {
	args       *ArgArray
	including  bool
	forBlock   bool
	includeDir string
}

// Interpreter is one execution context. Its loop is strictly sequential;
// maps may be shared with other interpreters when spawned that way.
type Interpreter struct {
	commands *Registry
	tuples   *TupleMap
	functors *FunctorMap
	consts   *ConstMap
	stack    *TupleStack
	props    *Props

	frame  frame
	frames []frame

	lines  LineReader
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	fs      afero.Fs
	log     *logger.Logger
	events  *logger.SessionLog
	history History

	parent *Interpreter
	hook   BreakHook
	dbug   *Debugger

	introducers string
	includePath []string
	echoInclude bool
	prompt      string
	prompting   bool

	goodbye      *abool.AtomicBool
	breakIssued  *abool.AtomicBool
	returnIssued bool
	lastReturn   int
	exitCode     *int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithIO sets the interpreter's streams. A nil reader has no input and nil
// writers discard.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(in *Interpreter) {
		if stdout == nil {
			stdout = ioutil.Discard
		}
		if stderr == nil {
			stderr = ioutil.Discard
		}
		in.stdin = stdin
		in.stdout = stdout
		in.stderr = stderr
		in.lines = newBufferedLineReader(stdin, stdout)
	}
}

// WithLineReader replaces the reader used for interactive and continuation
// lines, e.g. with a line editor.
func WithLineReader(lr LineReader) Option {
	return func(in *Interpreter) { in.lines = lr }
}

// WithFs sets the filesystem used by FILE sinks and includes.
func WithFs(fs afero.Fs) Option {
	return func(in *Interpreter) { in.fs = fs }
}

// WithLogger sets the application logger.
func WithLogger(l *logger.Logger) Option {
	return func(in *Interpreter) { in.log = l }
}

// WithEvents attaches a session event log.
func WithEvents(s *logger.SessionLog) Option {
	return func(in *Interpreter) { in.events = s }
}

// WithHistory attaches a history sink.
func WithHistory(h History) Option {
	return func(in *Interpreter) { in.history = h }
}

// WithScopeMode creates the interpreter's own TupleMap in the given mode.
func WithScopeMode(mode ScopeMode) Option {
	return func(in *Interpreter) { in.tuples = NewTupleMap(mode) }
}

// WithIntroducers sets the option introducer characters.
func WithIntroducers(s string) Option {
	return func(in *Interpreter) { in.introducers = s }
}

// WithIncludePath sets directories searched by include.
func WithIncludePath(dirs ...string) Option {
	return func(in *Interpreter) { in.includePath = dirs }
}

// WithEchoInclude echoes each included line to stderr.
func WithEchoInclude(echo bool) Option {
	return func(in *Interpreter) { in.echoInclude = echo }
}

// WithPrompt sets the prompt and whether it is shown.
func WithPrompt(prompt string, prompting bool) Option {
	return func(in *Interpreter) {
		in.prompt = prompt
		in.prompting = prompting
	}
}

// WithBreakHook attaches a debugger.
func WithBreakHook(h BreakHook) Option {
	return func(in *Interpreter) { in.hook = h }
}

// WithDebugger sets the debugger driven by the dbug command.
func WithDebugger(d *Debugger) Option {
	return func(in *Interpreter) { in.dbug = d }
}

// New creates a top-level interpreter dispatching to commands.
func New(commands *Registry, opts ...Option) *Interpreter {
	in := &Interpreter{
		commands:    commands,
		tuples:      NewTupleMap(Unguarded),
		functors:    NewFunctorMap(),
		consts:      NewConstMap(nil),
		stack:       NewTupleStack(),
		props:       NewProps(),
		fs:          afero.NewOsFs(),
		log:         logger.Discard(),
		prompt:      DefaultPrompt,
		goodbye:     abool.New(),
		breakIssued: abool.New(),
	}
	WithIO(nil, nil, nil)(in)
	for _, opt := range opts {
		opt(in)
	}
	in.frame.args = NewArgArray(in)
	return in
}

// Spawn creates a child interpreter. With share set the child aliases the
// parent's global tuples, its open local frames and its FunctorMap;
// otherwise it gets private ones. Frames either side opens later stay
// private. The child always sees the parent's constants, commands,
// filesystem and logger.
func (in *Interpreter) Spawn(share bool, opts ...Option) *Interpreter {
	base := []Option{
		WithIO(in.stdin, in.stdout, in.stderr),
		WithLineReader(in.lines),
		WithFs(in.fs),
		WithLogger(in.log),
		WithEvents(in.events),
		WithIntroducers(in.introducers),
		WithIncludePath(in.includePath...),
		WithEchoInclude(in.echoInclude),
		WithPrompt(in.prompt, in.prompting),
		WithScopeMode(in.tuples.Mode()),
		WithDebugger(in.dbug),
	}
	child := New(in.commands, append(base, opts...)...)
	child.parent = in
	child.consts = NewConstMap(in.consts)
	child.props = in.props
	child.frame.includeDir = in.frame.includeDir
	if share {
		child.tuples = in.tuples.Share()
		child.functors = in.functors
	}
	return child
}

// Parent returns the interpreter this one was spawned from, if any.
func (in *Interpreter) Parent() *Interpreter { return in.parent }

// Commands returns the builtin registry.
func (in *Interpreter) Commands() *Registry { return in.commands }

// Tuples returns the tuple map.
func (in *Interpreter) Tuples() *TupleMap { return in.tuples }

// Functors returns the functor map.
func (in *Interpreter) Functors() *FunctorMap { return in.functors }

// Consts returns the constant map.
func (in *Interpreter) Consts() *ConstMap { return in.consts }

// Stack returns the tuple stack.
func (in *Interpreter) Stack() *TupleStack { return in.stack }

// Props returns the interpreter properties.
func (in *Interpreter) Props() *Props { return in.props }

// Fs returns the filesystem.
func (in *Interpreter) Fs() afero.Fs { return in.fs }

// Logger returns the application logger.
func (in *Interpreter) Logger() *logger.Logger { return in.log }

// Events returns the session event log, possibly nil.
func (in *Interpreter) Events() *logger.SessionLog { return in.events }

// History returns the history sink, possibly nil.
func (in *Interpreter) History() History { return in.history }

// Introducers returns the option introducer characters.
func (in *Interpreter) Introducers() string { return in.introducers }

// Stdout is where STD output goes.
func (in *Interpreter) Stdout() io.Writer { return in.stdout }

// Stderr is where ERR output goes.
func (in *Interpreter) Stderr() io.Writer { return in.stderr }

// Stdin is the raw input stream, possibly nil.
func (in *Interpreter) Stdin() io.Reader { return in.stdin }

// Lines returns the line reader.
func (in *Interpreter) Lines() LineReader { return in.lines }

// BreakHook returns the attached debugger, possibly nil.
func (in *Interpreter) BreakHook() BreakHook { return in.hook }

// SetHistory attaches or, with nil, detaches the history sink.
func (in *Interpreter) SetHistory(h History) { in.history = h }

// IsEchoInclude reports whether included lines are echoed.
func (in *Interpreter) IsEchoInclude() bool { return in.echoInclude }

// SetEchoInclude turns echoing of included lines on or off.
func (in *Interpreter) SetEchoInclude(echo bool) { in.echoInclude = echo }

// IsPrompting reports whether the prompt is shown.
func (in *Interpreter) IsPrompting() bool { return in.prompting }

// SetPrompting turns the prompt on or off.
func (in *Interpreter) SetPrompting(on bool) { in.prompting = on }

// Debugger returns the interpreter's debugger, creating one on first use.
func (in *Interpreter) Debugger() *Debugger {
	if in.dbug == nil {
		in.dbug = NewDebugger(false)
	}
	return in.dbug
}

// Args returns the current token stream.
func (in *Interpreter) Args() *ArgArray { return in.frame.args }

// SetArgs replaces the current token stream.
func (in *Interpreter) SetArgs(aa *ArgArray) {
	if aa == nil {
		aa = NewArgArray(in)
	}
	in.frame.args = aa
}

// GetTuple resolves a tuple name.
func (in *Interpreter) GetTuple(name string) (*Tuple, bool) {
	return in.tuples.Get(name)
}

// SetTuple binds name following the scope rules of TupleMap.Set.
func (in *Interpreter) SetTuple(name string, value interface{}) *Tuple {
	return in.tuples.Set(name, value)
}

// Goodbye ends the session after the current loop.
func (in *Interpreter) Goodbye() { in.goodbye.Set() }

// IsGoodbye reports whether the session is ending.
func (in *Interpreter) IsGoodbye() bool { return in.goodbye.IsSet() }

// IssueBreak stops the innermost enclosing loop construct.
func (in *Interpreter) IssueBreak() { in.breakIssued.Set() }

// IssueReturn stops the innermost enclosing functor.
func (in *Interpreter) IssueReturn() {
	in.returnIssued = true
	in.breakIssued.Set()
}

// IsBreakIssued reports a pending BREAK or RETURN.
func (in *Interpreter) IsBreakIssued() bool { return in.breakIssued.IsSet() }

// IsReturnIssued reports a pending RETURN.
func (in *Interpreter) IsReturnIssued() bool { return in.returnIssued }

// ClearBreak acknowledges a BREAK. A pending RETURN stays set so it keeps
// unwinding to its functor.
func (in *Interpreter) ClearBreak() {
	if !in.returnIssued {
		in.breakIssued.UnSet()
	}
}

func (in *Interpreter) clearReturn() {
	in.returnIssued = false
	in.breakIssued.UnSet()
}

// IsIncluding reports whether the current frame runs an included file.
func (in *Interpreter) IsIncluding() bool { return in.frame.including }

// IsForBlock reports whether the current frame is a loop body.
func (in *Interpreter) IsForBlock() bool { return in.frame.forBlock }

// SetForBlock marks the current frame as a loop body.
func (in *Interpreter) SetForBlock(b bool) { in.frame.forBlock = b }

// FrameDepth is the number of saved frames.
func (in *Interpreter) FrameDepth() int { return len(in.frames) }

// LastReturn is the ordinal of the last loop result.
func (in *Interpreter) LastReturn() int { return in.lastReturn }

// SetExitCode records an explicit exit code and ends the session.
func (in *Interpreter) SetExitCode(code int) {
	in.exitCode = &code
	in.Goodbye()
}

// ExitCode is the explicit exit code if one was set, else LastReturn.
func (in *Interpreter) ExitCode() int {
	if in.exitCode != nil {
		return *in.exitCode
	}
	return in.lastReturn
}

// PushFrame saves the current frame and opens a new local tuple scope.
func (in *Interpreter) PushFrame() {
	in.frames = append(in.frames, in.frame)
	in.frame = frame{
		args:       NewArgArray(in),
		including:  in.frame.including,
		includeDir: in.frame.includeDir,
	}
	in.tuples.PushLocal()
}

// PopFrame restores the previous frame.
func (in *Interpreter) PopFrame() {
	n := len(in.frames)
	if n == 0 {
		return
	}
	in.frame = in.frames[n-1]
	in.frames = in.frames[:n-1]
	in.tuples.PopLocal()
}

// Printf writes formatted text to the interpreter's output.
func (in *Interpreter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(in.stdout, format, args...)
}

// Errorf writes formatted text to the interpreter's error output.
func (in *Interpreter) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(in.stderr, format, args...)
}

// LineReader supplies input lines.
type LineReader interface {
	// ReadLine returns the next line without its terminator. It returns
	// io.EOF when input is exhausted.
	ReadLine(prompt string) (string, error)
}

type bufferedLineReader struct {
	r   *bufio.Reader
	out io.Writer
}

func newBufferedLineReader(r io.Reader, out io.Writer) LineReader {
	if r == nil {
		return nil
	}
	return &bufferedLineReader{r: bufio.NewReader(r), out: out}
}

func (b *bufferedLineReader) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// ReadLine reads the next line of input, prompting if configured.
func (in *Interpreter) ReadLine() (string, error) {
	if in.lines == nil {
		return "", io.EOF
	}
	prompt := ""
	if in.prompting {
		prompt = in.prompt
	}
	return in.lines.ReadLine(prompt)
}

// readContinuation supplies more tokens for an unclosed quotation or block.
func (in *Interpreter) readContinuation() ([]string, error) {
	if in.lines == nil {
		return nil, io.EOF
	}
	prompt := ""
	if in.prompting && !in.frame.including {
		prompt = "...> "
	}
	line, err := in.lines.ReadLine(prompt)
	if err != nil {
		return nil, err
	}
	return Split(line), nil
}
