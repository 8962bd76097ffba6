package interp

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/josephlewis42/ublush/core/logger"
)

// Loop runs the current token stream until it is exhausted, a command fails,
// or a goodbye or break is pending. A failure stops only this loop; the
// caller decides what happens next.
func (in *Interpreter) Loop() Result {
	result := Success
	historyLine := in.frame.args.ToHistoryLine()

	for !in.frame.args.IsEmpty() && !in.goodbye.IsSet() && !in.breakIssued.IsSet() {
		if in.frame.args.PeekNextIsTupleOrPop() {
			if err := in.autonomize(); err != nil {
				in.log.Severe("%v", err)
				result = Failure
				break
			}
			continue
		}

		commandName := strings.TrimSpace(in.frame.args.NextString())
		if commandName == "" {
			continue
		}

		if in.hook != nil && in.hook.ShouldBreak(commandName) {
			if quit := in.hook.Break(in, commandName); quit {
				break
			}
		}

		switch res := in.Resolve(commandName); res.Kind {
		case Builtin:
			result = in.runCommand(res.Entry, commandName)
		case UserFunctor:
			result = in.runFunctor(res.Functor)
		default:
			in.log.Severe("Command %q not found.", commandName)
			in.events.Record(&logger.UnknownCommand{Command: commandName})
			result = Failure
		}

		if result == Failure {
			break
		}
	}

	if !in.frame.including && len(in.frames) == 0 && historyLine != "" && in.history != nil {
		if err := in.history.Append(historyLine); err != nil {
			in.log.Warning("Couldn't write to history file %s: %v", in.history.Name(), err)
		}
	}

	in.lastReturn = int(result)
	return result
}

// autonomize handles a tuple or pop reference at the head of the stream. A
// value that knows its command gets "<command> --" spliced in ahead of the
// reference; any other value replaces the reference.
func (in *Interpreter) autonomize() error {
	ref, _ := in.frame.args.Peek()

	var value interface{}
	if IsPop(ref) {
		t, err := in.stack.Peek(0)
		if err != nil {
			in.frame.args.NextString()
			return fmt.Errorf("non-autonomized tuple or pop %s: %w", ref, ErrLifoEmpty)
		}
		value = t.Value()
	} else {
		t, ok := in.tuples.Get(ref)
		if !ok {
			in.frame.args.NextString()
			return fmt.Errorf("non-autonomized tuple or pop %s: %w", ref, ErrUndefinedTuple)
		}
		value = t.Value()
	}

	if a, ok := value.(Autonomic); ok {
		in.frame.args.PushFront(a.AutonomeCommand(), "--")
		return nil
	}

	if value == nil {
		in.frame.args.NextString()
		return fmt.Errorf("non-autonomized tuple or pop %s: null value", ref)
	}

	in.frame.args.NextString()
	if IsPop(ref) {
		in.stack.Pop()
	}
	in.frame.args.PushFront(ValueString(value))
	return nil
}

func (in *Interpreter) runCommand(e *CommandEntry, name string) (result Result) {
	call := newCall(in, name, e)

	defer func() {
		if r := recover(); r != nil {
			in.log.Severe("Command %q threw exception: %v", name, r)
			in.events.Record(&logger.Panic{
				Command:    name,
				Context:    fmt.Sprint(r),
				Stacktrace: string(debug.Stack()),
			})
			result = Failure
		}
	}()

	rest, result := e.Command.Run(call, in.frame.args)
	in.SetArgs(rest)
	in.events.Record(&logger.RunCommand{Command: name, Result: result.String()})
	return result
}

func (in *Interpreter) runFunctor(f *Functor) Result {
	actual, err := ParseParamList(in.frame.args)
	if err != nil {
		in.log.Severe("Found function %s but could not execute it: %v", f.Name, err)
		return Failure
	}

	result := in.ExecuteFunctor(f, actual)
	in.events.Record(&logger.RunCommand{Command: f.Name, Functor: true, Result: result.String()})
	return result
}

// ExecuteFunctor binds actual parameters and runs the functor's body in a
// new frame.
func (in *Interpreter) ExecuteFunctor(f *Functor, actual []string) (result Result) {
	if len(actual) != len(f.Params) {
		in.log.Severe("Functor %s expects %d parameters but was given %d", f.Name, len(f.Params), len(actual))
		return Failure
	}

	in.PushFrame()
	defer func() {
		in.PopFrame()
		in.clearReturn()
	}()

	return in.ExecuteBlock(f.bind(in, actual))
}

// ExecuteBlock parses and runs block in a new frame.
func (in *Interpreter) ExecuteBlock(block string) Result {
	in.PushFrame()
	defer in.PopFrame()

	in.frame.args = in.Parse(block)
	return in.Loop()
}

// ExecuteLoopBody runs block as the body of a loop construct. It reports
// whether the loop should continue.
func (in *Interpreter) ExecuteLoopBody(block string) (Result, bool) {
	in.PushFrame()
	defer in.PopFrame()

	in.frame.forBlock = true
	in.frame.args = in.Parse(block)
	result := in.Loop()
	if in.breakIssued.IsSet() {
		in.ClearBreak()
		return result, false
	}
	return result, result == Success && !in.goodbye.IsSet()
}

// Interpret reads, parses and runs lines until goodbye or end of input and
// returns the exit code.
func (in *Interpreter) Interpret() int {
	for !in.goodbye.IsSet() {
		line, err := in.ReadLine()
		if err == io.EOF {
			in.Goodbye()
			break
		}
		if err != nil {
			in.log.Severe("Error reading input: %v", err)
			in.Goodbye()
			break
		}

		in.frame.args = in.Parse(line)
		in.Loop()
		in.clearReturn()
	}
	return in.ExitCode()
}

// RunLine parses and runs a single line.
func (in *Interpreter) RunLine(line string) Result {
	in.frame.args = in.Parse(line)
	defer in.clearReturn()
	return in.Loop()
}
