package commands

import (
	"strconv"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/sink"
)

// If tests a boolean tuple. When false it discards a following THEN block
// so that an ELSE, if any, runs next.
func If(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	if !args.IsNextTupleNameOrPop() {
		return args, call.Failf("Argument to IF is not a Tuple variable")
	}
	t := args.NextTupleOrPop()
	var v interface{}
	if t != nil {
		v = t.Value()
	}

	var cond bool
	switch b := v.(type) {
	case bool:
		cond = b
	case string:
		if b != "true" && b != "false" {
			return args, call.Failf("Tuple argument to IF must be set to true or false, but was %s", b)
		}
		cond = b == "true"
	default:
		return args, call.Failf("Tuple argument to IF must be set to true or false, but was %s", interp.ValueString(v))
	}

	if !cond && args.IsNext("THEN") {
		args.NextString()
		if _, ok := args.NextBlock(); !ok {
			return args, call.Failf("THEN found without a $[ block ]$")
		}
	}
	return args, interp.Success
}

// Then runs its block and discards a following ELSE block.
func Then(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	block, ok := args.NextBlock()
	if !ok {
		return args, call.Failf("THEN found without a $[ block ]$")
	}
	result := call.In.ExecuteBlock(block)
	if args.IsNext("ELSE") {
		args.NextString()
		if _, ok := args.NextBlock(); !ok {
			return args, call.Failf("ELSE found without a $[ block ]$")
		}
	}
	return args, result
}

// Else runs its block.
func Else(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	block, ok := args.NextBlock()
	if !ok {
		return args, call.Failf("ELSE found without a $[ block ]$")
	}
	return args, call.In.ExecuteBlock(block)
}

// For binds a local iterator tuple to each element of a list and runs the
// block for each one.
func For(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	in := call.In
	iterName := args.NextString()
	if !interp.IsTupleName(iterName) {
		return args, call.Failf("Iterator tuple name %s is invalid", iterName)
	}
	if args.IsNext("in") {
		args.NextString()
	}
	list := args.NextTupleOrPop()
	if list == nil {
		return args, call.Failf("Iterated tuple does not exist")
	}
	block, ok := args.NextBlock()
	if !ok {
		return args, call.Failf("FOR found without a $[ block ]$")
	}

	in.Tuples().PushLocal()
	defer in.Tuples().PopLocal()
	iter := in.Tuples().PutMostLocal(iterName, nil)

	result := interp.Success
	for _, item := range iterable(list.Value()) {
		iter.SetValue(item)
		var more bool
		if result, more = in.ExecuteLoopBody(block); !more {
			break
		}
	}
	return args, result
}

// iterable turns a value into the elements FOR walks. Text is split into
// words.
func iterable(v interface{}) []interface{} {
	switch items := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return items
	case []string:
		out := make([]interface{}, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out
	default:
		var out []interface{}
		for _, s := range strings.Fields(interp.ValueString(v)) {
			out = append(out, s)
		}
		return out
	}
}

// While runs the block as long as the tuple holds true.
func While(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	if args.IsEmpty() {
		return args, call.Failf("No WHILE tuple provided")
	}
	cond := args.NextTupleOrPop()
	block, ok := args.NextBlock()
	if !ok {
		return args, call.Failf("WHILE found without a $[ block ]$")
	}
	if cond == nil {
		return args, call.Failf("WHILE tuple does not exist")
	}

	result := interp.Success
	for isTrue(cond.Value()) {
		var more bool
		if result, more = call.In.ExecuteLoopBody(block); !more {
			break
		}
	}
	return args, result
}

// Do counts a tuple from its value up to (or with -undo down to) a limit,
// exclusive, running the block each time.
func Do(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	undo := false
	res := parseDashCommands(call, args, func(dc string) bool {
		if dc != "-undo" {
			return false
		}
		undo = true
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	start, _ := call.In.GetTuple(args.NextString())
	if args.IsNext("to") {
		args.NextString()
	}
	limit, _ := call.In.GetTuple(args.NextString())
	block, ok := args.NextBlock()
	switch {
	case !ok:
		return args, call.Failf("DO found without a $[ block ]$")
	case start == nil:
		return args, call.Failf("Iterated tuple does not exist")
	case limit == nil:
		return args, call.Failf("Limit tuple does not exist")
	}

	from, err := strconv.Atoi(strings.TrimSpace(start.ValueString()))
	if err != nil {
		return args, call.Failf("Bad start value: %v", err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(limit.ValueString()))
	if err != nil {
		return args, call.Failf("Bad limit value: %v", err)
	}

	step := 1
	if undo {
		step = -1
	}
	result := interp.Success
	for i := from; (!undo && i < to) || (undo && i > to); i += step {
		start.SetValue(i)
		var more bool
		if result, more = call.In.ExecuteLoopBody(block); !more {
			break
		}
	}
	return args, result
}

// Break leaves the innermost loop.
func Break(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	call.In.IssueBreak()
	return args, interp.Success
}

// Return leaves the innermost function.
func Return(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	call.In.IssueReturn()
	return args, interp.Success
}

// Try runs the TRY block and, if it fails, the CATCH block.
func Try(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	tryBlock, ok := args.NextBlock()
	if !ok {
		return args, call.Failf("No TRY block found")
	}
	if !args.IsNext("CATCH") {
		return args, call.Failf("TRY without CATCH found")
	}
	args.NextString()
	catchBlock, ok := args.NextBlock()
	if !ok {
		return args, call.Failf("No CATCH block found")
	}

	if result := call.In.ExecuteBlock(tryBlock); result == interp.Success {
		return args, result
	}
	return args, call.In.ExecuteBlock(catchBlock)
}

// Local declares a tuple in the innermost local scope.
func Local(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	name := args.NextString()
	if !interp.IsTupleName(name) {
		return args, call.Failf("%s is not a tuple name", name)
	}
	if call.In.Tuples().LocalDepth() == 0 {
		return args, call.Failf("No local context exists for %s", name)
	}
	call.In.Tuples().PutMostLocal(name, nil)
	return args, interp.Success
}

// Bye ends the session.
func Bye(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	call.In.Goodbye()
	return args, interp.Success
}

// Exit ends the session with an exit code.
func Exit(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	code := 0
	var rcErr error
	res := parseDashCommands(call, args, func(dc string) bool {
		if dc != "-rc" {
			return false
		}
		code, rcErr = args.NextInt()
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if rcErr != nil {
		return args, call.Failf("Bad exit code: %v", rcErr)
	}
	call.In.SetExitCode(code)
	return args, interp.Success
}

// Comment discards a quotation, a block or the rest of the line. Its text
// can be sent somewhere with -to.
func Comment(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	call.Dest = sink.Classify(sink.NullName)
	if res := parseDashCommands(call, args, func(string) bool { return false }); res == interp.Failure {
		return args, res
	}

	var text string
	switch {
	case args.IsNextQuotation():
		q, err := args.NextQuotation()
		if err != nil {
			return args, call.Failf("%v", err)
		}
		text = q
	case args.IsNextBlock():
		b, ok := args.NextBlock()
		if !ok {
			return args, call.Failf("%v", interp.ErrUnclosed)
		}
		text = b
	default:
		text = args.ToHistoryLine()
		args.Clear()
	}
	return args, call.PutOrFail(text)
}

func init() {
	addCmd("IF @t THEN $[ block ]$ [ELSE $[ block ]$]", "Conditionally run a block.", If, "IF")
	addCmd("THEN $[ block ]$ [ELSE $[ block ]$]", "Run the block of a true IF.", Then, "THEN")
	addCmd("ELSE $[ block ]$", "Run the block of a false IF.", Else, "ELSE")
	addCmd("FOR @iter [in] @list $[ block ]$", "Run a block for each element of a list.", For, "FOR")
	addCmd("WHILE @t $[ block ]$", "Run a block while a tuple is true.", While, "WHILE")
	addCmd("DO [-undo] @start [to] @limit $[ block ]$", "Run a block counting a tuple to a limit.", Do, "DO")
	addCmd("BREAK", "Leave the innermost loop.", Break, "BREAK")
	addCmd("RETURN", "Leave the innermost function.", Return, "RETURN")
	addCmd("TRY $[ block ]$ CATCH $[ block ]$", "Run a block, and another if it fails.", Try, "TRY")
	addCmd("LOCAL @name", "Declare a tuple in the innermost local scope.", Local, "LOCAL")
	addCmd("bye", "End the session.", Bye, "bye")
	addCmd("exit [-rc int]", "End the session with an exit code.", Exit, "exit")
	addCmd(`\\ [-to datasink] ${ comment }$`, "Comment.", Comment, `\\`)
}
