package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

// Interpret runs a nested interpreter on the session's input until bye, or
// on a block.
func Interpret(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	var block string
	hasBlock := false
	var target *interp.Interpreter
	var badTarget bool

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-block":
			block, hasBlock = args.NextBlock()
			if !hasBlock {
				badTarget = true
			}
		case "--", "-interp":
			t := args.NextTupleOrPop()
			if t != nil {
				target, _ = t.Value().(*interp.Interpreter)
			}
			badTarget = target == nil
		default:
			return false
		}
		return true
	})
	switch {
	case res == interp.Failure:
		return args, res
	case badTarget:
		return args, call.Failf("Null execution block or interpreter provided")
	}

	if target == nil {
		target = call.In.Spawn(true)
	}
	if hasBlock {
		return args, target.ExecuteBlock(block)
	}
	target.Interpret()
	return args, interp.Success
}

// InterpreterCmd describes the running interpreter or creates a child.
func InterpreterCmd(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	var create, share bool
	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-new":
			create = true
		case "-share":
			share = true
		case "-all":
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	in := call.In
	if create {
		return args, call.PutOrFail(in.Spawn(share))
	}

	historyName := "(none)"
	if h := in.History(); h != nil {
		historyName = h.Name()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Frame depth : %d\n", in.FrameDepth())
	fmt.Fprintf(&sb, "FOR block : %t\n", in.IsForBlock())
	fmt.Fprintf(&sb, "Break issued : %t\n", in.IsBreakIssued())
	fmt.Fprintf(&sb, "Local depth : %d\n", in.Tuples().LocalDepth())
	fmt.Fprintf(&sb, "Stack depth : %d\n", in.Stack().Depth())
	fmt.Fprintf(&sb, "History filename : %s", historyName)
	return args, call.PutOrFail(sb.String())
}

func init() {
	addCmd(
		"interpret [-block $[ block ]$] [-- @interpreter]",
		"Run a nested interpreter, possibly on a block.",
		Interpret, "interpret")
	addCmd(
		"interpreter [-to datasink] [-all | -new [-share]]",
		"Show interpreter state or create a child interpreter.",
		InterpreterCmd, "interpreter")
}
