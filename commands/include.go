package commands

import (
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/sink"
)

// Include runs a script from a file or from program text held in a tuple.
func Include(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	in := call.In
	includeIf := true
	silent := false
	fromSink := false
	var badIf bool

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-from":
			call.SetSrcFromArgs(args)
			fromSink = true
		case "-if", "-!if":
			t := args.NextTupleOrPop()
			b, ok := boolValue(t)
			if !ok {
				badIf = true
			}
			includeIf = b == (dc == "-if")
		case "-s", "-silent":
			silent = true
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if badIf {
		return args, call.Failf("Argument to -if must be a tuple set to true or false")
	}
	if !includeIf {
		if !fromSink {
			args.NextMaybeQuotationTuplePopString()
		}
		return args, interp.Success
	}

	if silent {
		wasPrompting, wasEcho := in.IsPrompting(), in.IsEchoInclude()
		in.SetPrompting(false)
		in.SetEchoInclude(false)
		defer func() {
			in.SetPrompting(wasPrompting)
			in.SetEchoInclude(wasEcho)
		}()
	}

	if !fromSink {
		if args.IsEmpty() {
			return args, call.Failf("Usage: %s", call.Usage())
		}
		name, ok := args.NextMaybeQuotationTuplePopString()
		if !ok {
			return args, call.Failf("No file name to include")
		}
		return args, in.Include(name)
	}

	switch call.Src.Kind {
	case sink.File:
		return args, in.Include(call.Src.Name)
	case sink.Tuple:
		t, ok := in.GetTuple(call.Src.Name)
		if !ok {
			return args, call.Failf("Tuple %s does not exist.", call.Src.Name)
		}
		program, ok := t.Value().(string)
		if !ok {
			return args, call.Failf("Tuple %s does not contain program lines.", t.Key())
		}
		return args, in.IncludeReader(t.Key(), strings.NewReader(program))
	default:
		return args, call.Failf("%s not implemented in include.", call.Src.Kind)
	}
}

// boolValue extracts a boolean from a tuple holding true or false.
func boolValue(t *interp.Tuple) (bool, bool) {
	if t == nil {
		return false, false
	}
	switch b := t.Value().(type) {
	case bool:
		return b, true
	case string:
		return b == "true", b == "true" || b == "false"
	default:
		return false, false
	}
}

func init() {
	addCmd(
		"include [-s] [-if @t | -!if @t] [-from datasink] [filepath]",
		"Run a script from a file or from a tuple holding program lines.",
		Include, "include")
}
