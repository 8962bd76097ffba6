package commands

import (
	"github.com/josephlewis42/ublush/core/interp"
)

// Dbug controls the interpreter's debugger and runs blocks under it.
func Dbug(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	d := call.In.Debugger()
	var block string
	var run, info, instance, badBlock bool

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "--", "-dbug":
			if dc == "--" && args.IsNextTupleNameOrPop() {
				t := args.NextTupleOrPop()
				if other, ok := valueOf(t).(*interp.Debugger); ok {
					d = other
					return true
				}
				badBlock = true
				return true
			}
			block, run = args.NextBlock()
			badBlock = !run
		case "-step":
			d.SetStepping(true)
		case "-go":
			d.SetStepping(false)
		case "-brk":
			name, _ := args.NextMaybeQuotationTuplePopString()
			d.SetBreakpoint(name)
		case "-clr":
			name, _ := args.NextMaybeQuotationTuplePopString()
			if !contains(d.Breakpoints(), name) {
				call.Log().Warning("There was no breakpoint set for %s", name)
			}
			d.ClearBreakpoint(name)
		case "-info":
			info = true
		case "-instance":
			instance = true
		case "-init":
			d.Reinit()
		default:
			return false
		}
		return true
	})
	switch {
	case res == interp.Failure:
		return args, res
	case badBlock:
		return args, call.Failf("dbug needs a $[ block ]$ or a debugger tuple")
	}

	switch {
	case run:
		return args, d.Execute(call.In, block)
	case info:
		return args, call.PutOrFail(d.String())
	case instance:
		return args, call.PutOrFail(d)
	}
	return args, interp.Success
}

func valueOf(t *interp.Tuple) interface{} {
	if t == nil {
		return nil
	}
	return t.Value()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func init() {
	addCmd(
		"dbug [-to datasink] [-- @debugger] [-step] [-go] [-brk name] [-clr name] [-init] [-info | -instance | -dbug $[ block ]$]",
		"Debug a block with breakpoints and stepping.",
		Dbug, "dbug")
}
