package commands

import (
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/sink"
)

// Put writes a value, a tuple's value or a source's contents to the
// destination.
func Put(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	opts := interp.PutOptions{Newline: true}
	var number *int
	var badTuple string

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-tofile", "-fromfile":
			t := args.NextTupleOrPop()
			if t == nil || t.Value() == nil {
				badTuple = dc
				return true
			}
			if dc == "-tofile" {
				call.Dest = sink.FileFromValue(t.Value())
			} else {
				call.Src = sink.FileFromValue(t.Value())
			}
		case "-from":
			call.SetSrcFromArgs(args)
		case "-#":
			n, err := args.NextInt()
			if err != nil {
				badTuple = dc
				return true
			}
			number = &n
		case "-append":
			opts.Append = true
		case "-n":
			opts.Newline = false
		case "-s":
			opts.Space = true
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if badTuple != "" {
		return args, call.Failf("Bad or missing argument to %s", badTuple)
	}

	var value interface{}
	switch {
	case number != nil:
		value = *number

	case call.Src.Kind == sink.Std:
		if args.IsEmpty() {
			return args, call.Failf("Nothing to put")
		}
		if args.IsNextTupleNameOrPop() {
			t := args.NextTupleOrPop()
			if t == nil {
				value = nil
			} else if call.Dest.Kind == sink.Lifo {
				value = t
			} else {
				value = t.Value()
			}
			break
		}
		s, ok := args.NextMaybeQuotationTuplePopString()
		if !ok {
			return args, call.Failf("Could not resolve value to put")
		}
		value = s

	case call.Src.Kind == sink.Tuple:
		t, ok := call.In.GetTuple(call.Src.Name)
		switch {
		case !ok:
			value = nil
		case call.Dest.Kind == sink.Lifo:
			value = t
		default:
			value = t.Value()
		}

	default:
		v, err := call.Get()
		if err != nil {
			return args, call.Failf("Could not get from %s: %v", call.Src, err)
		}
		value = v
	}

	if err := call.PutWith(value, opts); err != nil {
		return args, call.Failf("Could not put to %s: %v", call.Dest, err)
	}
	return args, interp.Success
}

func init() {
	addCmd(
		"put [-to datasink] [-from datasink] [-tofile @t] [-fromfile @t] [-append] [-n] [-s] [-# int] value",
		"Put a value, a tuple's value or a source's contents to a destination.",
		Put, "put")
}
