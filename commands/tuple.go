package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

type tupleOp int

const (
	tupleMap tupleOp = iota
	tupleAssign
	tupleDelete
	tupleExists
	tupleIsName
	tupleNull
	tupleName
	tupleTrue
	tupleFalse
	tupleType
	tupleValue
	tupleAutonome
)

// TupleCmd manipulates tuples and the tuple map.
func TupleCmd(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	op := tupleMap
	var name string
	var subject *interp.Tuple

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-assign":
			op = tupleAssign
			name = args.NextString()
			subject = args.NextTupleOrPop()
		case "-delete":
			op, name = tupleDelete, args.NextString()
		case "-exists":
			op, name = tupleExists, args.NextString()
		case "-istuplename":
			op, name = tupleIsName, args.NextString()
		case "-map":
			op = tupleMap
		case "-null":
			op, name = tupleNull, args.NextString()
		case "-name":
			op, name = tupleName, args.NextString()
		case "-true":
			op, name = tupleTrue, args.NextString()
		case "-false":
			op, name = tupleFalse, args.NextString()
		case "-type", "-typename":
			op, subject = tupleType, args.NextTupleOrPop()
		case "-value":
			op, subject = tupleValue, args.NextTupleOrPop()
		case "-autonome":
			op, subject = tupleAutonome, args.NextTupleOrPop()
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	in := call.In
	switch op {
	case tupleMap:
		return args, call.PutOrFail(strings.Join(in.Tuples().Names(), " "))

	case tupleAssign:
		if subject == nil {
			return args, call.Failf("No tuple to assign from")
		}
		return args, setNamed(call, name, subject.Value(), false)

	case tupleDelete:
		if !in.Tuples().Delete(name) {
			in.Logger().Warning("%s is not found or is invalid in the tuple map", name)
		}
		return args, interp.Success

	case tupleExists:
		t, ok := in.GetTuple(name)
		return args, call.PutOrFail(ok && t != nil)

	case tupleIsName:
		return args, call.PutOrFail(interp.IsTupleName(name))

	case tupleNull:
		return args, setNamed(call, name, nil, true)

	case tupleTrue:
		return args, setNamed(call, name, true, true)

	case tupleFalse:
		return args, setNamed(call, name, false, true)

	case tupleName:
		if !interp.IsTupleName(name) {
			return args, call.Failf("Name %s is not a tuple name.", name)
		}
		return args, call.PutOrFail(name)

	case tupleType:
		if subject == nil {
			return args, call.Failf("No tuple found for -type")
		}
		if v := subject.Value(); v != nil {
			return args, call.PutOrFail(fmt.Sprintf("%T", v))
		}
		return args, call.PutOrFail(nil)

	case tupleValue:
		if subject == nil {
			return args, call.Failf("No tuple found for -value")
		}
		return args, call.PutOrFail(subject.Value())

	case tupleAutonome:
		if subject == nil {
			return args, call.Failf("No tuple found for -autonome")
		}
		if a, ok := subject.Value().(interp.Autonomic); ok {
			return args, call.PutOrFail(a.AutonomeCommand())
		}
		return args, call.PutOrFail(nil)
	}
	return args, interp.Success
}

// setNamed binds a tuple name. For "~" it pushes the value, first popping
// the top when replaceTop is set.
func setNamed(call *interp.Call, name string, v interface{}, replaceTop bool) interp.Result {
	switch {
	case interp.IsTupleName(name):
		call.In.SetTuple(name, v)
	case interp.IsPop(name):
		if replaceTop {
			if _, err := call.In.Stack().Pop(); err != nil {
				return call.Failf("%v", err)
			}
		}
		call.In.Stack().PushValue(v)
	default:
		return call.Failf("Name %s is not a tuple name.", name)
	}
	return interp.Success
}

func init() {
	addCmd(
		"tuple [-to datasink] -assign @name @t | -delete @name | -exists @name | -istuplename name | -map | -null @name | -name @name | -true @name | -false @name | -type @t | -value @t | -autonome @t",
		"Create, inspect and delete tuples.",
		TupleCmd, "tuple")
}
