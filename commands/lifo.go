package commands

import (
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

// Lifo operates on the interpreter's tuple stack.
func Lifo(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	stack := call.In.Stack()
	var ops []func() interp.Result

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-push":
			ref := args.NextString()
			ops = append(ops, func() interp.Result {
				t, ok := call.In.GetTuple(ref)
				if !ok {
					return call.Failf("Tuple %s does not exist for push", ref)
				}
				stack.Push(t)
				return interp.Success
			})
		case "-pop":
			ops = append(ops, func() interp.Result {
				t, err := stack.Pop()
				if err != nil {
					return call.Failf("%v", err)
				}
				return call.PutOrFail(t)
			})
		case "-popval":
			ops = append(ops, func() interp.Result {
				t, err := stack.Pop()
				if err != nil {
					return call.Failf("%v", err)
				}
				return call.PutOrFail(t.Value())
			})
		case "-dup":
			ops = append(ops, stackOp(call, stack.Dup))
		case "-swap":
			ops = append(ops, stackOp(call, stack.Swap))
		case "-over":
			ops = append(ops, stackOp(call, stack.Over))
		case "-rot":
			ops = append(ops, stackOp(call, stack.Rot))
		case "-pick":
			n, err := args.NextInt()
			ops = append(ops, func() interp.Result {
				if err != nil {
					return call.Failf("Bad argument to -pick: %v", err)
				}
				t, err := stack.Peek(n)
				if err != nil {
					return call.Failf("%v", err)
				}
				stack.Push(t)
				return interp.Success
			})
		case "-drop":
			ops = append(ops, func() interp.Result {
				if _, err := stack.Pop(); err != nil {
					return call.Failf("%v", err)
				}
				return interp.Success
			})
		case "-clear":
			ops = append(ops, func() interp.Result {
				stack.Clear()
				return interp.Success
			})
		case "-depth":
			ops = append(ops, func() interp.Result {
				return call.PutOrFail(stack.Depth())
			})
		case "-show":
			ops = append(ops, func() interp.Result {
				return call.PutOrFail(showStack(stack))
			})
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	for _, op := range ops {
		if res := op(); res == interp.Failure {
			return args, res
		}
	}
	return args, interp.Success
}

func stackOp(call *interp.Call, op func() error) func() interp.Result {
	return func() interp.Result {
		if err := op(); err != nil {
			return call.Failf("%v", err)
		}
		return interp.Success
	}
}

// showStack renders the stack top first.
func showStack(stack *interp.TupleStack) string {
	if stack.Depth() == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	sb.WriteString("top <==")
	for i := 0; i < stack.Depth(); i++ {
		t, _ := stack.Peek(i)
		sb.WriteString(" ")
		if t.Key() != "" {
			sb.WriteString(t.Key())
		} else {
			sb.WriteString(t.ValueString())
		}
	}
	return sb.String()
}

func init() {
	addCmd(
		"lifo [-to datasink] -push @t | -pop | -popval | -dup | -swap | -over | -pick n | -rot | -drop | -clear | -depth | -show",
		"Operate on the tuple stack.",
		Lifo, "lifo")
}
