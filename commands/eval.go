package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

var errDivideByZero = errors.New("division by zero")

var integerOps = map[string]func(a, b int64) (interface{}, error){
	"+": func(a, b int64) (interface{}, error) { return a + b, nil },
	"-": func(a, b int64) (interface{}, error) { return a - b, nil },
	"*": func(a, b int64) (interface{}, error) { return a * b, nil },
	"/": func(a, b int64) (interface{}, error) {
		if b == 0 {
			return nil, errDivideByZero
		}
		return a / b, nil
	},
	"%": func(a, b int64) (interface{}, error) {
		if b == 0 {
			return nil, errDivideByZero
		}
		return a % b, nil
	},
	"pct": func(a, b int64) (interface{}, error) {
		if b == 0 {
			return nil, errDivideByZero
		}
		return a * 100 / b, nil
	},
	"&":  func(a, b int64) (interface{}, error) { return a & b, nil },
	"|":  func(a, b int64) (interface{}, error) { return a | b, nil },
	"^":  func(a, b int64) (interface{}, error) { return a ^ b, nil },
	"<<": func(a, b int64) (interface{}, error) { return a << uint64(b), nil },
	">>": func(a, b int64) (interface{}, error) { return a >> uint64(b), nil },
	"==": func(a, b int64) (interface{}, error) { return a == b, nil },
	"!=": func(a, b int64) (interface{}, error) { return a != b, nil },
	"<":  func(a, b int64) (interface{}, error) { return a < b, nil },
	">":  func(a, b int64) (interface{}, error) { return a > b, nil },
	"<=": func(a, b int64) (interface{}, error) { return a <= b, nil },
	">=": func(a, b int64) (interface{}, error) { return a >= b, nil },
}

// Eval does integer arithmetic, comparison and boolean logic.
//
// Only -to is read as a dash command so that "-" works as an operator.
func Eval(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	for args.IsNext("-to") {
		args.NextString()
		call.SetDestFromArgs(args)
	}
	if args.Len() < 2 {
		return args, call.Failf("Usage: %s", call.Usage())
	}

	op, _ := args.NextMaybeQuotationTuplePopString()
	switch op {
	case "!":
		s, _ := args.NextMaybeQuotationTuplePopString()
		return args, call.PutOrFail(s != "true")
	case "&&", "||":
		l, _ := args.NextMaybeQuotationTuplePopString()
		r, _ := args.NextMaybeQuotationTuplePopString()
		if op == "&&" {
			return args, call.PutOrFail(l == "true" && r == "true")
		}
		return args, call.PutOrFail(l == "true" || r == "true")
	}

	fn, ok := integerOps[op]
	if !ok {
		return args, call.Failf("Unknown operator %s", op)
	}
	if args.Len() < 2 {
		return args, call.Failf("Usage: %s", call.Usage())
	}
	a, err := nextInt64(args)
	if err != nil {
		return args, call.Failf("Bad left operand: %v", err)
	}
	b, err := nextInt64(args)
	if err != nil {
		return args, call.Failf("Bad right operand: %v", err)
	}
	v, err := fn(a, b)
	if err != nil {
		return args, call.Failf("%v", err)
	}
	return args, call.PutOrFail(v)
}

func nextInt64(args *interp.ArgArray) (int64, error) {
	s, ok := args.NextMaybeQuotationTuplePopString()
	if !ok {
		return 0, interp.ErrUndefinedTuple
	}
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// Test compares values or checks them for null.
func Test(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	var fn func() interface{}
	var missing bool

	operand := func() interface{} {
		if args.IsNextTupleNameOrPop() {
			t := args.NextTupleOrPop()
			if t == nil {
				missing = true
				return nil
			}
			if v := t.Value(); v != nil {
				return strings.TrimSpace(interp.ValueString(v))
			}
			return nil
		}
		s, _ := args.NextMaybeQuotationTuplePopString()
		return strings.TrimSpace(s)
	}

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-eq", "-ne":
			a, b := operand(), operand()
			eq := a == b
			fn = func() interface{} { return eq == (dc == "-eq") }
		case "-null", "-nnull":
			t := args.NextTupleOrPop()
			isNull := t == nil || t.Value() == nil
			fn = func() interface{} { return isNull == (dc == "-null") }
		default:
			return false
		}
		return true
	})
	switch {
	case res == interp.Failure:
		return args, res
	case missing:
		return args, call.Failf("Tuple does not exist")
	case fn == nil:
		return args, call.Failf("Usage: %s", call.Usage())
	}
	return args, call.PutOrFail(fn())
}

func init() {
	addCmd(
		"eval [-to datasink] operator operand [operand]",
		"Integer arithmetic, comparison and logic: + - * / % pct & | ^ << >> == != < > <= >= ! && ||",
		Eval, "eval")
	addCmd(
		"test [-to datasink] -eq a b | -ne a b | -null @t | -nnull @t",
		"Compare values or test tuples for null.",
		Test, "test")
}
