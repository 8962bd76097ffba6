package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/josephlewis42/ublush/core/interp"
)

// Sleep pauses the interpreter.
func Sleep(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	var d time.Duration
	var badArg string
	res := parseDashCommands(call, args, func(dc string) bool {
		var unit time.Duration
		switch dc {
		case "-m":
			unit = time.Millisecond
		case "-n":
			unit = time.Nanosecond
		default:
			return false
		}
		n, err := args.NextInt()
		if err != nil {
			badArg = dc
		}
		d += time.Duration(n) * unit
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if badArg != "" {
		return args, call.Failf("Bad or missing argument to %s", badArg)
	}
	time.Sleep(d)
	return args, interp.Success
}

// PropsCmd gets, sets and lists interpreter properties.
func PropsCmd(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	props := call.In.Props()
	var op func() interp.Result

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-set":
			key, _ := args.NextMaybeQuotationTuplePopString()
			value, _ := args.NextMaybeQuotationTuplePopString()
			op = func() interp.Result {
				props.Set(key, value)
				return interp.Success
			}
		case "-get":
			key, _ := args.NextMaybeQuotationTuplePopString()
			op = func() interp.Result {
				v, ok := props.Get(key)
				if !ok {
					return call.PutOrFail(nil)
				}
				return call.PutOrFail(v)
			}
		case "-list":
			op = func() interp.Result {
				var lines []string
				for _, k := range props.Keys() {
					v, _ := props.Get(k)
					lines = append(lines, fmt.Sprintf("%s=%s", k, v))
				}
				return call.PutOrFail(strings.Join(lines, "\n"))
			}
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if op == nil {
		return args, call.Failf("Usage: %s", call.Usage())
	}
	return args, op()
}

func init() {
	addCmd("sleep [-m millis] [-n nanos]", "Pause for a while.", Sleep, "sleep")
	addCmd(
		"props [-to datasink] -set key value | -get key | -list",
		"Get, set and list interpreter properties.",
		PropsCmd, "props")
}
