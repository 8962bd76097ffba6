package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

// ConstCmd defines and lists constants.
func ConstCmd(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	list := false
	var defined string

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-list":
			list = true
		case "-create":
			list = false
		case "-defined":
			defined = args.NextString()
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	consts := call.In.Consts()
	switch {
	case defined != "":
		_, ok := consts.Get(defined)
		return args, call.PutOrFail(ok)

	case list:
		var lines []string
		for _, c := range consts.List() {
			lines = append(lines, fmt.Sprintf("%s=%s", c.Name, c.Value))
		}
		return args, call.PutOrFail(strings.Join(lines, "\n"))
	}

	if args.Len() < 2 {
		return args, call.Failf("Usage: %s", call.Usage())
	}
	name := args.NextString()
	value, ok := args.NextMaybeQuotationTuplePopString()
	if !ok {
		return args, call.Failf("Attempt to set a const with null value")
	}
	if err := consts.Define(name, value); err != nil {
		if errors.Is(err, interp.ErrConstDefined) {
			old, _ := consts.Get(name)
			return args, call.Failf("%q already exists as a const with value %q", name, old.Value)
		}
		return args, call.Failf("%s is not a const name starting with %q", name, interp.ConstChar)
	}
	return args, interp.Success
}

func init() {
	addCmd(
		"const [-to datasink] [-list | -defined *name | [-create] *name value]",
		"Define or list constants.",
		ConstCmd, "const")
}
