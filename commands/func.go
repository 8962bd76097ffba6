package commands

import (
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

// Func defines, lists, shows and deletes named functors.
func Func(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	var listing bool
	var deleteName, showName string

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-list":
			listing = true
		case "-delete":
			deleteName = args.NextString()
		case "-show":
			showName = args.NextString()
		case "-define":
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	functors := call.In.Functors()
	switch {
	case listing:
		var lines []string
		for _, name := range functors.Names() {
			f, _ := functors.Get(name)
			lines = append(lines, f.String())
		}
		return args, call.PutOrFail(strings.Join(lines, "\n"))

	case showName != "":
		f, ok := functors.Get(showName)
		if !ok {
			return args, call.Failf("Function %s not found", showName)
		}
		return args, call.PutOrFail(f.String())

	case deleteName != "":
		if !functors.Delete(deleteName) {
			call.Log().Warning("Function %s not found to delete in %s", deleteName, call.Name)
		}
		return args, interp.Success
	}

	if args.Len() < 2 {
		return args, call.Failf("Usage: %s", call.Usage())
	}
	name := args.NextString()
	f, res := parseFunctor(call, args)
	if res == interp.Failure {
		return args, res
	}
	f.Name = name
	functors.Put(f)
	return args, interp.Success
}

// Fun creates an anonymous functor and puts it to the destination.
func Fun(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	if res := parseDashCommands(call, args, func(string) bool { return false }); res == interp.Failure {
		return args, res
	}
	f, res := parseFunctor(call, args)
	if res == interp.Failure {
		return args, res
	}
	f.Name = "FUN"
	return args, call.PutOrFail(f)
}

// Defun names a functor held in a tuple.
func Defun(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	if res := parseDashCommands(call, args, func(dc string) bool { return dc == "-define" }); res == interp.Failure {
		return args, res
	}
	if args.Len() < 2 {
		return args, call.Failf("Usage: %s", call.Usage())
	}
	name := args.NextString()
	t := args.NextTupleOrPop()
	if t == nil {
		return args, call.Failf("No functor tuple or pop")
	}
	f, ok := t.Value().(*interp.Functor)
	if !ok {
		return args, call.Failf("Can't get FUNctor from tuple %s", t.Key())
	}
	call.In.Functors().Put(&interp.Functor{Name: name, Params: f.Params, Body: f.Body})
	return args, interp.Success
}

// CallFunctor runs a functor held in a tuple.
func CallFunctor(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	t := args.NextTupleOrPop()
	if t == nil {
		return args, call.Failf("No functor tuple or pop")
	}
	f, ok := t.Value().(*interp.Functor)
	if !ok {
		return args, call.Failf("Can't get FUNctor from tuple %s", t.Key())
	}
	actual, err := interp.ParseParamList(args)
	if err != nil {
		return args, call.Failf("Need a ( parameter list ): %v", err)
	}
	return args, call.In.ExecuteFunctor(f, actual)
}

func parseFunctor(call *interp.Call, args *interp.ArgArray) (*interp.Functor, interp.Result) {
	params, err := interp.ParseParamList(args)
	if err != nil {
		return nil, call.Failf("No parameter list found: %v", err)
	}
	block, ok := args.NextBlock()
	if !ok {
		return nil, call.Failf("No block found")
	}
	return &interp.Functor{Params: params, Body: block}, interp.Success
}

func init() {
	addCmd(
		"FUNC [-to datasink] [-list | -show name | -delete name | [-define] name ( param ... ) $[ body ]$]",
		"Define, list, show or delete a named function.",
		Func, "FUNC", "function")
	addCmd(
		"FUN [-to datasink] ( param ... ) $[ body ]$",
		"Create an anonymous functor.",
		Fun, "FUN")
	addCmd(
		"defun [-define] name @functor",
		"Define a named function from a functor.",
		Defun, "defun")
	addCmd(
		"CALL @functor ( [@param] ... )",
		"Call a functor.",
		CallFunctor, "CALL")
}
