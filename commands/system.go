package commands

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/sink"
)

// System runs a host command line and puts its combined output.
func System(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	res := parseDashCommands(call, args, func(dc string) bool {
		if dc != "-from" {
			return false
		}
		call.SetSrcFromArgs(args)
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	var line string
	switch call.Src.Kind {
	case sink.Std:
		s, ok := args.NextMaybeQuotationTuplePopString()
		if !ok {
			return args, call.Failf("No command line given")
		}
		line = s
	case sink.File, sink.Tuple:
		s, err := call.In.GetString(call.Src)
		if err != nil {
			return args, call.Failf("Error reading command line from %s: %v", call.Src, err)
		}
		line = s
	default:
		return args, call.Failf("Unsupported data source %s", call.Src)
	}

	argv, err := shlex.Split(strings.TrimSpace(line), true)
	if err != nil {
		return args, call.Failf("Error parsing command line: %v", err)
	}
	if len(argv) == 0 {
		return args, call.Failf("Empty command line")
	}

	var out bytes.Buffer
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return args, call.Failf("Error executing system command: %v", err)
		}
		call.Log().Info("%s exited with code %d", argv[0], exitErr.ExitCode())
	}
	return args, call.PutOrFail(strings.TrimSuffix(out.String(), "\n"))
}

func init() {
	addCmd(
		"system [-to datasink] [-from datasink] ${ command line }$",
		"Run a host command and put its output.",
		System, "system")
}
