package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

// Help describes one command or lists them all.
func Help(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	printer := &ColorPrinter{Mode: colorAuto, W: call.In.Stdout()}
	var name string

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-cmd":
			name = args.NextString()
		case "-all":
			name = ""
		case "-color":
			printer.Mode = args.NextString()
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}

	var entries []*interp.CommandEntry
	if name != "" {
		e, ok := call.In.Commands().Get(name)
		if !ok {
			return args, call.Failf("Command %q not found.", name)
		}
		entries = append(entries, e)
	} else {
		entries = call.In.Commands().Entries()
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(printer.Sprintf(ColorBoldBlue, "%s", strings.Join(e.Names, ", ")))
		fmt.Fprintf(&sb, "\n  usage: %s\n  %s", e.Use, e.Short)
	}
	return args, call.PutOrFail(sb.String())
}

func init() {
	addCmd(
		"help [-to datasink] [-color always|auto|never] [-all | -cmd name]",
		"Display usage for commands.",
		Help, "help", "usage")
}
