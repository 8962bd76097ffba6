package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

// DefaultHistoryFile is used by "history -on" when no file was named.
const DefaultHistoryFile = "history.txt"

type historyOp int

const (
	historyShow historyOp = iota
	historyOn
	historyOff
	historyHead
	historyTail
	historyRange
	historyName
	historyDo
)

// History manages and replays the line history.
func History(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	in := call.In
	op := historyShow
	var fileName string
	var first, last int
	var changeFrom, changeTo string
	var badArg string

	nextInt := func(dc string) int {
		n, err := args.NextInt()
		if err != nil {
			badArg = dc
		}
		return n
	}

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-on":
			op = historyOn
		case "-off":
			op = historyOff
		case "-onfile":
			op = historyOn
			fileName = args.NextString()
		case "-show":
			op = historyShow
		case "-head":
			op, first = historyHead, nextInt(dc)
		case "-tail":
			op, first = historyTail, nextInt(dc)
		case "-range":
			op = historyRange
			first, last = nextInt(dc), nextInt(dc)
		case "-name":
			op = historyName
		case "-do":
			op, first = historyDo, nextInt(dc)
		case "-change":
			changeFrom, _ = args.NextMaybeQuotationTuplePopString()
			changeTo, _ = args.NextMaybeQuotationTuplePopString()
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if badArg != "" {
		return args, call.Failf("Bad or missing argument to %s", badArg)
	}

	switch op {
	case historyOn:
		if fileName == "" {
			fileName = DefaultHistoryFile
			if h := in.History(); h != nil {
				fileName = h.Name()
			}
		}
		in.SetHistory(interp.NewFileHistory(in.Fs(), fileName))
		return args, interp.Success
	case historyOff:
		in.SetHistory(nil)
		return args, interp.Success
	}

	h := in.History()
	if h == nil {
		return args, call.Failf("History is not enabled (try history -on)")
	}
	if op == historyName {
		return args, call.PutOrFail(h.Name())
	}

	lines, err := h.Lines()
	if err != nil {
		return args, call.Failf("Couldn't read history: %v", err)
	}

	// Line numbers are one based.
	from, to := 1, len(lines)
	switch op {
	case historyHead:
		to = min(first, len(lines))
	case historyTail:
		from = max(1, len(lines)-first+1)
	case historyRange:
		from, to = max(1, first), min(last, len(lines))
	case historyDo:
		if first < 1 || first > len(lines) {
			return args, call.Failf("No history line %d", first)
		}
		line := lines[first-1]
		if changeFrom != "" {
			line = strings.Replace(line, changeFrom, changeTo, 1)
		}
		args.PushFront(interp.Split(line)...)
		return args, interp.Success
	}

	var sb strings.Builder
	for i := from; i <= to; i++ {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d %s", i, lines[i-1])
	}
	return args, call.PutOrFail(sb.String())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func init() {
	addCmd(
		"history [-to datasink] [-on | -off | -onfile name | -show | -head n | -tail n | -range first last | -name | -do n [-change from to]]",
		"Manage and replay the command history.",
		History, "history", "h")
}
