package commands

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/ublush/core/interp"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-8][0-8]?[0-8]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// String does string operations. Operands may be literals, quotations,
// constants, tuples or pops.
func String(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	var result func() (interface{}, error)

	next := func() string {
		s, _ := args.NextMaybeQuotationTuplePopString()
		return s
	}
	nextInt := func() (int, error) {
		return strconv.Atoi(strings.TrimSpace(next()))
	}

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-cat":
			a, b := next(), next()
			result = func() (interface{}, error) { return a + b, nil }
		case "-eq":
			a, b := next(), next()
			result = func() (interface{}, error) { return a == b, nil }
		case "-len":
			a := next()
			result = func() (interface{}, error) { return len(a), nil }
		case "-trim":
			a := next()
			result = func() (interface{}, error) { return strings.TrimSpace(a), nil }
		case "-upper":
			a := next()
			result = func() (interface{}, error) { return strings.ToUpper(a), nil }
		case "-lower":
			a := next()
			result = func() (interface{}, error) { return strings.ToLower(a), nil }
		case "-nl":
			result = func() (interface{}, error) { return "\n", nil }
		case "-new":
			result = func() (interface{}, error) { return "", nil }
		case "-startswith":
			a, b := next(), next()
			result = func() (interface{}, error) { return strings.HasPrefix(a, b), nil }
		case "-repl":
			a, old, repl := next(), next(), next()
			result = func() (interface{}, error) { return strings.ReplaceAll(a, old, repl), nil }
		case "-repl1":
			a, old, repl := next(), next(), next()
			result = func() (interface{}, error) { return strings.Replace(a, old, repl, 1), nil }
		case "-replregx":
			a, expr, repl := next(), next(), next()
			result = func() (interface{}, error) {
				re, err := regexp.Compile(expr)
				if err != nil {
					return nil, err
				}
				return re.ReplaceAllString(a, repl), nil
			}
		case "-sub", "-substr":
			a := next()
			start, err1 := nextInt()
			end, err2 := nextInt()
			result = func() (interface{}, error) {
				switch {
				case err1 != nil:
					return nil, err1
				case err2 != nil:
					return nil, err2
				case start < 0 || end > len(a) || start > end:
					return nil, strconv.ErrRange
				}
				return a[start:end], nil
			}
		case "-unescape":
			a := next()
			result = func() (interface{}, error) { return unescape(a), nil }
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if result == nil {
		return args, call.Failf("Usage: %s", call.Usage())
	}

	v, err := result()
	if err != nil {
		return args, call.Failf("%v", err)
	}
	return args, call.PutOrFail(v)
}

func init() {
	addCmd(
		"string [-to datasink] -cat a b | -eq a b | -len a | -trim a | -upper a | -lower a | -nl | -new | -startswith a prefix | -repl a old new | -repl1 a old new | -replregx a regex new | -sub a start end | -unescape a",
		"String operations.",
		String, "string")
}
