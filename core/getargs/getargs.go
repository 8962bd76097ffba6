// Package getargs classifies the lexemes of a command line into
// dash-introduced options and plain positional arguments.
package getargs

import (
	"fmt"
	"strings"
)

// DefaultIntroducers is the option introducer set used when none is given.
const DefaultIntroducers = "-"

// Argument is a single recorded lexeme: either a plain positional value or an
// option paired with its optional argument.
type Argument struct {
	option   string
	isOption bool
	argument string
	hasArg   bool
	position int
}

// Option returns the option text (introducer plus letter) and whether this
// Argument is an option at all.
func (a Argument) Option() (string, bool) {
	return a.option, a.isOption
}

// Argument returns the option's argument or the plain value.
func (a Argument) Argument() (string, bool) {
	return a.argument, a.hasArg
}

// Position is the 0-based index of the Argument among all recorded lexemes.
func (a Argument) Position() int {
	return a.position
}

// IsOption is true if the Argument came from an option lexeme.
func (a Argument) IsOption() bool {
	return a.isOption
}

func (a Argument) String() string {
	switch {
	case a.isOption && a.hasArg:
		return fmt.Sprintf("%s %s", a.option, a.argument)
	case a.isOption:
		return a.option
	default:
		return a.argument
	}
}

// GetArgs holds the result of parsing a line of lexemes.
type GetArgs struct {
	introducers string
	options     []Argument
	arguments   []Argument
}

// Parse classifies lexemes into options and arguments. An empty introducers
// string selects DefaultIntroducers.
//
// Option processing stops at the first plain lexeme or at a double
// introducer such as "--", which is itself discarded. An option longer than
// two characters carries its argument attached; otherwise the next lexeme is
// its argument unless it too begins with an introducer. A following lexeme
// whose first two characters are both introducers marks an explicit empty
// argument and is skipped.
func Parse(lexemes []string, introducers string) *GetArgs {
	if introducers == "" {
		introducers = DefaultIntroducers
	}

	ga := &GetArgs{introducers: introducers}
	lastOptionSeen := false
	position := 0

	for i := 0; i < len(lexemes); i++ {
		lexeme := []rune(strings.TrimSpace(lexemes[i]))

		if lastOptionSeen || len(lexeme) == 0 || !ga.isIntroducer(lexeme[0]) {
			lastOptionSeen = true
			ga.arguments = append(ga.arguments, Argument{
				argument: string(lexeme),
				hasArg:   true,
				position: position,
			})
			position++
			continue
		}

		if ga.isDoubleIntroducer(lexeme) {
			lastOptionSeen = true
			continue
		}

		opt := Argument{isOption: true, position: position}
		if len(lexeme) > 2 {
			opt.option = string(lexeme[:2])
			opt.argument = string(lexeme[2:])
			opt.hasArg = true
		} else {
			opt.option = string(lexeme)
			if i+1 < len(lexemes) {
				next := []rune(strings.TrimSpace(lexemes[i+1]))
				switch {
				case len(next) > 0 && ga.isIntroducer(next[0]):
					if ga.isDoubleIntroducer(next) {
						i++
					}
				default:
					opt.argument = string(next)
					opt.hasArg = true
					i++
				}
			}
		}

		ga.options = append(ga.options, opt)
		position++
	}

	return ga
}

func (ga *GetArgs) isIntroducer(r rune) bool {
	return strings.ContainsRune(ga.introducers, r)
}

func (ga *GetArgs) isDoubleIntroducer(lexeme []rune) bool {
	return len(lexeme) > 1 && ga.isIntroducer(lexeme[0]) && ga.isIntroducer(lexeme[1])
}

// Options returns the options in line order.
func (ga *GetArgs) Options() []Argument {
	return ga.options
}

// Arguments returns the plain arguments in line order.
func (ga *GetArgs) Arguments() []Argument {
	return ga.arguments
}

// OptionCount is the number of options recorded.
func (ga *GetArgs) OptionCount() int {
	return len(ga.options)
}

// ArgumentCount is the number of plain arguments recorded.
func (ga *GetArgs) ArgumentCount() int {
	return len(ga.arguments)
}

// ContainsOpt reports whether an option with the given text was seen.
func (ga *GetArgs) ContainsOpt(option string) bool {
	_, ok := ga.Opt(option)
	return ok
}

// Opt returns the first option matching the given text.
func (ga *GetArgs) Opt(option string) (Argument, bool) {
	for _, o := range ga.options {
		if o.option == option {
			return o, true
		}
	}
	return Argument{}, false
}

// NthArgument returns the plain argument at index n.
func (ga *GetArgs) NthArgument(n int) (string, bool) {
	if n < 0 || n >= len(ga.arguments) {
		return "", false
	}
	return ga.arguments[n].argument, true
}

// String renders options then arguments, space separated.
func (ga *GetArgs) String() string {
	var parts []string
	for _, o := range ga.options {
		parts = append(parts, o.String())
	}
	for _, a := range ga.arguments {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}
