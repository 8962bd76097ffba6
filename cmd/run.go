package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/josephlewis42/ublush/core/console"
	"github.com/josephlewis42/ublush/core/getargs"
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const startupMessage = "ublush interpreter. Type help for help, bye to leave."

// launcher holds the run command's options.
type launcher struct {
	configDir string
	includes  []string
	silent    bool
	line      []string
}

// parseLauncher reads "[-c dir] [-i script]... [-s] [--] [command ...]".
// A flag option that took the following lexeme as its argument hands it back
// to the command line.
func parseLauncher(args []string) (*launcher, error) {
	ga := getargs.Parse(args, getargs.DefaultIntroducers)

	type word struct {
		pos  int
		text string
	}
	var words []word

	l := &launcher{}
	for _, opt := range ga.Options() {
		name, _ := opt.Option()
		arg, hasArg := opt.Argument()

		switch name {
		case "-c":
			if !hasArg {
				return nil, fmt.Errorf("%s needs a directory", name)
			}
			l.configDir = arg
		case "-i":
			if !hasArg {
				return nil, fmt.Errorf("%s needs a script", name)
			}
			l.includes = append(l.includes, arg)
		case "-s":
			l.silent = true
			if hasArg {
				words = append(words, word{opt.Position(), arg})
			}
		default:
			return nil, fmt.Errorf("unknown option %s", opt)
		}
	}
	for _, a := range ga.Arguments() {
		text, _ := a.Argument()
		words = append(words, word{a.Position(), text})
	}

	sort.SliceStable(words, func(i, j int) bool { return words[i].pos < words[j].pos })
	for _, w := range words {
		l.line = append(l.line, w.text)
	}
	return l, nil
}

// interactive is true when there's nothing to run but the input.
func (l *launcher) interactive() bool {
	return len(l.includes) == 0 && len(l.line) == 0
}

// run includes each script, then runs the command line, or interprets the
// input when given neither. It returns the exit code.
func (l *launcher) run(in *interp.Interpreter) int {
	for _, script := range l.includes {
		if in.Include(script) == interp.Failure {
			return int(interp.Failure)
		}
		if in.IsGoodbye() {
			return in.ExitCode()
		}
	}

	switch {
	case len(l.line) > 0:
		in.RunLine(strings.Join(l.line, " "))
		return in.ExitCode()
	case len(l.includes) > 0:
		return in.ExitCode()
	default:
		return in.Interpret()
	}
}

var runCmd = &cobra.Command{
	Use:   "run [-c configdir] [-i script]... [-s] [--] [command ...]",
	Short: "Run the interpreter on scripts, a command line or the terminal.",
	Long: `Run includes each -i script in order, then runs the remaining arguments
as one command line. With neither it reads commands from standard input,
with line editing when that is a terminal. -s suppresses the prompt and
banner.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		code, err := runLauncher(cmd, args)
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func runLauncher(cmd *cobra.Command, args []string) (int, error) {
	l, err := parseLauncher(args)
	if err != nil {
		return 0, err
	}
	if l.configDir != "" {
		cfgPath = l.configDir
	}

	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}

	stdin := cmd.InOrStdin()
	var extra []interp.Option
	if f, ok := stdin.(*os.File); ok && l.interactive() && term.IsTerminal(int(f.Fd())) {
		c, err := console.New(console.Config{
			Stdin:  f,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err != nil {
			return 0, err
		}
		defer c.Close()

		extra = append(extra,
			interp.WithLineReader(c),
			interp.WithPrompt(cfg.Prompt, !l.silent))
		if !l.silent {
			fmt.Fprintln(cmd.ErrOrStderr(), startupMessage)
		}
	}

	in := newInterpreter(cfg, stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), extra...)
	return l.run(in), nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
