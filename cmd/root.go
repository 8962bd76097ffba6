package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"

	"github.com/josephlewis42/ublush/commands"
	"github.com/josephlewis42/ublush/core/config"
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var cfgPath string

// loadConfig reads the configuration from cfgPath, falling back to the
// built-in defaults when none has been initialized.
func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("No config found, using defaults (run init to write one)")
		return config.Default(), nil
	}

	return configuration, err
}

// newInterpreter builds a top-level interpreter from the configuration.
func newInterpreter(cfg *config.Configuration, stdin io.Reader, stdout, stderr io.Writer, extra ...interp.Option) *interp.Interpreter {
	if stderr == nil {
		stderr = io.Discard
	}
	appLog := logger.New(stderr)

	mode := interp.Unguarded
	if cfg.SynchronizedScope {
		mode = interp.Guarded
	}

	opts := []interp.Option{
		interp.WithIO(stdin, stdout, stderr),
		interp.WithFs(afero.NewOsFs()),
		interp.WithLogger(appLog),
		interp.WithScopeMode(mode),
		interp.WithIntroducers(cfg.OptionIntroducers),
		interp.WithIncludePath(cfg.IncludePath...),
		interp.WithEchoInclude(cfg.EchoInclude),
		interp.WithPrompt(cfg.Prompt, false),
		interp.WithDebugger(interp.NewDebugger(cfg.Dbug.ShareHostScope)),
	}
	if cfg.HistoryFile != "" {
		opts = append(opts, interp.WithHistory(interp.NewFileHistory(cfg.Fs(), cfg.HistoryFile)))
	}

	return interp.New(commands.AllCommands, append(opts, extra...)...)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ublush",
	Short: "Command interpreter with tuples, functors and network sessions",
	Long: `An interpreter for a small postfix-free command language with tuple
variables, a tuple stack, functors and interpreter sessions served over
TCP, TLS or SSH.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
