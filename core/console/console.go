// Package console reads interpreter lines with a line editor.
package console

import (
	"io"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/ublush/core/interp"
)

// Config describes the terminal the console runs on.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal reports whether the other end is a terminal. When nil the
	// process's stdin is checked.
	IsTerminal func() bool
	// Width reports the terminal width. When nil the process's terminal is
	// queried.
	Width func() int
	// Remote terminals are put in raw mode by their client, so the local
	// terminal is left alone.
	Remote bool
}

// Console is an interp.LineReader with line editing and in-memory recall.
type Console struct {
	rl *readline.Instance
}

var _ interp.LineReader = (*Console)(nil)

// New creates a console over the configured streams.
func New(cfg Config) (*Console, error) {
	rlCfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(cfg.Stdin),
		Stdout:         cfg.Stdout,
		Stderr:         cfg.Stderr,
		FuncGetWidth:   cfg.Width,
		FuncIsTerminal: cfg.IsTerminal,
	}
	if cfg.Remote {
		rlCfg.FuncMakeRaw = func() error { return nil }
		rlCfg.FuncExitRaw = func() error { return nil }
	}
	if err := rlCfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, err
	}
	return &Console{rl: rl}, nil
}

// ReadLine implements interp.LineReader. An interrupt abandons the line
// being edited and yields an empty one.
func (c *Console) ReadLine(prompt string) (string, error) {
	c.rl.SetPrompt(prompt)
	line, err := c.rl.Readline()
	switch {
	case err == readline.ErrInterrupt:
		return "", nil
	case err != nil:
		return "", err
	}
	return line, nil
}

// Write prints above the line being edited.
func (c *Console) Write(p []byte) (int, error) {
	return c.rl.Write(p)
}

// Close restores the terminal.
func (c *Console) Close() error {
	return c.rl.Close()
}
