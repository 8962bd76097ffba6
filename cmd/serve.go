package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/josephlewis42/ublush/core/config"
	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/logger"
	"github.com/josephlewis42/ublush/core/server"
	"github.com/spf13/cobra"
)

// listenerOptions maps the configuration onto listener options.
func listenerOptions(cfg *config.Configuration, events io.Writer) ([]server.Option, error) {
	opts := []server.Option{
		server.WithAddress(cfg.Address),
		server.WithPort(cfg.Port),
		server.WithAcceptTimeout(cfg.AcceptTimeout()),
		server.WithRateLimit(cfg.OutputRateBytesPerSec),
	}

	switch cfg.Transport {
	case config.TransportTLS:
		tlsConfig, err := cfg.TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("loading TLS certificate: %w", err)
		}
		opts = append(opts, server.WithTLS(tlsConfig))
	case config.TransportSSH:
		opts = append(opts, server.WithSSH(&server.SSHConfig{
			HostKeyFile: cfg.SSH.HostKeyFile,
			Passwords:   cfg.SSH.Passwords,
		}))
	}

	switch cfg.SessionScope {
	case config.ScopeChained:
		opts = append(opts, server.WithScopePolicy(server.Chained))
	case config.ScopeShared:
		opts = append(opts, server.WithScopePolicy(server.Shared))
	default:
		opts = append(opts, server.WithScopePolicy(server.Standalone))
	}

	if cfg.SynchronizedScope {
		opts = append(opts, server.WithScopeMode(interp.Guarded))
	}
	opts = append(opts, server.WithSandbox(cfg.SandboxSessions))

	if events != nil {
		opts = append(opts, server.WithEventLog(logger.NewJSONLinesEventLog(events)))
	}
	if cfg.RecordingsDir != "" {
		opts = append(opts, server.WithRecordings(cfg.OpenRecording))
	}
	return opts, nil
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve interpreter sessions on the configured port.",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Stdin.Close()
		cmd.SilenceUsage = true
		log.Println("Initializing server...")

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		var events io.Writer
		if configuration.EventLog != "" {
			log.Println("Opening event log...")
			fd, err := configuration.OpenEventLog()
			if err != nil {
				return err
			}
			defer fd.Close()
			events = fd
		}

		opts, err := listenerOptions(configuration, events)
		if err != nil {
			return err
		}

		parent := newInterpreter(configuration, nil, cmd.OutOrStdout(), cmd.ErrOrStderr())
		listener := server.NewListener(parent, opts...)
		if err := listener.Start(); err != nil {
			return err
		}
		log.Printf("Listening for %s sessions on %v", listener.Transport(), listener.Addr())

		sigs := make(chan os.Signal, 1)

		log.Println("- Starting interrupt handler")
		signal.Notify(sigs, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigs:
			log.Printf("Got signal %q, terminating...", sig)
		case <-listener.Done():
			log.Println("Listener stopped")
		}

		listener.Stop()
		log.Printf("Server exited after %d sessions", listener.SpawnCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
