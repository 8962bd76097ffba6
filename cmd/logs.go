package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/josephlewis42/ublush/core/logger"
	"github.com/josephlewis42/ublush/core/ttylog"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log", "events"},
	Short:   "Explore the session event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of session events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}
		if config.EventLog == "" {
			return fmt.Errorf("event_log is not configured")
		}

		fd, err := config.ReadEventLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

var listRecordingsCommand = &cobra.Command{
	Use:   "list",
	Short: "List recorded session transcripts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}
		names, err := config.ListRecordings()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var playRecordingCommand = &cobra.Command{
	Use:   "play RECORDING",
	Short: "Replay what the client saw during a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}
		fd, err := config.Fs().Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		maxWait, err := cmd.Flags().GetDuration("max-wait")
		if err != nil {
			return err
		}

		return playRecording(fd, cmd.OutOrStdout(), maxWait)
	},
}

func playRecording(r io.Reader, w io.Writer, maxWait time.Duration) error {
	src := ttylog.NewAsciicastLogSource(r)
	return ttylog.Replay(src, ttylog.NewRealTimePlayback(maxWait, ttylog.NewClientOutput(w)))
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCommand)
	logsCmd.AddCommand(listRecordingsCommand)
	logsCmd.AddCommand(playRecordingCommand)

	playRecordingCommand.Flags().Duration("max-wait", time.Second, "Longest pause between outputs, 0 plays instantly.")
}
