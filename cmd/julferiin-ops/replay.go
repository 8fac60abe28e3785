package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"julferiin-ops/internal/logging"
	"julferiin-ops/internal/logistics"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a position log file",
	Long:  "replay feeds position rows from a JSONL log file back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, err := newPositionWriter(replayPrintOnly)
		if err != nil {
			return err
		}
		log := logging.New()
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		n, err := logistics.ReplayLogFile(logging.NewContext(ctx, log), replayInput, writer, replaySpeed)
		log.Info("replay finished", "input", replayInput, "rows", n)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to position log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print positions to STDOUT instead of writing to GreptimeDB")
	replayCmd.MarkFlagRequired("input")
}
