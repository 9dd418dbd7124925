package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"litman/internal/logging"
	"litman/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		itemID int64
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the litman log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			filter := logs.ItemFilter(itemID)
			out := cmd.OutOrStdout()

			tail, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return logs.Follow(runCtx, path, offset, logs.DefaultPollInterval, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().Int64Var(&itemID, "item", 0, "Only show lines for this item id")
	return cmd
}
