package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"litman/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, disk space, and the completion API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, offline)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("litman doctor", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if !preflight.Passed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the completion API check")
	return cmd
}
