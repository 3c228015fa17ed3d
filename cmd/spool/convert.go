package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/adapter"
)

func convertCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a Claude Code or Codex vendor log to .spool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			vendor, session, err := adapter.DetectAndConvert(raw)
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "detected vendor: %s\n", vendor)

			return writeSpoolFile(out, session)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "-", "Output .spool path (- for stdout)")
	return cmd
}
