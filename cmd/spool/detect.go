package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/adapter"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Report which adapter converts a log, without writing the converted output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			vendor, _, err := adapter.DetectAndConvert(raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), vendor)
			return nil
		},
	}
	return cmd
}
