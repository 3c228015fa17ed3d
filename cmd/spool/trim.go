package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trimCmd() *cobra.Command {
	var out string
	var startMs, endMs int64

	cmd := &cobra.Command{
		Use:   "trim <file>",
		Short: "Narrow a .spool file to entries within [start,end] ms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			session, err := readSpoolFile(path)
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			trimmed := session.Trim(startMs, endMs)
			return writeSpoolFile(out, trimmed)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "-", "Output .spool path (- for stdout)")
	cmd.Flags().Int64Var(&startMs, "start", 0, "Keep entries at or after this ms offset")
	cmd.Flags().Int64Var(&endMs, "end", 1<<62, "Keep entries at or before this ms offset")
	return cmd
}
