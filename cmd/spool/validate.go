package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/format"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a .spool file's structural invariants",
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

			result := format.Validate(session, format.DefaultValidationOptions())
			for _, v := range result.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", v)
			}
			for _, v := range result.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", v)
			}

			if !result.IsValid() {
				os.Exit(1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entries, %d warnings\n", len(session.Entries), len(result.Warnings))
			return nil
		},
	}
	return cmd
}
