package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/redact"
)

func redactCmd() *cobra.Command {
	var out string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "redact <file>",
		Short: "Find and replace secret-shaped spans in a .spool file",
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

			findings := redact.Detect(session)
			for _, f := range findings {
				entryID := session.Entries[f.EntryIndex].EntryID()
				fmt.Fprintf(cmd.ErrOrStderr(), "found %s in entry %s at [%d,%d)\n", f.Category, entryID, f.Start, f.End)
			}
			if dryRun {
				return nil
			}

			redacted := redact.ApplyRedactions(session, findings)
			return writeSpoolFile(out, redacted)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "-", "Output .spool path (- for stdout)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report findings, don't rewrite")
	return cmd
}
