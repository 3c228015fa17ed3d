package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/tui"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Replay a .spool session in the terminal with time-compressed pacing",
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
			return tui.RunPlay(session)
		},
	}
	return cmd
}
