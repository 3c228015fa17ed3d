package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/cache"
	"github.com/asbjornb/spool/internal/config"
	"github.com/asbjornb/spool/internal/discover"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local sqlite session cache",
	}
	cmd.AddCommand(cacheRebuildCmd())
	cmd.AddCommand(cacheStatsCmd())
	return cmd
}

func cacheRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Re-scan configured roots and refresh the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			db, err := cache.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer db.Close()

			stats, err := cache.Rebuild(db, discover.Roots{ClaudeRoot: cfg.ClaudeRoot, CodexRoot: cfg.CodexRoot}, cfg.SpoolDirs)
			if err != nil {
				return fmt.Errorf("rebuild: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", stats)
			return nil
		},
	}
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show session and entry counts in the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			db, err := cache.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer db.Close()

			sessions, err := db.SessionCount()
			if err != nil {
				return err
			}
			entries, err := db.EntryCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sessions: %d\nentries:  %d\n", sessions, entries)
			return nil
		},
	}
}
