package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/cache"
	"github.com/asbjornb/spool/internal/config"
	"github.com/asbjornb/spool/internal/discover"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify roots, cache DB, and FTS5 sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "=== Roots ===")
			checkDir(out, "Claude", cfg.ClaudeRoot)
			checkDir(out, "Codex", cfg.CodexRoot)
			for i, d := range cfg.SpoolDirs {
				checkDir(out, fmt.Sprintf("Spool[%d]", i), d)
			}

			fmt.Fprintln(out, "\n=== File Discovery ===")
			files, err := discover.Walk(discover.Roots{ClaudeRoot: cfg.ClaudeRoot, CodexRoot: cfg.CodexRoot})
			if err != nil {
				fmt.Fprintf(out, "  discover error: %v\n", err)
			} else {
				claudeCount, codexCount := 0, 0
				for _, f := range files {
					if f.Vendor == discover.VendorClaude {
						claudeCount++
					} else {
						codexCount++
					}
				}
				fmt.Fprintf(out, "  Claude JSONL files: %d\n", claudeCount)
				fmt.Fprintf(out, "  Codex  JSONL files: %d\n", codexCount)
			}

			fmt.Fprintln(out, "\n=== Cache ===")
			fmt.Fprintf(out, "  Path: %s\n", cfg.CachePath)
			if _, err := os.Stat(cfg.CachePath); os.IsNotExist(err) {
				fmt.Fprintln(out, "  Status: NOT FOUND (run 'spool cache rebuild' first)")
				return nil
			}

			db, err := cache.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer db.Close()

			sessionCount, err := db.SessionCount()
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			entryCount, err := db.EntryCount()
			if err != nil {
				return fmt.Errorf("count entries: %w", err)
			}
			fmt.Fprintf(out, "  Sessions: %d\n", sessionCount)
			fmt.Fprintf(out, "  Entries:  %d\n", entryCount)

			fmt.Fprintln(out, "\n=== FTS5 ===")
			var ftsCount int
			if err := db.Raw().QueryRow("SELECT COUNT(*) FROM entries_fts").Scan(&ftsCount); err != nil {
				fmt.Fprintf(out, "  FTS5 error: %v\n", err)
			} else {
				fmt.Fprintf(out, "  FTS5 entries: %d\n", ftsCount)
				if ftsCount == entryCount {
					fmt.Fprintln(out, "  Status: OK (synced)")
				} else {
					fmt.Fprintf(out, "  Status: MISMATCH (entries=%d, fts=%d)\n", entryCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.CachePath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Fprintf(out, "\n=== Cache Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(out io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Fprintf(out, "  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(out, "  %s: %s (OK)\n", name, path)
	}
}
