package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/asbjornb/spool/internal/cache"
	"github.com/asbjornb/spool/internal/config"
	"github.com/asbjornb/spool/internal/discover"
	"github.com/asbjornb/spool/internal/tui"
)

const (
	bColorReset   = "\033[0m"
	bColorBoldRed = "\033[1;31m"
	bColorDim     = "\033[2m"
)

func browseCmd() *cobra.Command {
	var list bool
	var vendor, entryType, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "browse [query]",
		Short: "Interactively browse and search indexed sessions",
		Long: `Browse launches an interactive TUI when stdout is a terminal.
When stdout is piped, browse instead prints TSV search hits:
  sessionKey, seq, ts, type, agent, recordedAt, snippet`,
		Args: cobra.MaximumNArgs(1),
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
				return fmt.Errorf("rebuild cache: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "cache: %s\n", stats)

			// Interactive TUI when stdout is a terminal; TSV output for pipes.
			if term.IsTerminal(int(os.Stdout.Fd())) {
				if list || len(args) == 0 {
					return tui.RunList(db)
				}
				return tui.Run(db, args[0])
			}

			if len(args) == 0 {
				return fmt.Errorf("query required when stdout is not a terminal")
			}

			hits, err := db.Search(cache.SearchOptions{
				Query:  args[0],
				Vendor: vendor,
				Type:   entryType,
				Since:  since,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, h := range hits {
				snippet := strings.ReplaceAll(h.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				fmt.Printf("%s\t%d\t%d\t%s\t%s\t%s%s%s\t%s\n",
					h.SessionKey, h.Seq, h.Ts, h.Type, h.Agent,
					bColorDim, h.RecordedAt, bColorReset,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Browse all sessions instead of searching")
	cmd.Flags().StringVar(&vendor, "vendor", "", "Filter by vendor (claude/codex/spool)")
	cmd.Flags().StringVar(&entryType, "type", "", "Filter by entry type")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions recorded since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	return cmd
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, "[", bColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "]", bColorReset)
	return snippet
}
