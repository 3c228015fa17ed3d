package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "spool",
		Short:   "Spool - record, inspect, and replay AI agent sessions",
		Version: version,
	}

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(redactCmd())
	rootCmd.AddCommand(trimCmd())
	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(playCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(cacheCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
