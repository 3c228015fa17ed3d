package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asbjornb/spool/internal/format"
)

func annotateCmd() *cobra.Command {
	var out, target, content, style string

	cmd := &cobra.Command{
		Use:   "annotate <file>",
		Short: "Attach a human note to an entry in a .spool file",
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
			annotated := session.Annotate(target, content, format.AnnotationStyle(style))
			return writeSpoolFile(out, annotated)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "-", "Output .spool path (- for stdout)")
	cmd.Flags().StringVar(&target, "target", "", "Entry id to annotate")
	cmd.Flags().StringVar(&content, "content", "", "Annotation text")
	cmd.Flags().StringVar(&style, "style", string(format.AnnotationComment), "Annotation style")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("content")
	return cmd
}
