package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reactome/goa-release/internal/gaf"
	"github.com/reactome/goa-release/internal/goa"
)

func annotateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "annotate [db-id]",
		Short: "Print the annotation lines of a single reaction-like event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("annotate: invalid db-id %q: %w", args[0], err)
			}

			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("annotate: connecting to graph: %w", err)
			}
			defer func() { _ = st.Close() }()

			gen := goa.NewGenerator(st, nil, nil, goa.Options{}, logger)
			event, err := gen.FindEvent(ctx, dbID)
			if err != nil {
				return fmt.Errorf("annotate: %w", err)
			}
			result, err := gen.AnnotateEvent(ctx, event)
			if err != nil {
				return fmt.Errorf("annotate: %w", err)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			case "gaf":
				if result.Inferred {
					fmt.Fprintf(os.Stderr, "%s is electronically inferred; no annotations\n", event)
				}
				for _, l := range result.Lines {
					fmt.Println(gaf.FormatRecord(l.Line, l.Date))
				}
				return nil
			default:
				return fmt.Errorf("annotate: unsupported format %q (use gaf or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "gaf", "output format: gaf or json")
	return cmd
}
