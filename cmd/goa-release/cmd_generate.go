package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactome/goa-release/internal/gaf"
	"github.com/reactome/goa-release/internal/goa"
	"github.com/reactome/goa-release/internal/metrics"
)

func generateCmd() *cobra.Command {
	var (
		release   string
		outputDir string
		workers   int
		onError   string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the GO annotation file for a release",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("release") {
				cfg.Release.Number = release
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Release.OutputDir = outputDir
			}
			if cmd.Flags().Changed("workers") {
				cfg.Generation.Workers = workers
			}
			if cmd.Flags().Changed("on-event-error") {
				cfg.Generation.OnEventError = onError
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			if !dryRun {
				if err := cfg.ValidateRelease(); err != nil {
					return fmt.Errorf("generate: %w", err)
				}
			}

			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("generate: connecting to graph: %w", err)
			}
			defer func() { _ = st.Close() }()

			var (
				writer    goa.AnnotationWriter
				publisher goa.Publisher
			)
			if !dryRun {
				writer = gaf.NewWriter(cfg.Release.StagingDir, logger)
				publisher, err = newPublisher(ctx, logger)
				if err != nil {
					return fmt.Errorf("generate: creating publisher: %w", err)
				}
			}

			run := metrics.NewRun()
			gen := goa.NewGenerator(st, writer, publisher, goa.Options{
				Workers:  cfg.Generation.Workers,
				OnError:  goa.ErrorPolicy(cfg.Generation.OnEventError),
				DryRun:   dryRun,
				Recorder: run,
			}, logger)

			report, runErr := gen.Run(ctx)
			if cfg.Metrics.Textfile != "" {
				if err := run.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					logger.Warn("metrics textfile not written", "error", err)
				}
			}
			if runErr != nil {
				return fmt.Errorf("generate: %w", runErr)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&release, "release", "", "release number (overrides release.number)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "release output root (overrides release.output_dir)")
	cmd.Flags().IntVar(&workers, "workers", 1, "events processed concurrently")
	cmd.Flags().StringVar(&onError, "on-event-error", "abort", "abort or skip when an event fails")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute annotations without writing or publishing")
	return cmd
}
