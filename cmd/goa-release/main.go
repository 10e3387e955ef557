package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reactome/goa-release/internal/config"
	"github.com/reactome/goa-release/internal/goa"
	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/publish"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "goa-release",
		Short: "Reactome GO annotation file generator",
		Long:  "goa-release derives Gene Ontology annotations for curated reactions from the pathway knowledge graph and writes them as a compressed GAF 2.2 file.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		generateCmd(),
		annotateCmd(),
		healthCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newStore(logger *slog.Logger) (graph.Store, error) {
	switch backend := graph.Backend(cfg.Graph.Backend); backend {
	case graph.BackendNeo4j:
		st, err := graph.NewNeo4jStore(
			cfg.Neo4j.URI,
			cfg.Neo4j.Username,
			cfg.Neo4j.Password,
			cfg.Neo4j.Database,
			logger,
		)
		if err != nil {
			return nil, err
		}
		return st, nil
	case graph.BackendSQLite, graph.BackendPostgres:
		st, err := graph.NewSQLStore(backend, cfg.SQL.DSN, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported graph backend %q", backend)
	}
}

func newPublisher(ctx context.Context, logger *slog.Logger) (goa.Publisher, error) {
	switch publish.Driver(cfg.Publish.Driver) {
	case publish.DriverS3:
		s3cfg := publish.S3Config{
			Bucket:    cfg.Publish.S3.Bucket,
			Region:    cfg.Publish.S3.Region,
			Endpoint:  cfg.Publish.S3.Endpoint,
			Prefix:    cfg.Publish.S3.Prefix,
			PathStyle: cfg.Publish.S3.PathStyle,
		}
		pub, err := publish.NewS3Publisher(ctx, s3cfg, cfg.Release.Number, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return publish.NewFilesystemPublisher(cfg.Release.OutputDir, cfg.Release.Number, logger), nil
	}
}
