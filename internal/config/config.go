package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultWorkers processes events sequentially.
	DefaultWorkers = 1

	// MaxWorkers bounds parallel event processing.
	MaxWorkers = 64
)

// Config holds all configuration for goa-release.
type Config struct {
	Graph      GraphConfig      `mapstructure:"graph"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	SQL        SQLConfig        `mapstructure:"sql"`
	Release    ReleaseConfig    `mapstructure:"release"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Generation GenerationConfig `mapstructure:"generation"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// GraphConfig selects the knowledge graph backend.
type GraphConfig struct {
	Backend string `mapstructure:"backend"`
}

// Neo4jConfig holds graph database connection settings.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// String returns a safe representation of Neo4jConfig with the password masked.
func (c Neo4jConfig) String() string {
	return fmt.Sprintf("Neo4jConfig{URI:%s, Username:%s, Password:%s, Database:%s}",
		c.URI, c.Username, maskSecret(c.Password), c.Database)
}

// SQLConfig holds the relational snapshot DSN: a file path for sqlite, a URL for postgres.
type SQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ReleaseConfig identifies the release being built and where files go.
type ReleaseConfig struct {
	Number     string `mapstructure:"number"`
	OutputDir  string `mapstructure:"output_dir"`
	StagingDir string `mapstructure:"staging_dir"`
}

// PublishConfig selects where the compressed file is relocated to.
type PublishConfig struct {
	Driver string   `mapstructure:"driver"`
	S3     S3Config `mapstructure:"s3"`
}

// S3Config holds object storage settings. Credentials come from the AWS default chain.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle bool   `mapstructure:"path_style"`
}

// GenerationConfig tunes the generator.
type GenerationConfig struct {
	Workers      int    `mapstructure:"workers"`
	OnEventError string `mapstructure:"on_event_error"`
}

// MetricsConfig controls the Prometheus textfile output. Empty disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// maskSecret shows first 2 + last 2 chars, replacing the middle with asterisks.
func maskSecret(s string) string {
	const visible = 2
	if len(s) <= visible*2 {
		return "***"
	}
	return s[:visible] + "****" + s[len(s)-visible:]
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".goa-release"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("GOA_RELEASE")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("neo4j.password", "NEO4J_PASSWORD", "GOA_RELEASE_NEO4J_PASSWORD")
	_ = v.BindEnv("neo4j.uri", "GOA_RELEASE_NEO4J_URI")
	_ = v.BindEnv("sql.dsn", "GOA_RELEASE_SQL_DSN")
	_ = v.BindEnv("graph.backend", "GOA_RELEASE_GRAPH_BACKEND")
	_ = v.BindEnv("release.number", "GOA_RELEASE_RELEASE_NUMBER")
	_ = v.BindEnv("release.output_dir", "GOA_RELEASE_RELEASE_OUTPUT_DIR")
	_ = v.BindEnv("publish.driver", "GOA_RELEASE_PUBLISH_DRIVER")
	_ = v.BindEnv("publish.s3.bucket", "GOA_RELEASE_PUBLISH_S3_BUCKET")
	_ = v.BindEnv("publish.s3.endpoint", "GOA_RELEASE_PUBLISH_S3_ENDPOINT")
	_ = v.BindEnv("generation.workers", "GOA_RELEASE_GENERATION_WORKERS")
	_ = v.BindEnv("generation.on_event_error", "GOA_RELEASE_GENERATION_ON_EVENT_ERROR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Release number is checked by commands that need it, after flag overrides.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("graph.backend", "neo4j")

	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "graph.db")

	v.SetDefault("sql.dsn", "")

	v.SetDefault("release.number", "")
	v.SetDefault("release.output_dir", filepath.Join(".", "release"))
	v.SetDefault("release.staging_dir", filepath.Join(os.TempDir(), "goa-release"))

	v.SetDefault("publish.driver", "fs")
	v.SetDefault("publish.s3.bucket", "")
	v.SetDefault("publish.s3.region", "us-east-1")
	v.SetDefault("publish.s3.endpoint", "")
	v.SetDefault("publish.s3.prefix", "")
	v.SetDefault("publish.s3.path_style", false)

	v.SetDefault("generation.workers", DefaultWorkers)
	v.SetDefault("generation.on_event_error", "abort")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	switch c.Graph.Backend {
	case "neo4j":
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j.uri must not be empty")
		}
	case "sqlite", "postgres":
		if c.SQL.DSN == "" {
			return fmt.Errorf("sql.dsn must not be empty for backend %q", c.Graph.Backend)
		}
	default:
		return fmt.Errorf("graph.backend must be one of neo4j, sqlite, postgres, got %q", c.Graph.Backend)
	}

	if c.Release.OutputDir == "" {
		return fmt.Errorf("release.output_dir must not be empty")
	}
	if c.Release.StagingDir == "" {
		return fmt.Errorf("release.staging_dir must not be empty")
	}

	switch c.Publish.Driver {
	case "fs":
	case "s3":
		if c.Publish.S3.Bucket == "" {
			return fmt.Errorf("publish.s3.bucket must not be empty for the s3 driver")
		}
	default:
		return fmt.Errorf("publish.driver must be fs or s3, got %q", c.Publish.Driver)
	}

	if c.Generation.Workers < 1 || c.Generation.Workers > MaxWorkers {
		return fmt.Errorf("generation.workers must be between 1 and %d", MaxWorkers)
	}
	if c.Generation.OnEventError != "abort" && c.Generation.OnEventError != "skip" {
		return fmt.Errorf("generation.on_event_error must be abort or skip, got %q", c.Generation.OnEventError)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ValidateRelease checks the settings needed to write a release file.
func (c *Config) ValidateRelease() error {
	if c.Release.Number == "" {
		return fmt.Errorf("release.number must not be empty")
	}
	if filepath.Base(c.Release.Number) != c.Release.Number {
		return fmt.Errorf("release.number %q must not contain path separators", c.Release.Number)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
