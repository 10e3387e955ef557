package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validCfg returns a fully-valid Config for mutation testing.
func validCfg() *Config {
	return &Config{
		Graph: GraphConfig{Backend: "neo4j"},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Password: "reactome",
			Database: "graph.db",
		},
		Release: ReleaseConfig{
			Number:     "91",
			OutputDir:  "/tmp/release",
			StagingDir: "/tmp/staging",
		},
		Publish:    PublishConfig{Driver: "fs"},
		Generation: GenerationConfig{Workers: 1, OnEventError: "abort"},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
}

func expectErr(t *testing.T, cfg *Config, fragment string) {
	t.Helper()
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error mentioning %q", fragment)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUAT_Validate_ValidConfigPasses(t *testing.T) {
	if err := validCfg().Validate(); err != nil {
		t.Fatalf("valid config should pass, got: %v", err)
	}
}

func TestUAT_Validate_UnknownBackend(t *testing.T) {
	cfg := validCfg()
	cfg.Graph.Backend = "mysql"
	expectErr(t, cfg, "graph.backend")
}

func TestUAT_Validate_EmptyNeo4jURI(t *testing.T) {
	cfg := validCfg()
	cfg.Neo4j.URI = ""
	expectErr(t, cfg, "neo4j.uri")
}

func TestUAT_Validate_SQLBackendNeedsDSN(t *testing.T) {
	for _, backend := range []string{"sqlite", "postgres"} {
		cfg := validCfg()
		cfg.Graph.Backend = backend
		expectErr(t, cfg, "sql.dsn")

		cfg.SQL.DSN = "graph.db"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s with dsn should pass, got: %v", backend, err)
		}
	}
}

func TestUAT_Validate_EmptyOutputDir(t *testing.T) {
	cfg := validCfg()
	cfg.Release.OutputDir = ""
	expectErr(t, cfg, "release.output_dir")
}

func TestUAT_Validate_S3NeedsBucket(t *testing.T) {
	cfg := validCfg()
	cfg.Publish.Driver = "s3"
	expectErr(t, cfg, "publish.s3.bucket")

	cfg.Publish.S3.Bucket = "reactome-release"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("s3 with bucket should pass, got: %v", err)
	}
}

func TestUAT_Validate_UnknownPublishDriver(t *testing.T) {
	cfg := validCfg()
	cfg.Publish.Driver = "ftp"
	expectErr(t, cfg, "publish.driver")
}

func TestUAT_Validate_WorkersBounds(t *testing.T) {
	for _, n := range []int{0, -1, MaxWorkers + 1} {
		cfg := validCfg()
		cfg.Generation.Workers = n
		expectErr(t, cfg, "generation.workers")
	}
}

func TestUAT_Validate_OnEventError(t *testing.T) {
	cfg := validCfg()
	cfg.Generation.OnEventError = "retry"
	expectErr(t, cfg, "on_event_error")
}

func TestUAT_Validate_LoggingFormat(t *testing.T) {
	cfg := validCfg()
	cfg.Logging.Format = "xml"
	expectErr(t, cfg, "logging.format")
}

func TestUAT_ValidateRelease(t *testing.T) {
	cfg := validCfg()
	if err := cfg.ValidateRelease(); err != nil {
		t.Fatalf("release 91 should pass, got: %v", err)
	}

	cfg.Release.Number = ""
	if err := cfg.ValidateRelease(); err == nil {
		t.Fatal("expected error for empty release.number")
	}

	cfg.Release.Number = "../91"
	if err := cfg.ValidateRelease(); err == nil {
		t.Fatal("expected error for release.number with a path separator")
	}
}

func TestUAT_Neo4jConfigMasksPassword(t *testing.T) {
	s := Neo4jConfig{URI: "bolt://db:7687", Username: "neo4j", Password: "supersecret"}.String()
	if strings.Contains(s, "supersecret") {
		t.Fatalf("password leaked: %s", s)
	}
	if !strings.Contains(s, "su****et") {
		t.Fatalf("unexpected mask: %s", s)
	}
}

func TestUAT_Load_DefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NEO4J_PASSWORD", "from-env")
	t.Setenv("GOA_RELEASE_GENERATION_WORKERS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graph.Backend != "neo4j" {
		t.Fatalf("default backend = %q", cfg.Graph.Backend)
	}
	if cfg.Neo4j.Password != "from-env" {
		t.Fatalf("password not bound from NEO4J_PASSWORD: %q", cfg.Neo4j.Password)
	}
	if cfg.Generation.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Generation.Workers)
	}
	if cfg.Publish.Driver != "fs" || cfg.Generation.OnEventError != "abort" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestUAT_Load_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	yaml := `
graph:
  backend: sqlite
sql:
  dsn: /data/graph.db
release:
  number: "92"
publish:
  driver: s3
  s3:
    bucket: reactome-release
    path_style: true
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graph.Backend != "sqlite" || cfg.SQL.DSN != "/data/graph.db" {
		t.Fatalf("graph settings not read: %+v", cfg.Graph)
	}
	if cfg.Release.Number != "92" || !cfg.Publish.S3.PathStyle || cfg.Publish.S3.Region != "us-east-1" {
		t.Fatalf("unexpected release/publish: %+v %+v", cfg.Release, cfg.Publish)
	}
}

func TestUAT_Load_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("publish:\n  driver: ftp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for publish.driver=ftp")
	}
}
