package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "megamarket.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("DATABASE_URL", "")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Tree.SalesWindow.Std() != 24*time.Hour || cfg.Tree.MaxDepth != 4096 || cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
log_mode: production
http:
  addr: ":9000"
  allowed_origins: ["http://a.test"]
database:
  url: postgres://u:p@localhost/megamarket
  conn_max_lifetime: 120
tree:
  sales_window: 12h
`)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("MAX_TREE_DEPTH", "64")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogMode != "production" || cfg.Database.URL != "postgres://u:p@localhost/megamarket" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Database.ConnMaxLifetime.Std() != 2*time.Minute || cfg.Tree.SalesWindow.Std() != 12*time.Hour {
		t.Fatalf("durations: %v %v", cfg.Database.ConnMaxLifetime.Std(), cfg.Tree.SalesWindow.Std())
	}
	if cfg.HTTP.Addr != ":9100" || cfg.Tree.MaxDepth != 64 {
		t.Fatalf("env must win over file: %+v", cfg)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://a.test" {
		t.Fatalf("origins: %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Tree.ChunkSize != 500 {
		t.Fatalf("unset keys keep defaults: %d", cfg.Tree.ChunkSize)
	}
}

func TestLoadConfigRejectsUnknownKeysAndBadValues(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "tree:\n  depth: 3\n")); err == nil {
		t.Fatalf("unknown key must fail")
	}
	if _, err := LoadConfig(writeConfig(t, "tree:\n  sales_window: soon\n")); err == nil {
		t.Fatalf("bad duration must fail")
	}
	_, err := LoadConfig(writeConfig(t, "tree:\n  max_depth: 0\n"))
	if err == nil || !strings.Contains(err.Error(), "max_depth") {
		t.Fatalf("zero depth must fail validation, got %v", err)
	}
}
