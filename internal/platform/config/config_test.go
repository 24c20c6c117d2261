package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DECKTIMER_MYSQL_DSN", "")
	cfg, err := Load(filepath.Join(dir, "decktimer.yaml"), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != StoreFile || cfg.Chime.Driver != ChimeBell || cfg.Instance != "default" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBPath != filepath.Join(dir, "decktimer.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
}

func TestLoadOverlaysYAMLAndResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DECKTIMER_MYSQL_DSN", "")
	path := filepath.Join(dir, "decktimer.yaml")
	raw := []byte(`instance: key-3
store:
  driver: sqlite
chime:
  driver: ffplay
  sound: sounds/gong.mp3
display:
  running_background: /abs/run.png
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Instance != "key-3" || cfg.Store.Driver != StoreSQLite {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.Chime.Sound != filepath.Join(dir, "sounds", "gong.mp3") {
		t.Fatalf("relative sound path not resolved: %s", cfg.Chime.Sound)
	}
	if cfg.Display.RunningBackground != "/abs/run.png" {
		t.Fatalf("absolute path rewritten: %s", cfg.Display.RunningBackground)
	}
}

func TestLoadRejectsMySQLWithoutDSN(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DECKTIMER_MYSQL_DSN", "")
	path := filepath.Join(dir, "decktimer.yaml")
	if err := os.WriteFile(path, []byte("store:\n  driver: mysql\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path, dir); err == nil {
		t.Fatalf("expected validation error")
	}

	t.Setenv("DECKTIMER_MYSQL_DSN", "u:p@tcp(localhost:3306)/deck")
	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("load with env dsn: %v", err)
	}
	if cfg.Store.DSN != "u:p@tcp(localhost:3306)/deck" {
		t.Fatalf("env dsn not applied: %s", cfg.Store.DSN)
	}
}

func TestNewRequiresStateDir(t *testing.T) {
	t.Parallel()
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty state dir")
	}
}

func TestValidateRejectsPathLikeInstance(t *testing.T) {
	for _, instance := range []string{"../x", "a/b", `a\b`, ".."} {
		cfg, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		cfg.Instance = instance
		if err := cfg.Validate(); err == nil {
			t.Fatalf("instance %q must be rejected", instance)
		}
	}
}
