package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PRIORITIZE_CONFIG_DIR", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(NewViper())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend != BackendFile || cfg.Timeout != 10*time.Second || cfg.HistoryLimit != 1000 || !cfg.Journal {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Dir != "" {
		t.Fatalf("expected empty dir default, got %q", cfg.Dir)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("PRIORITIZE_CONFIG_DIR", cfgDir)
	t.Chdir(t.TempDir())

	yaml := "backend: sqlite\ntimeout: 250ms\nhistory_limit: 5\n"
	if err := os.WriteFile(filepath.Join(cfgDir, ".prioritize.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRIORITIZE_HISTORY_LIMIT", "7")

	cfg, err := LoadConfig(NewViper())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("backend from file: got %q", cfg.Backend)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout from file: got %s", cfg.Timeout)
	}
	if cfg.HistoryLimit != 7 {
		t.Fatalf("env should win over file: got %d", cfg.HistoryLimit)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PRIORITIZE_CONFIG_DIR", t.TempDir())
	t.Chdir(t.TempDir())

	cases := map[string]string{
		"PRIORITIZE_BACKEND":       "postgres",
		"PRIORITIZE_TIMEOUT":       "soon",
		"PRIORITIZE_HISTORY_LIMIT": "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := LoadConfig(NewViper()); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PRIORITIZE_CONFIG_DIR", dir)
	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Fatalf("ConfigDir = %q, want %q", got, dir)
	}
}
