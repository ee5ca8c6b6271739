package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/pcrc/internal/config"
)

func TestLoadFromMissing(t *testing.T) {
	cfg := config.LoadFrom(filepath.Join(t.TempDir(), "absent.json"))
	if cfg.Threads != config.DefaultThreads {
		t.Fatalf("Threads = %d, want %d", cfg.Threads, config.DefaultThreads)
	}
	if cfg.FillZero || cfg.Direct || cfg.BlockSize != "" {
		t.Fatalf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.LoadFrom(path)
	if cfg.Threads != config.DefaultThreads {
		t.Fatalf("malformed file should yield defaults, got %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.json")
	body := `{"threads": 8, "block_size": "4MiB", "fill_zero": true, "direct": true}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.LoadFrom(path)
	if cfg.Threads != 8 || cfg.BlockSize != "4MiB" || !cfg.FillZero || !cfg.Direct {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
