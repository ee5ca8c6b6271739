package config

import (
	"os"
	"path/filepath"

	"github.com/keshon/pcrc/internal/util"
)

const (
	// DefaultBlockSize is the per-worker read granularity.
	DefaultBlockSize = 16 << 20 // 16 MiB

	// DefaultThreads is the worker count when nothing else is asked for.
	DefaultThreads = 1

	// ConfigFile is looked up in the user's home directory.
	ConfigFile = ".pcrc.json"
)

// Config holds the run defaults that flags may override.
type Config struct {
	Threads   int    `json:"threads"`
	BlockSize string `json:"block_size"`
	FillZero  bool   `json:"fill_zero"`
	Direct    bool   `json:"direct"`
}

// Load returns the defaults, overridden by ~/.pcrc.json when present.
// A missing or malformed config file is not an error; it simply yields
// the defaults.
func Load() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{Threads: DefaultThreads}
	}
	return LoadFrom(filepath.Join(home, ConfigFile))
}

// LoadFrom reads run defaults from the given file.
func LoadFrom(path string) Config {
	cfg := Config{Threads: DefaultThreads}

	var file Config
	if err := util.ReadJSON(path, &file); err != nil {
		return cfg
	}
	if file.Threads > 0 {
		cfg.Threads = file.Threads
	}
	cfg.BlockSize = file.BlockSize
	cfg.FillZero = file.FillZero
	cfg.Direct = file.Direct
	return cfg
}
