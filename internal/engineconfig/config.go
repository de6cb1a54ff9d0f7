// Package engineconfig loads the small set of knobs the storage core
// needs at process start: where the data file lives, how many frames the
// buffer pool gets, and whether direct I/O is enabled. It follows
// tinySQL's own convention of driving such settings from YAML via
// gopkg.in/yaml.v3 rather than hand-rolled flag parsing alone.
package engineconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the engine's runtime configuration.
type Config struct {
	// PageSize is carried for documentation/validation purposes; the
	// build's actual page size is the pager.PageSize constant. Load does
	// not check it; a different non-zero value is rejected by pager.Open.
	PageSize int `yaml:"page_size"`

	// PoolFrames is the number of page frames the buffer pool holds.
	PoolFrames int `yaml:"pool_frames"`

	// DataPath is the path to the on-disk paged file.
	DataPath string `yaml:"data_path"`

	// DirectIO enables O_DIRECT when opening DataPath.
	DirectIO bool `yaml:"direct_io"`

	// HashSeed seeds the single-page hash table's XXH64 hasher. Zero
	// means "unset — generate one", not literal seed zero (§4.8).
	HashSeed uint64 `yaml:"hash_seed"`
}

// Default returns the engine's default configuration.
func Default() *Config {
	return &Config{
		PageSize:   4096,
		PoolFrames: 64,
		DataPath:   "./potpot.db",
		DirectIO:   true,
		HashSeed:   0,
	}
}

// Load reads and parses a YAML config file at path, filling in defaults
// for any field the file omits.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// HasExplicitSeed reports whether the config file specified a non-zero
// hash seed.
func (c *Config) HasExplicitSeed() bool { return c.HashSeed != 0 }
