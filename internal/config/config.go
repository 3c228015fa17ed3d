// Package config loads spool's CLI configuration, adapted from the
// teacher's internal/config/config.go: same defaults-then-overlay
// loading order, same BurntSushi/toml decoding, same ~-expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ClaudeRoot   string   `toml:"claude_root"`
	CodexRoot    string   `toml:"codex_root"`
	CachePath    string   `toml:"cache_path"`
	SpoolDirs    []string `toml:"spool_dirs"`
	DefaultSpeed float64  `toml:"default_speed"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeRoot:   filepath.Join(home, ".claude", "projects"),
		CodexRoot:    filepath.Join(home, ".codex", "sessions"),
		CachePath:    filepath.Join(home, ".config", "spool", "cache.db"),
		SpoolDirs:    []string{filepath.Join(home, ".spool", "sessions")},
		DefaultSpeed: 1.0,
	}

	cfgPath := filepath.Join(home, ".config", "spool", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.CodexRoot = expandHome(cfg.CodexRoot, home)
	cfg.CachePath = expandHome(cfg.CachePath, home)
	for i, d := range cfg.SpoolDirs {
		cfg.SpoolDirs[i] = expandHome(d, home)
	}

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
