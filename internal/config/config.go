// Package config resolves runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	envDataDir     = "SIMPLE_DB_DATA_DIR"
	envLogLevel    = "SIMPLE_DB_LOG_LEVEL"
	envHistoryFile = "SIMPLE_DB_HISTORY_FILE"

	defaultDataDir  = "./data"
	defaultLogLevel = "warn"
)

type Config struct {
	DataDir     string `mapstructure:"data_dir"`
	LogLevel    string `mapstructure:"log_level"`
	HistoryFile string `mapstructure:"history_file"`
}

// Load reads settings from the environment, falling back to defaults, and
// creates the data directory when it is missing.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("history_file", defaultHistoryPath())

	if err := v.BindEnv("data_dir", envDataDir); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("log_level", envLogLevel); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("history_file", envHistoryFile); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	return &cfg, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".simpledb_history"
	}
	return filepath.Join(home, ".simpledb_history")
}
