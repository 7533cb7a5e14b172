// Package config loads server configuration from a YAML file with
// environment overrides. Missing file means defaults; the engine itself
// takes no configuration, only the server shell does.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StoreConfig struct {
	// Path to the SQLite database file; ":memory:" for in-memory.
	Path string `yaml:"path"`
}

type RatesConfig struct {
	// File is the path to the rate-table JSON document. Empty means the
	// built-in demo table.
	File string `yaml:"file"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Rates  RatesConfig  `yaml:"rates"`

	// DemoMode masks monetary figures in API responses. Presentation
	// only; computation is unaffected.
	DemoMode bool `yaml:"demo_mode"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Store:  StoreConfig{Path: "dashboard.db"},
	}
}

// Load reads the config file at path. A missing file yields defaults;
// a malformed file is an error. Environment variables override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			overrideFromEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	overrideFromEnv(&cfg)
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("RATES_FILE"); v != "" {
		cfg.Rates.File = v
	}
	if v := os.Getenv("DEMO_MODE"); v != "" {
		cfg.DemoMode = v == "1" || v == "true"
	}
}
