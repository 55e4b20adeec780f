package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "XSDFORM_CONFIG"

// Config holds all configuration for the xsdform CLI.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	ProjectRoot string `yaml:"project_root"`
	OutputDir   string `yaml:"output_dir"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat   string `yaml:"log_format"` // json or console
}

// Load reads the file named by XSDFORM_CONFIG, if any, then applies
// environment variables on top.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile reads configuration from an optional YAML file. Environment
// variables override file values; unset fields get defaults.
func LoadFile(path string) (*Config, error) {
	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = getEnv("XSDFORM_DATABASE_URL", orDefault(cfg.DatabaseURL, "postgres://localhost:5432/xsdform?sslmode=disable"))
	cfg.RedisURL = getEnv("XSDFORM_REDIS_URL", orDefault(cfg.RedisURL, "redis://localhost:6379/0"))
	cfg.ProjectRoot = getEnv("XSDFORM_PROJECT_ROOT", orDefault(cfg.ProjectRoot, projectRoot))
	cfg.OutputDir = getEnv("XSDFORM_OUTPUT_DIR", orDefault(cfg.OutputDir, "out"))
	cfg.MetricsAddr = getEnv("XSDFORM_METRICS_ADDR", orDefault(cfg.MetricsAddr, ":9090"))
	cfg.LogLevel = getEnv("XSDFORM_LOG_LEVEL", orDefault(cfg.LogLevel, "info"))
	cfg.LogFormat = getEnv("XSDFORM_LOG_FORMAT", orDefault(cfg.LogFormat, "console"))
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
