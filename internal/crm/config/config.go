// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config file path.
const EnvPath = "CRM_CONFIG"

// DefaultPath is used when EnvPath is unset.
var DefaultPath = filepath.Join("internal", "crm", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort         int           `yaml:"GRPC_PORT"`
	HTTPPort         int           `yaml:"HTTP_PORT"`
	DBDriver         string        `yaml:"DB_DRIVER"`
	DBHost           string        `yaml:"DB_HOST"`
	DBPort           int           `yaml:"DB_PORT"`
	DBUser           string        `yaml:"DB_USER"`
	DBPassword       string        `yaml:"DB_PASSWORD"`
	DBName           string        `yaml:"DB_NAME"`
	DBSSLMode        string        `yaml:"DB_SSLMODE"`
	DBPath           string        `yaml:"DB_PATH"`
	DBConnectTimeout time.Duration `yaml:"DB_CONNECT_TIMEOUT"`
	KafkaBrokers     []string      `yaml:"KAFKA_BROKERS"`
	Topic            string        `yaml:"TOPIC"`
	LogDevelopment   bool          `yaml:"LOG_DEVELOPMENT"`
}

// Default returns the configuration used for keys missing from the file.
func Default() Config {
	return Config{
		GRPCPort:         50051,
		HTTPPort:         8080,
		DBDriver:         "sqlite",
		DBPort:           5432,
		DBSSLMode:        "disable",
		DBPath:           "crm.db",
		DBConnectTimeout: 30 * time.Second,
		Topic:            "crm.events",
	}
}

// Load reads the file named by CRM_CONFIG, or DefaultPath.
func Load() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile reads a YAML file on top of Default.
func LoadFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

// EventsEnabled reports whether change events should be published.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
