package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"moncfg-backend/internal/infrastructure/repositories"
)

type (
	// Config - application configuration
	Config struct {
		App         `yaml:"app"`
		Log         `yaml:"logger"`
		Storage     repositories.Config `yaml:"storage"`
		Import      ImportConfig        `yaml:"import"`
		Permissions PermissionsConfig   `yaml:"permissions"`
	}

	// App - application identity
	App struct {
		Name    string `yaml:"name" env:"APP_NAME"`
		Version string `yaml:"version" env:"APP_VERSION"`
	}

	// Log - logging configuration
	Log struct {
		Level string `yaml:"log-level" env:"LOG_LEVEL"`
	}

	// PermissionsConfig - write restrictions
	PermissionsConfig struct {
		// ReadOnlyHosts names hosts and templates no operation may modify
		ReadOnlyHosts []string `yaml:"read-only-hosts" env:"MONCFG_READ_ONLY_HOSTS" env-separator:","`
	}
)

// NewConfig loads defaults, then the file at path if set, then environment overrides
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	cfg.App.Name = "moncfg"
	cfg.App.Version = "v1.0.0"
	cfg.Log.Level = "info"
	cfg.Storage = repositories.DefaultConfig()

	if path != "" {
		err := cleanenv.ReadConfig(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Verbosity maps the log level to a klog verbosity
func (l Log) Verbosity() (int, error) {
	switch strings.ToLower(l.Level) {
	case "", "info", "warn", "warning", "error":
		return 0, nil
	case "verbose":
		return 2, nil
	case "debug":
		return 4, nil
	case "trace":
		return 6, nil
	}
	return 0, fmt.Errorf("unknown log level: %s", l.Level)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case repositories.RepositoryTypeMemory, "":
	case repositories.RepositoryTypePostgreSQL:
		if c.Storage.PostgreSQL.URI == "" {
			return fmt.Errorf("storage: postgresql uri is required")
		}
	default:
		return fmt.Errorf("storage: unsupported type: %s", c.Storage.Type)
	}

	if _, err := c.Log.Verbosity(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import config validation failed: %w", err)
	}

	for _, name := range c.Permissions.ReadOnlyHosts {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("permissions: empty read-only host name")
		}
	}

	return nil
}
