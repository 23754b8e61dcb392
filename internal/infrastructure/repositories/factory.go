package repositories

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/infrastructure/repositories/mem"
	"moncfg-backend/internal/infrastructure/repositories/pg"
)

// RepositoryType represents the type of repository backend
type RepositoryType string

const (
	RepositoryTypeMemory     RepositoryType = "memory"
	RepositoryTypePostgreSQL RepositoryType = "postgresql"
)

// Config holds configuration for repository factory
type Config struct {
	Type RepositoryType `yaml:"type" env:"MONCFG_STORAGE_TYPE"`

	PostgreSQL pg.ConnectionConfig `yaml:"postgresql"`
}

// Factory creates repository instances based on configuration
type Factory struct {
	config Config
}

// NewFactory creates a new repository factory
func NewFactory(config Config) *Factory {
	return &Factory{
		config: config,
	}
}

// CreateRegistry creates a registry based on the configured type
func (f *Factory) CreateRegistry(ctx context.Context) (ports.Registry, error) {
	switch f.config.Type {
	case RepositoryTypeMemory, "":
		return mem.NewRegistry(), nil
	case RepositoryTypePostgreSQL:
		return f.createPostgreSQLRegistry(ctx)
	default:
		return nil, fmt.Errorf("unsupported repository type: %s", f.config.Type)
	}
}

func (f *Factory) createPostgreSQLRegistry(ctx context.Context) (ports.Registry, error) {
	if f.config.PostgreSQL.URI == "" {
		return nil, errors.New("PostgreSQL URI is required")
	}
	registry, err := pg.NewRegistry(ctx, f.config.PostgreSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to PostgreSQL")
	}
	return registry, nil
}

// DefaultConfig returns default configuration for the repository factory
func DefaultConfig() Config {
	return Config{
		Type:       RepositoryTypeMemory,
		PostgreSQL: pg.DefaultConnectionConfig(),
	}
}

// PostgreSQLConfig creates a configuration for PostgreSQL backend
func PostgreSQLConfig(uri string) Config {
	ret := DefaultConfig()
	ret.Type = RepositoryTypePostgreSQL
	ret.PostgreSQL.URI = uri
	return ret
}
