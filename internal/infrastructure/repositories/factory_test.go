package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/infrastructure/repositories/mem"
)

func TestFactory_CreateRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		registry, err := NewFactory(DefaultConfig()).CreateRegistry(ctx)
		require.NoError(t, err)
		defer registry.Close()
		assert.IsType(t, &mem.Registry{}, registry)
	})

	t.Run("postgresql without uri", func(t *testing.T) {
		cfg := PostgreSQLConfig("")
		_, err := NewFactory(cfg).CreateRegistry(ctx)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewFactory(Config{Type: "bolt"}).CreateRegistry(ctx)
		assert.Error(t, err)
	})
}
