package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/infrastructure/repositories"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, "moncfg", cfg.App.Name)
	require.Equal(t, repositories.RepositoryTypeMemory, cfg.Storage.Type)
	require.Equal(t, models.CreateAndUpdateAll(), cfg.Import.Policies())
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_File(t *testing.T) {
	path := writeConfig(t, `
app:
  name: moncfg-test
logger:
  log-level: debug
storage:
  type: postgresql
  postgresql:
    uri: postgres://moncfg@localhost:5432/moncfg
    maxConns: 4
import:
  rules:
    group: {create-missing: true}
    item: {create-missing: true, update-existing: true}
permissions:
  read-only-hosts: [Template OS Linux]
`)
	cfg, err := NewConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "moncfg-test", cfg.App.Name)
	v, err := cfg.Log.Verbosity()
	require.NoError(t, err)
	require.Equal(t, 4, v)
	require.Equal(t, repositories.RepositoryTypePostgreSQL, cfg.Storage.Type)
	require.Equal(t, int32(4), cfg.Storage.PostgreSQL.MaxConns)
	require.Equal(t, int32(1), cfg.Storage.PostgreSQL.MinConns, "defaults survive the file")
	require.Equal(t, models.Policies{
		models.KindGroup: {CreateMissing: true},
		models.KindItem:  {CreateMissing: true, UpdateExisting: true},
	}, cfg.Import.Policies())
	require.Equal(t, []string{"Template OS Linux"}, cfg.Permissions.ReadOnlyHosts)
}

func TestNewConfig_Env(t *testing.T) {
	t.Setenv("MONCFG_STORAGE_TYPE", "postgresql")
	t.Setenv("MONCFG_PG_URI", "postgres://env@db/moncfg")
	t.Setenv("MONCFG_READ_ONLY_HOSTS", "A,B")
	cfg, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, repositories.RepositoryTypePostgreSQL, cfg.Storage.Type)
	require.Equal(t, "postgres://env@db/moncfg", cfg.Storage.PostgreSQL.URI)
	require.Equal(t, []string{"A", "B"}, cfg.Permissions.ReadOnlyHosts)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without uri", func(c *Config) { c.Storage.Type = repositories.RepositoryTypePostgreSQL }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "etcd" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"proxy rule", func(c *Config) {
			c.Import.Rules = map[models.Kind]models.SyncPolicy{models.KindProxy: {CreateMissing: true}}
		}},
		{"blank read-only host", func(c *Config) { c.Permissions.ReadOnlyHosts = []string{" "} }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig("")
			require.NoError(t, err)
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestNewConfig_BadFile(t *testing.T) {
	_, err := NewConfig(writeConfig(t, "import:\n  rules:\n    widget: {create-missing: true}\n"))
	require.Error(t, err)
}
