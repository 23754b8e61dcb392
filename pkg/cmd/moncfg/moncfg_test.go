package moncfg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/infrastructure/repositories"
	"moncfg-backend/internal/infrastructure/repositories/mem"
)

// shared keeps one in-memory store alive across command runs
type shared struct {
	ports.Registry
}

func (shared) Close() error { return nil }

type output struct {
	Success bool                   `yaml:"success"`
	Error   string                 `yaml:"error"`
	Created map[string]int         `yaml:"created"`
	Updated map[string]int         `yaml:"updated"`
	Deleted map[string]int         `yaml:"deleted"`
	Extra   map[string]interface{} `yaml:",inline"`
}

func run(t *testing.T, registry ports.Registry, args ...string) (output, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewCommand(&buf, &Options{
		NewRegistry: func(context.Context, repositories.Config) (ports.Registry, error) {
			return shared{registry}, nil
		},
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	var out output
	if buf.Len() > 0 {
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out), buf.String())
	}
	return out, err
}

const exportDoc = `
export:
  version: "1.0"
  templates:
    - host: T
      items:
        - name: ping
          key: agent.ping
  hosts:
    - host: H1
    - host: H2
`

func TestCommands(t *testing.T) {
	registry := mem.NewRegistry()
	defer registry.Close()
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exportDoc), 0o600))

	out, err := run(t, registry, "import", "--memory", "--file", path)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, map[string]int{"template": 1, "host": 2, "item": 1}, out.Created)
	assert.Contains(t, out.Extra, "runId")

	out, err = run(t, registry, "link", "--memory", "--template", "T", "--host", "H1", "--host", "H2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"item": 2}, out.Created)
	assert.Equal(t, map[string]int{"host": 2}, out.Updated)

	out, err = run(t, registry, "unlink", "--memory", "-t", "T", "-H", "H1", "--clear")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"item": 1}, out.Deleted)

	out, err = run(t, registry, "import", "--memory", "--file", path, "--rules", "item=none", "--rules", "template=update")
	require.NoError(t, err)
	assert.Empty(t, out.Created)
	assert.Equal(t, map[string]int{"template": 1, "host": 2}, out.Updated)

	out, err = run(t, registry, "link", "--memory", "--template", "H1", "--host", "H2")
	require.Error(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "invalid-input", out.Error)

	_, err = run(t, registry, "link", "--memory", "--template", "nope", "--host", "H2")
	require.Error(t, err)
}

func TestImport_RejectsUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  version: \"0.9\"\n"), 0o600))
	out, err := run(t, mem.NewRegistry(), "import", "--memory", "--file", path)
	require.Error(t, err)
	assert.Equal(t, "invalid-input", out.Error)
}

func TestParseRules(t *testing.T) {
	base := models.Policies{models.KindGroup: {CreateMissing: true}}
	got, err := parseRules(base, []string{"item=create,update", "trigger=update", "group=none"})
	require.NoError(t, err)
	assert.Equal(t, models.Policies{
		models.KindGroup:   {},
		models.KindItem:    {CreateMissing: true, UpdateExisting: true},
		models.KindTrigger: {UpdateExisting: true},
	}, got)
	assert.Equal(t, models.SyncPolicy{CreateMissing: true}, base[models.KindGroup], "base is not modified")

	for _, bad := range []string{"item", "widget=create", "item=delete"} {
		_, err = parseRules(base, []string{bad})
		assert.Error(t, err, bad)
	}
}
