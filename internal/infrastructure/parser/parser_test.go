package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

const export = `
export:
  version: "1.0"
  groups:
    - name: Linux servers
  templates:
    - host: Template OS Linux
      name: Linux
      groups:
        - name: Linux servers
      macros:
        - macro: "{$LOAD_WARN}"
          value: "5"
      applications:
        - name: CPU
      items:
        - name: Load average
          key: system.cpu.load[percpu,avg1]
          value_type: 0
          delay: 1m
          applications:
            - name: CPU
      discovery_rules:
        - name: Mounted filesystems
          key: vfs.fs.discovery
          lifetime: 7d
          item_prototypes:
            - name: Free on {#FSNAME}
              key: vfs.fs.size[{#FSNAME},free]
          trigger_prototypes:
            - name: Low space on {#FSNAME}
              expression: "{Template OS Linux:vfs.fs.size[{#FSNAME},free].last()}<1G"
  hosts:
    - host: web01
      status: 0
      templates:
        - name: Template OS Linux
  triggers:
    - name: High load
      expression: "{Template OS Linux:system.cpu.load[percpu,avg1].last()}>5"
      priority: 4
      dependencies:
        - name: Unreachable
          expression: "{Template OS Linux:agent.ping.nodata(5m)}=1"
  graphs:
    - name: CPU load
      ymax_type: 2
      ymax_item:
        host: Template OS Linux
        key: system.cpu.load[percpu,avg1]
      graph_items:
        - color: "009900"
          item:
            host: Template OS Linux
            key: system.cpu.load[percpu,avg1]
  screens:
    - name: Overview
      hsize: 1
      vsize: 1
      screen_items:
        - resourcetype: 1
          resource:
            host: Template OS Linux
            key: system.cpu.load[percpu,avg1]
`

func TestParse(t *testing.T) {
	tree, err := Parse(strings.NewReader(export))
	require.NoError(t, err)
	require.Equal(t, "1.0", tree.Version)
	require.Len(t, tree.Templates, 1)

	tpl := tree.Templates[0]
	require.NotNil(t, tpl.Name)
	assert.Equal(t, "Linux", *tpl.Name)
	assert.Nil(t, tpl.Status)
	assert.Equal(t, []models.NameRef{{Name: "CPU"}}, tpl.Items[0].Applications)
	require.Len(t, tpl.DiscoveryRules, 1)
	rule := tpl.DiscoveryRules[0]
	assert.Equal(t, "vfs.fs.discovery", rule.Key)
	assert.Equal(t, "7d", rule.Lifetime)
	assert.Equal(t, "vfs.fs.size[{#FSNAME},free]", rule.ItemPrototypes[0].Key)
	assert.Equal(t, "Template OS Linux", rule.TriggerPrototypes[0].Owner())

	require.NotNil(t, tree.Hosts[0].Status)
	assert.Zero(t, *tree.Hosts[0].Status)
	assert.Equal(t, []models.TriggerRef{{Name: "Unreachable", Expression: "{Template OS Linux:agent.ping.nodata(5m)}=1"}},
		tree.Triggers[0].Dependencies)

	g := tree.Graphs[0]
	assert.Equal(t, "Template OS Linux", g.Owner())
	assert.Equal(t, "009900", g.Items[0].Color)
	assert.Len(t, g.ItemRefs(), 2)

	require.Len(t, tree.Screens, 1)
	cell := tree.Screens[0].Items[0]
	assert.Equal(t, "system.cpu.load[percpu,avg1]", cell.Resource.ItemKey)
	key, ok := cell.Resource.Key(cell.ResourceType)
	require.True(t, ok)
	assert.Equal(t, models.ItemKey("Template OS Linux", "system.cpu.load[percpu,avg1]"), key)
}

func TestParse_JSON(t *testing.T) {
	tree, err := Parse(strings.NewReader(`{"export": {"version": "1.0", "groups": [{"name": "G1"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []models.ImportedGroup{{Name: "G1"}}, tree.Groups)
}

func TestParse_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no envelope", "version: \"1.0\"\n"},
		{"legacy version", "export:\n  version: \"0.9\"\n"},
		{"missing version", "export:\n  groups:\n    - name: G\n"},
		{"malformed", "export: [\n"},
		{"item without key", "export:\n  version: \"1.0\"\n  hosts:\n    - host: H\n      items:\n        - name: x\n"},
		{"trigger without expression", "export:\n  version: \"1.0\"\n  triggers:\n    - name: t\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.Equal(t, validation.KindInvalidInput, validation.ErrorKind(err))
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))
	tree, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, tree.Triggers, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, validation.KindInternal, validation.ErrorKind(err))
}
