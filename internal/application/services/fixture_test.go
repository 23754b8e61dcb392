package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/application/services/testutil"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/infrastructure/repositories/mem"
)

func both() models.SyncPolicy {
	return models.SyncPolicy{CreateMissing: true, UpdateExisting: true}
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	mem *mem.Registry
	reg *testutil.CountingRegistry
	svc *ConfigurationService
}

func newFixture(t *testing.T, perms ports.PermissionChecker) *fixture {
	registry := mem.NewRegistry()
	t.Cleanup(func() { _ = registry.Close() })
	counting := testutil.NewCountingRegistry(registry)
	return &fixture{
		t:   t,
		ctx: context.Background(),
		mem: registry,
		reg: counting,
		svc: NewConfigurationService(counting, perms),
	}
}

func (f *fixture) importTree(tree *models.ImportTree, policies models.Policies) *models.Result {
	f.t.Helper()
	res, err := f.svc.ImportConfiguration(f.ctx, tree, policies)
	require.NoError(f.t, err)
	require.True(f.t, res.Success)
	return res
}

// id returns the committed id of key, zero when absent
func (f *fixture) id(key models.NaturalKey) models.ID {
	f.t.Helper()
	reader, err := f.mem.Reader(f.ctx)
	require.NoError(f.t, err)
	defer reader.Close()
	key = key.Storage()
	ids, err := reader.FindIDs(f.ctx, key.Kind, []models.NaturalKey{key})
	require.NoError(f.t, err)
	return ids[key]
}

func (f *fixture) get(key models.NaturalKey) models.Record {
	f.t.Helper()
	id := f.id(key)
	require.NotZero(f.t, id, "%s does not exist", key)
	reader, err := f.mem.Reader(f.ctx)
	require.NoError(f.t, err)
	defer reader.Close()
	rec, err := reader.GetByID(f.ctx, key.Kind.Storage(), id)
	require.NoError(f.t, err)
	return rec
}

func (f *fixture) host(name string) *models.Host {
	return f.get(models.HostKey(name)).(*models.Host)
}

func (f *fixture) item(host, key string) *models.Item {
	return f.get(models.ItemKey(host, key)).(*models.Item)
}

func (f *fixture) count(kind models.Kind) int {
	f.t.Helper()
	reader, err := f.mem.Reader(f.ctx)
	require.NoError(f.t, err)
	defer reader.Close()
	n := 0
	require.NoError(f.t, reader.List(f.ctx, kind, func(models.Record) error {
		n++
		return nil
	}, ports.EmptyScope{}))
	return n
}

func templateDef(name string, items ...string) models.ImportedHost {
	h := models.ImportedHost{Host: name}
	for _, k := range items {
		h.Items = append(h.Items, models.ImportedItem{Name: "item " + k, Key: k})
	}
	return h
}

func hostDef(name string, templates ...string) models.ImportedHost {
	h := models.ImportedHost{Host: name}
	for _, t := range templates {
		h.Templates = append(h.Templates, models.NameRef{Name: t})
	}
	return h
}

func graphDef(name string, refs ...models.ItemRef) models.ImportedGraph {
	g := models.ImportedGraph{Name: name}
	for i, r := range refs {
		g.Items = append(g.Items, models.ImportedGraphItem{Item: r, Color: "00AA00", SortOrder: i})
	}
	return g
}

// chainRoot follows the template references of an item up to the record they start from
func (f *fixture) chainRoot(it *models.Item) models.ID {
	f.t.Helper()
	reader, err := f.mem.Reader(f.ctx)
	require.NoError(f.t, err)
	defer reader.Close()
	var cur models.Record = it
	for cur.GetTemplateID() != 0 {
		cur, err = reader.GetByID(f.ctx, models.KindItem, cur.GetTemplateID())
		require.NoError(f.t, err)
	}
	return cur.GetID()
}
