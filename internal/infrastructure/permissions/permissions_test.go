package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/application/services"
	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/infrastructure/repositories/mem"
)

func TestAllowAll(t *testing.T) {
	ok, err := AllowAll{}.CanWrite(context.Background(), models.KindHost, []models.ID{1})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReadOnlyHosts(t *testing.T) {
	ctx := context.Background()
	registry := mem.NewRegistry()
	defer registry.Close()

	w, err := registry.Writer(ctx)
	require.NoError(t, err)
	hostIDs, err := w.Insert(ctx, models.KindHost, []models.Record{models.NewTemplate("T"), models.NewHost("H")})
	require.NoError(t, err)
	tid, hid := hostIDs[0], hostIDs[1]
	itemIDs, err := w.Insert(ctx, models.KindItem, []models.Record{
		&models.Item{HostID: tid, Host: "T", ItemKey: "k1"},
		&models.Item{HostID: hid, Host: "H", ItemKey: "k1"},
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	checker := NewReadOnlyHosts(registry, []string{"T", "missing"})
	testCases := []struct {
		name    string
		kind    models.Kind
		ids     []models.ID
		allowed bool
	}{
		{"read-only template", models.KindTemplate, []models.ID{tid}, false},
		{"read-only host record", models.KindHost, []models.ID{hid, tid}, false},
		{"writable host", models.KindHost, []models.ID{hid}, true},
		{"item on read-only template", models.KindItem, []models.ID{itemIDs[0]}, false},
		{"item on writable host", models.KindItem, []models.ID{itemIDs[1]}, true},
		{"unknown item", models.KindItem, []models.ID{999}, true},
		{"global kind", models.KindGroup, []models.ID{tid}, true},
		{"nothing", models.KindHost, nil, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := checker.CanWrite(ctx, tc.kind, tc.ids)
			require.NoError(t, err)
			require.Equal(t, tc.allowed, ok)
		})
	}
}

func TestReadOnlyHosts_ImportIntoProtectedTemplate(t *testing.T) {
	ctx := context.Background()
	registry := mem.NewRegistry()
	defer registry.Close()
	tree := &models.ImportTree{Templates: []models.ImportedHost{{
		Host:  "T",
		Items: []models.ImportedItem{{Key: "k1"}},
	}}}

	svc := services.NewConfigurationService(registry, NewReadOnlyHosts(registry, []string{"T"}))
	_, err := svc.ImportConfiguration(ctx, tree, models.CreateAndUpdateAll())
	require.NoError(t, err, "T does not exist yet")

	tree.Templates[0].Items = append(tree.Templates[0].Items, models.ImportedItem{Key: "k2"})
	_, err = svc.ImportConfiguration(ctx, tree, models.CreateAndUpdateAll())
	require.Equal(t, validation.KindPermissionDenied, validation.ErrorKind(err))
}
