package mem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/patterns"
)

func TestRegistry_CommitMakesWritesVisible(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	var events []models.CommitEvent
	require.NoError(t, registry.Subject().Subscribe(patterns.ObserverFunc(func(e interface{}) {
		events = append(events, e.(models.CommitEvent))
	})))

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	ids, err := writer.Insert(ctx, models.KindGroup, []models.Record{models.NewGroup("G1"), models.NewGroup("G2")})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	reader, err := registry.Reader(ctx)
	require.NoError(t, err)
	found, err := reader.FindIDs(ctx, models.KindGroup, []models.NaturalKey{models.GroupKey("G1")})
	require.NoError(t, err)
	assert.Empty(t, found, "uncommitted rows must not be visible outside the transaction")

	require.NoError(t, writer.Commit())
	found, err = reader.FindIDs(ctx, models.KindGroup, []models.NaturalKey{models.GroupKey("G1"), models.GroupKey("G3")})
	require.NoError(t, err)
	assert.Equal(t, map[models.NaturalKey]models.ID{models.GroupKey("G1"): ids[0]}, found)

	require.Len(t, events, 1)
	assert.Equal(t, []models.Kind{models.KindGroup}, events[0].Kinds)
}

func TestRegistry_AbortDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	_, err = writer.Insert(ctx, models.KindHost, []models.Record{models.NewHost("H1")})
	require.NoError(t, err)
	writer.Abort()

	reader, err := registry.Reader(ctx)
	require.NoError(t, err)
	var n int
	require.NoError(t, reader.List(ctx, models.KindHost, func(models.Record) error {
		n++
		return nil
	}, ports.EmptyScope{}))
	assert.Zero(t, n)
}

func TestRegistry_ReaderFromWriterSeesStagedData(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	defer writer.Abort()

	ids, err := writer.Insert(ctx, models.KindTemplate, []models.Record{models.NewTemplate("T1")})
	require.NoError(t, err)

	reader, err := registry.ReaderFromWriter(ctx, writer)
	require.NoError(t, err)

	found, err := reader.FindIDs(ctx, models.KindTemplate, []models.NaturalKey{models.HostKey("T1")})
	require.NoError(t, err)
	assert.Equal(t, ids[0], found[models.HostKey("T1")])

	rec, err := reader.GetByID(ctx, models.KindHost, ids[0])
	require.NoError(t, err)
	assert.True(t, rec.(*models.Host).IsTemplate())
}

func TestWriter_InsertRejectsDuplicateNaturalKey(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	defer writer.Abort()

	_, err = writer.Insert(ctx, models.KindItem, []models.Record{
		&models.Item{Host: "T1", HostID: 1, ItemKey: "k1"},
		&models.Item{Host: "T1", HostID: 1, ItemKey: "k1"},
	})
	assert.ErrorIs(t, err, ports.ErrDuplicateKey)
}

func TestWriter_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	ids, err := writer.Insert(ctx, models.KindItem, []models.Record{
		&models.Item{Host: "T1", HostID: 1, ItemKey: "k1", Name: "old"},
		&models.Item{Host: "T1", HostID: 1, ItemKey: "k2"},
	})
	require.NoError(t, err)

	require.NoError(t, writer.Update(ctx, models.KindItem, []models.Record{
		&models.Item{ID: ids[0], Host: "T1", HostID: 1, ItemKey: "k1", Name: "new"},
	}))
	require.NoError(t, writer.Delete(ctx, models.KindItem, []models.ID{ids[1], 999}))

	err = writer.Update(ctx, models.KindItem, []models.Record{&models.Item{ID: 999, ItemKey: "x"}})
	assert.ErrorIs(t, err, ports.ErrNotFound)
	require.NoError(t, writer.Commit())

	reader, err := registry.Reader(ctx)
	require.NoError(t, err)
	rec, err := reader.GetByID(ctx, models.KindItem, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "new", rec.(*models.Item).Name)

	_, err = reader.GetByID(ctx, models.KindItem, ids[1])
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestReader_ListScopes(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	ids, err := writer.Insert(ctx, models.KindItem, []models.Record{
		&models.Item{Host: "T1", HostID: 1, ItemKey: "k1"},
		&models.Item{Host: "H1", HostID: 2, ItemKey: "k1", TemplateID: 100},
		&models.Item{Host: "H2", HostID: 3, ItemKey: "k1", TemplateID: 100},
	})
	require.NoError(t, err)
	require.NoError(t, writer.Commit())

	reader, err := registry.Reader(ctx)
	require.NoError(t, err)

	collect := func(scope ports.Scope) []models.ID {
		var ret []models.ID
		require.NoError(t, reader.List(ctx, models.KindItem, func(r models.Record) error {
			ret = append(ret, r.GetID())
			return nil
		}, scope))
		return ret
	}

	assert.Equal(t, ids, collect(ports.EmptyScope{}))
	assert.Equal(t, ids[1:2], collect(ports.NewHostScope(2)))
	assert.Equal(t, ids[1:], collect(ports.NewTemplateScope(100)))
	assert.Equal(t, ids[:1], collect(ports.NewIDScope(ids[0])))
}

func TestReader_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	defer registry.Close()

	writer, err := registry.Writer(ctx)
	require.NoError(t, err)
	h := models.NewHost("H1")
	h.GroupIDs = []models.ID{7}
	ids, err := writer.Insert(ctx, models.KindHost, []models.Record{h})
	require.NoError(t, err)
	require.NoError(t, writer.Commit())

	reader, err := registry.Reader(ctx)
	require.NoError(t, err)
	rec, err := reader.GetByID(ctx, models.KindHost, ids[0])
	require.NoError(t, err)
	rec.(*models.Host).GroupIDs[0] = 8

	rec, err = reader.GetByID(ctx, models.KindHost, ids[0])
	require.NoError(t, err)
	assert.Equal(t, []models.ID{7}, rec.(*models.Host).GroupIDs)
}

func TestRegistry_Closed(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Close())
	_, err := registry.Writer(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_WritersAreSerialized(t *testing.T) {
	registry := NewRegistry()
	ctx := context.Background()

	first, err := registry.Writer(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = registry.Writer(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, first.Commit())
	first.Abort()

	second, err := registry.Writer(ctx)
	require.NoError(t, err)
	second.Abort()

	third, err := registry.Writer(ctx)
	require.NoError(t, err)
	third.Abort()
}
