package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/domain/models"
)

func TestCollect_NestedPrototypes(t *testing.T) {
	tree := &models.ImportTree{
		Templates: []models.ImportedHost{{
			Host:   "T1",
			Groups: []models.NameRef{{Name: "G1"}, {Name: "G1"}},
			DiscoveryRules: []models.ImportedDiscoveryRule{{
				ImportedItem:   models.ImportedItem{Key: "lld"},
				ItemPrototypes: []models.ImportedItem{{Key: "p[{#X}]", Applications: []models.NameRef{{Name: "A"}}}},
				TriggerPrototypes: []models.ImportedTrigger{{
					Name:         "high",
					Expression:   "{T1:p[{#X}].last()}>1",
					Dependencies: []models.TriggerRef{{Name: "low", Expression: "{T1:p[{#X}].last()}>0"}},
				}},
				GraphPrototypes: []models.ImportedGraph{{
					Name:  "g",
					Items: []models.ImportedGraphItem{{Item: models.ItemRef{Host: "T1", Key: "p[{#X}]"}}},
				}},
			}},
		}},
	}
	refs := Collect(tree, models.CreateAndUpdateAll())

	for _, key := range []models.NaturalKey{
		models.HostKey("T1"),
		models.GroupKey("G1"),
		models.DiscoveryRuleKey("T1", "lld"),
		models.ItemPrototypeKey("T1", "p[{#X}]"),
		models.ItemKey("T1", "p[{#X}]"),
		models.ApplicationKey("T1", "A"),
		models.TriggerPrototypeKey("high", "{T1:p[{#X}].last()}>1"),
		models.TriggerPrototypeKey("low", "{T1:p[{#X}].last()}>0"),
		models.GraphPrototypeKey("T1", "g"),
	} {
		assert.True(t, refs.Has(key), "%s", key)
	}
	assert.False(t, refs.Has(models.TriggerKey("low", "{T1:p[{#X}].last()}>0")))
	assert.Len(t, refs.Keys(models.KindGroup), 1)
	assert.True(t, refs.Has(models.NaturalKey{Kind: models.KindTemplate, Name: "T1"}))
}

func TestCollect_SkippedKinds(t *testing.T) {
	tree := &models.ImportTree{
		Groups: []models.ImportedGroup{{Name: "G1"}},
		Hosts: []models.ImportedHost{{
			Host:   "H1",
			Groups: []models.NameRef{{Name: "G2"}},
			Items:  []models.ImportedItem{{Key: "k1", Applications: []models.NameRef{{Name: "A"}}}},
		}},
		Graphs: []models.ImportedGraph{{
			Name:  "g",
			Items: []models.ImportedGraphItem{{Item: models.ItemRef{Host: "H1", Key: "k1"}}},
		}},
	}
	policies := models.Policies{models.KindItem: {CreateMissing: true}}
	refs := Collect(tree, policies)

	assert.False(t, refs.Has(models.GroupKey("G1")))
	assert.False(t, refs.Has(models.HostKey("H1")))
	assert.False(t, refs.Has(models.GroupKey("G2")))
	assert.False(t, refs.Has(models.GraphKey("H1", "g")))
	assert.True(t, refs.Has(models.ItemKey("H1", "k1")))
	assert.True(t, refs.Has(models.ApplicationKey("H1", "A")))
	assert.Equal(t, []models.Kind{models.KindApplication, models.KindItem}, refs.Kinds())

	assert.Zero(t, Collect(tree, nil).Len())
}

func TestCollect_MapsAndScreens(t *testing.T) {
	tree := &models.ImportTree{
		Maps: []models.ImportedMap{{
			Name: "M1",
			Elements: []models.ImportedMapElement{
				{ElementType: models.MapElementHost, Element: models.MapElementRef{Host: "H1"}},
				{ElementType: models.MapElementMap, Element: models.MapElementRef{Name: "M2"}},
				{ElementType: models.MapElementImage, IconOff: &models.NameRef{Name: "icon"}},
			},
		}},
		Screens: []models.ImportedScreen{{
			Name: "S1",
			Items: []models.ImportedScreenItem{
				{ResourceType: models.ScreenResourceGraph, Resource: models.ScreenResourceRef{Host: "H1", Name: "g"}},
				{ResourceType: models.ScreenResourcePlainText, Resource: models.ScreenResourceRef{Host: "H1", ItemKey: "k1"}},
			},
		}},
	}
	refs := Collect(tree, models.CreateAndUpdateAll())
	require.Equal(t, 7, refs.Len())
	for _, key := range []models.NaturalKey{
		models.MapKey("M1"), models.MapKey("M2"), models.HostKey("H1"), models.ImageKey("icon"),
		models.ScreenKey("S1"), models.GraphKey("H1", "g"), models.ItemKey("H1", "k1"),
	} {
		assert.True(t, refs.Has(key), "%s", key)
	}
}
