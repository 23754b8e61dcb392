package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/domain/models"
)

func TestPropagate_TriggerDependenciesOfSameBatch(t *testing.T) {
	f := newFixture(t, nil)
	res := f.importTree(&models.ImportTree{
		Templates: []models.ImportedHost{templateDef("T", "k1")},
		Hosts:     []models.ImportedHost{hostDef("H", "T")},
		Triggers: []models.ImportedTrigger{
			{Name: "warn", Expression: "{T:k1.last()}>1", Priority: 2},
			{
				Name:         "high",
				Expression:   "{T:k1.last()}>2",
				Priority:     4,
				Dependencies: []models.TriggerRef{{Name: "warn", Expression: "{T:k1.last()}>1"}},
			},
		},
	}, models.CreateAndUpdateAll())
	assert.Equal(t, 4, res.Created[models.KindTrigger])
	assert.Zero(t, res.Updated[models.KindTrigger])

	trigger := func(name, expr string) *models.Trigger {
		return f.get(models.TriggerKey(name, expr)).(*models.Trigger)
	}
	warn, high := trigger("warn", "{T:k1.last()}>1"), trigger("high", "{T:k1.last()}>2")
	assert.Equal(t, []models.ID{warn.ID}, high.DependencyIDs)
	assert.Equal(t, f.id(models.HostKey("T")), high.HostID)

	hWarn, hHigh := trigger("warn", "{H:k1.last()}>1"), trigger("high", "{H:k1.last()}>2")
	assert.Equal(t, f.id(models.HostKey("H")), hHigh.HostID)
	assert.Equal(t, high.ID, hHigh.TemplateID)
	assert.Equal(t, warn.ID, hWarn.TemplateID)
	assert.Equal(t, 4, hHigh.Priority)
	assert.Equal(t, []models.ID{hWarn.ID}, hHigh.DependencyIDs)
}

func TestPropagate_DependenciesAcrossTemplates(t *testing.T) {
	f := newFixture(t, nil)
	f.importTree(&models.ImportTree{
		Templates: []models.ImportedHost{templateDef("T1", "a"), templateDef("T2", "b"), hostDef("T3", "T2")},
		Hosts: []models.ImportedHost{
			hostDef("H", "T1", "T2"),
			hostDef("H2", "T1"),
			hostDef("H3", "T1", "T3"),
		},
		Triggers: []models.ImportedTrigger{
			{Name: "b high", Expression: "{T2:b.last()}>1"},
			{
				Name:         "a high",
				Expression:   "{T1:a.last()}>1",
				Dependencies: []models.TriggerRef{{Name: "b high", Expression: "{T2:b.last()}>1"}},
			},
		},
	}, models.CreateAndUpdateAll())

	trigger := func(host, name, item string) *models.Trigger {
		return f.get(models.TriggerKey(name, "{"+host+":"+item+".last()}>1")).(*models.Trigger)
	}
	require.Equal(t, []models.ID{trigger("T2", "b high", "b").ID}, trigger("T1", "a high", "a").DependencyIDs)

	// both templates linked directly
	assert.Equal(t, []models.ID{trigger("H", "b high", "b").ID}, trigger("H", "a high", "a").DependencyIDs)
	// T2 not inherited: no counterpart, dependency dropped
	assert.Empty(t, trigger("H2", "a high", "a").DependencyIDs)
	// T2 inherited through T3, its copy appears one level deeper
	assert.Equal(t, []models.ID{trigger("H3", "b high", "b").ID}, trigger("H3", "a high", "a").DependencyIDs)
}

func TestPropagate_Prototypes(t *testing.T) {
	f := newFixture(t, nil)
	tpl := templateDef("T")
	tpl.DiscoveryRules = []models.ImportedDiscoveryRule{{
		ImportedItem:   models.ImportedItem{Name: "disks", Key: "vfs.fs.discovery"},
		Lifetime:       "7d",
		ItemPrototypes: []models.ImportedItem{{Name: "free on {#FS}", Key: "vfs.fs.size[{#FS},free]"}},
		TriggerPrototypes: []models.ImportedTrigger{
			{Name: "low space on {#FS}", Expression: "{T:vfs.fs.size[{#FS},free].last()}<1G"},
		},
		GraphPrototypes: []models.ImportedGraph{
			graphDef("space on {#FS}", models.ItemRef{Host: "T", Key: "vfs.fs.size[{#FS},free]"}),
		},
	}}
	res := f.importTree(&models.ImportTree{
		Templates: []models.ImportedHost{tpl},
		Hosts:     []models.ImportedHost{hostDef("H", "T")},
	}, models.CreateAndUpdateAll())
	for _, kind := range []models.Kind{
		models.KindDiscoveryRule, models.KindItemPrototype, models.KindTriggerPrototype, models.KindGraphPrototype,
	} {
		assert.Equal(t, 2, res.Created[kind], "%s", kind)
	}

	rule := f.get(models.DiscoveryRuleKey("H", "vfs.fs.discovery")).(*models.Item)
	assert.Equal(t, "7d", rule.Lifetime)
	assert.Equal(t, f.id(models.DiscoveryRuleKey("T", "vfs.fs.discovery")), rule.TemplateID)

	proto := f.get(models.ItemPrototypeKey("H", "vfs.fs.size[{#FS},free]")).(*models.Item)
	assert.Equal(t, rule.ID, proto.RuleID)
	assert.Equal(t, f.id(models.ItemPrototypeKey("T", "vfs.fs.size[{#FS},free]")), proto.TemplateID)

	tp := f.get(models.TriggerPrototypeKey("low space on {#FS}", "{H:vfs.fs.size[{#FS},free].last()}<1G")).(*models.Trigger)
	assert.Equal(t, rule.ID, tp.RuleID)
	assert.Equal(t, f.id(models.HostKey("H")), tp.HostID)

	gp := f.get(models.GraphPrototypeKey("H", "space on {#FS}")).(*models.Graph)
	assert.Equal(t, rule.ID, gp.RuleID)
	require.Len(t, gp.Items, 1)
	assert.Equal(t, models.ItemLink{ID: proto.ID, Prototype: true}, gp.Items[0].Item)
}

func TestPropagate_PrototypesNeedTheirRule(t *testing.T) {
	f := newFixture(t, nil)
	tpl := templateDef("T")
	tpl.DiscoveryRules = []models.ImportedDiscoveryRule{{
		ImportedItem:   models.ImportedItem{Key: "net.if.discovery"},
		ItemPrototypes: []models.ImportedItem{{Key: "net.if.in[{#IF}]"}},
	}}
	res := f.importTree(&models.ImportTree{Templates: []models.ImportedHost{tpl}}, models.Policies{
		models.KindTemplate:      both(),
		models.KindItemPrototype: both(),
	})
	assert.Equal(t, models.Counters{models.KindTemplate: 1}, res.Created)
	assert.Zero(t, f.count(models.KindItemPrototype))
}

func TestLinkTemplates_AdoptsEquivalentLocalItems(t *testing.T) {
	f := newFixture(t, nil)
	local := templateDef("H", "k1", "k2")
	local.Items[1].Name = "changed locally"
	f.importTree(&models.ImportTree{
		Templates: []models.ImportedHost{templateDef("T", "k1", "k2")},
		Hosts:     []models.ImportedHost{local},
	}, models.CreateAndUpdateAll())
	k1, k2 := f.item("H", "k1"), f.item("H", "k2")

	res, err := f.svc.LinkTemplates(f.ctx, []models.ID{f.id(models.HostKey("T"))}, []models.ID{f.id(models.HostKey("H"))})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, 2, res.Updated[models.KindItem])
	assert.Equal(t, 4, f.count(models.KindItem))

	adopted := f.item("H", "k1")
	assert.Equal(t, k1.ID, adopted.ID)
	assert.Equal(t, f.item("T", "k1").ID, adopted.TemplateID)

	overwritten := f.item("H", "k2")
	assert.Equal(t, k2.ID, overwritten.ID)
	assert.Equal(t, "item k2", overwritten.Name)
	assert.Equal(t, f.item("T", "k2").ID, overwritten.TemplateID)
}

func TestPropagate_GraphLinksAreRebound(t *testing.T) {
	f := newFixture(t, nil)
	g := graphDef("load", models.ItemRef{Host: "T", Key: "k1"})
	g.YMaxType = models.YAxisItemValue
	g.YMaxItem = &models.ItemRef{Host: "T", Key: "k2"}
	f.importTree(&models.ImportTree{
		Templates: []models.ImportedHost{templateDef("T", "k1", "k2")},
		Hosts:     []models.ImportedHost{hostDef("H", "T")},
		Graphs:    []models.ImportedGraph{g},
	}, models.CreateAndUpdateAll())

	parent := f.get(models.GraphKey("T", "load")).(*models.Graph)
	child := f.get(models.GraphKey("H", "load")).(*models.Graph)
	assert.Equal(t, parent.ID, child.TemplateID)
	assert.Equal(t, f.id(models.HostKey("H")), child.HostID)
	require.Len(t, child.Items, 1)
	assert.Equal(t, f.item("H", "k1").ID, child.Items[0].Item.ID)
	assert.Equal(t, "00AA00", child.Items[0].Color)
	assert.Equal(t, models.YAxisItemValue, child.YMaxType)
	assert.Equal(t, f.item("H", "k2").ID, child.YMaxItem.ID)
	assert.Equal(t, f.item("T", "k2").ID, parent.YMaxItem.ID)
}

func TestImportConfiguration_MapsReferenceEachOther(t *testing.T) {
	f := newFixture(t, nil)
	icon := &models.NameRef{Name: "server"}
	res := f.importTree(&models.ImportTree{
		Images: []models.ImportedImage{{Name: "server", EncodedImage: "iVBORw0KGgo="}},
		Maps: []models.ImportedMap{
			{Name: "dc", Elements: []models.ImportedMapElement{
				{ElementType: models.MapElementMap, Element: models.MapElementRef{Name: "rack"}, IconOff: icon},
				{ElementType: models.MapElementImage, IconOff: icon, Label: "logo"},
			}},
			{Name: "rack", Elements: []models.ImportedMapElement{
				{ElementType: models.MapElementMap, Element: models.MapElementRef{Name: "dc"}, IconOff: icon},
			}},
		},
		Screens: []models.ImportedScreen{{
			Name:  "overview",
			Items: []models.ImportedScreenItem{{ResourceType: models.ScreenResourceMap, Resource: models.ScreenResourceRef{Name: "dc"}}},
		}},
	}, models.CreateAndUpdateAll())
	assert.Equal(t, models.Counters{models.KindImage: 1, models.KindMap: 2, models.KindScreen: 1}, res.Created)
	assert.Zero(t, res.Updated[models.KindMap])

	iconID := f.id(models.ImageKey("server"))
	dc := f.get(models.MapKey("dc")).(*models.Map)
	rack := f.get(models.MapKey("rack")).(*models.Map)
	require.Len(t, dc.Elements, 2)
	assert.Equal(t, rack.ID, dc.Elements[0].ElementID)
	assert.Equal(t, iconID, dc.Elements[0].IconID)
	assert.Zero(t, dc.Elements[1].ElementID)
	assert.Equal(t, "logo", dc.Elements[1].Label)
	require.Len(t, rack.Elements, 1)
	assert.Equal(t, dc.ID, rack.Elements[0].ElementID)

	screen := f.get(models.ScreenKey("overview")).(*models.Screen)
	require.Len(t, screen.Items, 1)
	assert.Equal(t, dc.ID, screen.Items[0].ResourceID)
}
