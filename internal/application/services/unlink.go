package services

import (
	"context"
	"sort"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// recordSet records per kind keyed by id
type recordSet map[models.Kind]map[models.ID]models.Record

func (s recordSet) add(rec models.Record) bool {
	kind := rec.Kind()
	m, ok := s[kind]
	if !ok {
		m = make(map[models.ID]models.Record)
		s[kind] = m
	}
	if _, dup := m[rec.GetID()]; dup {
		return false
	}
	m[rec.GetID()] = rec
	return true
}

func (s recordSet) has(kind models.Kind, id models.ID) bool {
	_, ok := s[kind][id]
	return ok
}

// sorted returns the records of a kind ordered by id
func (s recordSet) sorted(kind models.Kind) []models.Record {
	ret := make([]models.Record, 0, len(s[kind]))
	for _, rec := range s[kind] {
		ret = append(ret, rec)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].GetID() < ret[j].GetID() })
	return ret
}

// hostIDs returns the owners of the records of the given kinds
func (s recordSet) hostIDs(kinds ...models.Kind) []models.ID {
	var ret []models.ID
	for _, kind := range kinds {
		for _, rec := range s.sorted(kind) {
			if id := rec.GetHostID(); !models.ContainsID(ret, id) {
				ret = append(ret, id)
			}
		}
	}
	return ret
}

// detach releases what hosts inherited through the removed links. Without clear the host
// copies only lose their template reference; with clear they are deleted with everything
// depending on them.
func (o *operation) detach(ctx context.Context, links map[hostLink]bool, clear bool) error {
	var templates []models.ID
	for l := range links {
		if !models.ContainsID(templates, l.template) {
			templates = append(templates, l.template)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i] < templates[j] })

	direct := make(recordSet)
	for _, kind := range models.InheritableKinds {
		parents, err := o.list(ctx, kind, ports.NewHostScope(templates...))
		if err != nil {
			return err
		}
		owner := make(map[models.ID]models.ID, len(parents))
		for _, p := range parents {
			owner[p.GetID()] = p.GetHostID()
		}
		children, err := o.list(ctx, kind, ports.NewTemplateScope(models.IDs(parents)...))
		if err != nil {
			return err
		}
		for _, c := range children {
			if links[hostLink{host: c.GetHostID(), template: owner[c.GetTemplateID()]}] {
				direct.add(c)
			}
		}
	}

	if clear {
		return o.clearInherited(ctx, direct)
	}
	for _, kind := range models.InheritableKinds {
		recs := direct.sorted(kind)
		for _, rec := range recs {
			rec.SetTemplateID(0)
		}
		if err := o.update(ctx, kind, recs, nil); err != nil {
			return err
		}
	}
	return nil
}

// clearInherited deletes records, the copies inherited from them on deeper hosts, and the
// records depending on them. Survivors that merely reference deleted records are updated.
func (o *operation) clearInherited(ctx context.Context, direct recordSet) error {
	deleted := make(recordSet)
	partial := make(recordSet)
	for _, kind := range models.InheritableKinds {
		cascade, err := o.cascadeOf(ctx, kind, deleted, partial)
		if err != nil {
			return err
		}
		frontier := append(direct.sorted(kind), cascade...)
		for len(frontier) > 0 {
			var fresh []models.Record
			for _, rec := range frontier {
				if deleted.add(rec) {
					fresh = append(fresh, rec)
				}
			}
			if frontier, err = o.list(ctx, kind, ports.NewTemplateScope(models.IDs(fresh)...)); err != nil {
				return err
			}
		}
	}

	survivors, err := o.survivorUpdates(ctx, deleted, partial)
	if err != nil {
		return err
	}
	for _, kind := range models.InheritableKinds {
		if err = o.update(ctx, kind, survivors.sorted(kind), nil); err != nil {
			return err
		}
	}
	for i := len(models.InheritableKinds) - 1; i >= 0; i-- {
		kind := models.InheritableKinds[i]
		if err = o.delete(ctx, kind, deleted.sorted(kind)); err != nil {
			return err
		}
	}
	return nil
}

// cascadeOf returns records of kind that cannot outlive the records deleted so far:
// prototypes of deleted rules, triggers built on deleted items and graphs composed only of
// deleted items. Graphs that keep some of their items are collected in partial.
func (o *operation) cascadeOf(ctx context.Context, kind models.Kind, deleted, partial recordSet) ([]models.Record, error) {
	var ret []models.Record
	if kind.Prototype() && len(deleted[models.KindDiscoveryRule]) > 0 {
		recs, err := o.list(ctx, kind, ports.NewRuleScope(models.IDs(deleted.sorted(models.KindDiscoveryRule))...))
		if err != nil {
			return nil, err
		}
		ret = append(ret, recs...)
	}
	itemKinds := []models.Kind{models.KindItem}
	if kind.Prototype() {
		itemKinds = append(itemKinds, models.KindItemPrototype)
	}
	switch kind {
	case models.KindTrigger, models.KindTriggerPrototype:
		gone := make(map[models.ItemRef]struct{})
		for _, k := range itemKinds {
			for _, rec := range deleted[k] {
				it := rec.(*models.Item)
				gone[models.ItemRef{Host: it.Host, Key: it.ItemKey}] = struct{}{}
			}
		}
		if len(gone) == 0 {
			return ret, nil
		}
		recs, err := o.list(ctx, kind, ports.NewHostScope(deleted.hostIDs(itemKinds...)...))
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			for _, r := range models.ExpressionRefs(rec.(*models.Trigger).Expression) {
				if _, ok := gone[r]; ok {
					ret = append(ret, rec)
					break
				}
			}
		}
	case models.KindGraph, models.KindGraphPrototype:
		recs, err := o.list(ctx, kind, ports.NewHostScope(deleted.hostIDs(itemKinds...)...))
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			g := rec.(*models.Graph)
			n := 0
			for _, gi := range g.Items {
				if deleted.has(gi.Item.Kind(), gi.Item.ID) {
					n++
				}
			}
			switch {
			case n > 0 && n == len(g.Items):
				ret = append(ret, rec)
			case n > 0, deleted.has(g.YMinItem.Kind(), g.YMinItem.ID), deleted.has(g.YMaxItem.Kind(), g.YMaxItem.ID):
				partial.add(rec)
			}
		}
	}
	return ret, nil
}

// survivorUpdates drops references to deleted records from records that are kept
func (o *operation) survivorUpdates(ctx context.Context, deleted, partial recordSet) (recordSet, error) {
	ret := make(recordSet)
	for _, kind := range []models.Kind{models.KindGraph, models.KindGraphPrototype} {
		for _, rec := range partial.sorted(kind) {
			if deleted.has(kind, rec.GetID()) {
				continue
			}
			g := rec.(*models.Graph)
			items := g.Items[:0]
			for _, gi := range g.Items {
				if !deleted.has(gi.Item.Kind(), gi.Item.ID) {
					items = append(items, gi)
				}
			}
			g.Items = items
			if !g.YMinItem.IsZero() && deleted.has(g.YMinItem.Kind(), g.YMinItem.ID) {
				g.YMinType, g.YMinItem = models.YAxisCalculated, models.ItemLink{}
			}
			if !g.YMaxItem.IsZero() && deleted.has(g.YMaxItem.Kind(), g.YMaxItem.ID) {
				g.YMaxType, g.YMaxItem = models.YAxisCalculated, models.ItemLink{}
			}
			ret.add(g)
		}
	}
	if len(deleted[models.KindApplication]) > 0 {
		for _, kind := range []models.Kind{models.KindItem, models.KindItemPrototype} {
			recs, err := o.list(ctx, kind, ports.NewHostScope(deleted.hostIDs(models.KindApplication)...))
			if err != nil {
				return nil, err
			}
			for _, rec := range recs {
				it := rec.(*models.Item)
				if deleted.has(kind, it.ID) {
					continue
				}
				if apps := keepIDs(it.ApplicationIDs, models.KindApplication, deleted); len(apps) != len(it.ApplicationIDs) {
					it.ApplicationIDs = apps
					ret.add(it)
				}
			}
		}
	}
	for _, kind := range []models.Kind{models.KindTrigger, models.KindTriggerPrototype} {
		if len(deleted[kind]) == 0 {
			continue
		}
		recs, err := o.list(ctx, kind, ports.NewDependencyScope(models.IDs(deleted.sorted(kind))...))
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			t := rec.(*models.Trigger)
			if deleted.has(kind, t.ID) {
				continue
			}
			if deps := keepIDs(t.DependencyIDs, kind, deleted); len(deps) != len(t.DependencyIDs) {
				t.DependencyIDs = deps
				ret.add(t)
			}
		}
	}
	return ret, nil
}

func keepIDs(ids []models.ID, kind models.Kind, deleted recordSet) []models.ID {
	var ret []models.ID
	for _, id := range ids {
		if !deleted.has(kind, id) {
			ret = append(ret, id)
		}
	}
	return ret
}
