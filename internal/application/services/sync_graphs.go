package services

import (
	"context"

	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

// importedGraph a graph or graph prototype with the rule owning it
type importedGraph struct {
	src    models.ImportedGraph
	ruleID models.ID
}

func plainGraphs(tree *models.ImportTree) []importedGraph {
	ret := make([]importedGraph, 0, len(tree.Graphs))
	for _, g := range tree.Graphs {
		ret = append(ret, importedGraph{src: g})
	}
	return ret
}

func (o *operation) graphPrototypes(tree *models.ImportTree) []importedGraph {
	var ret []importedGraph
	for _, r := range o.processedRulesOf(o.processed(tree)) {
		for _, g := range r.src.GraphPrototypes {
			ret = append(ret, importedGraph{src: g, ruleID: r.id})
		}
	}
	return ret
}

// itemLink resolves a graph item reference; graph prototypes look for an item prototype first
func (o *operation) itemLink(prototype bool, ref models.ItemRef, referrer models.NaturalKey) (models.ItemLink, error) {
	key, id, err := o.requireAny(referrer, itemRefKeys(prototype, ref)...)
	if err != nil {
		return models.ItemLink{}, err
	}
	return models.ItemLink{ID: id, Prototype: key.Kind == models.KindItemPrototype}, nil
}

func (o *operation) syncGraphs(ctx context.Context, kind models.Kind, imported []importedGraph) ([]models.Record, error) {
	p := o.newPlan(kind)
	prototype := kind == models.KindGraphPrototype
	flags := models.GraphFlagPlain
	if prototype {
		flags = models.GraphFlagPrototype
	}
	for _, ig := range imported {
		g := ig.src
		owner := g.Owner()
		if owner == "" {
			return nil, validation.NewValidationError("%s '%s' has no graph items", kind, g.Name)
		}
		hostID, ok := o.processedHosts[owner]
		if !ok {
			klog.V(4).Infof("[%s] %s '%s' skipped: host '%s' not processed", o.runID, kind, g.Name, owner)
			continue
		}
		rec := &models.Graph{
			Flags:     flags,
			HostID:    hostID,
			Host:      owner,
			Name:      g.Name,
			Width:     g.Width,
			Height:    g.Height,
			GraphType: g.Type,
			YMinType:  g.YMinType,
			YMaxType:  g.YMaxType,
			RuleID:    ig.ruleID,
		}
		bind := func() error {
			rec.Items = make([]models.GraphItem, 0, len(g.Items))
			for _, gi := range g.Items {
				link, err := o.itemLink(prototype, gi.Item, rec.Key())
				if err != nil {
					return err
				}
				rec.Items = append(rec.Items, models.GraphItem{
					Item:      link,
					Color:     gi.Color,
					SortOrder: gi.SortOrder,
					DrawType:  gi.DrawType,
					CalcFnc:   gi.CalcFnc,
					YAxisSide: gi.YAxisSide,
				})
			}
			var err error
			if g.YMinType == models.YAxisItemValue && g.YMinItem != nil {
				if rec.YMinItem, err = o.itemLink(prototype, *g.YMinItem, rec.Key()); err != nil {
					return err
				}
			}
			if g.YMaxType == models.YAxisItemValue && g.YMaxItem != nil {
				if rec.YMaxItem, err = o.itemLink(prototype, *g.YMaxItem, rec.Key()); err != nil {
					return err
				}
			}
			return nil
		}
		if err := o.plan(p, rec, bind); err != nil {
			return nil, err
		}
	}
	return o.apply(ctx, p)
}
