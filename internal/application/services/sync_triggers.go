package services

import (
	"context"

	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

// importedTrigger a trigger or trigger prototype with the rule owning it
type importedTrigger struct {
	src    models.ImportedTrigger
	ruleID models.ID
}

func plainTriggers(tree *models.ImportTree) []importedTrigger {
	ret := make([]importedTrigger, 0, len(tree.Triggers))
	for _, t := range tree.Triggers {
		ret = append(ret, importedTrigger{src: t})
	}
	return ret
}

func (o *operation) triggerPrototypes(tree *models.ImportTree) []importedTrigger {
	var ret []importedTrigger
	for _, r := range o.processedRulesOf(o.processed(tree)) {
		for _, t := range r.src.TriggerPrototypes {
			ret = append(ret, importedTrigger{src: t, ruleID: r.id})
		}
	}
	return ret
}

func triggerKey(kind models.Kind, name, expression string) models.NaturalKey {
	if kind == models.KindTriggerPrototype {
		return models.TriggerPrototypeKey(name, expression)
	}
	return models.TriggerKey(name, expression)
}

type plannedTrigger struct {
	src     models.ImportedTrigger
	rec     *models.Trigger
	created bool
}

// syncTriggers synchronizes triggers or trigger prototypes. Dependencies may point at
// triggers created in the same batch, so they are bound after the insert.
func (o *operation) syncTriggers(ctx context.Context, kind models.Kind, imported []importedTrigger) ([]models.Record, error) {
	p := o.newPlan(kind)
	prototype := kind == models.KindTriggerPrototype
	flags := models.TriggerFlagPlain
	if prototype {
		flags = models.TriggerFlagPrototype
	}
	var todo []plannedTrigger
	for _, it := range imported {
		t := it.src
		owner := t.Owner()
		if owner == "" {
			return nil, validation.NewValidationError("%s '%s': expression '%s' references no item",
				kind, t.Name, t.Expression)
		}
		hostID, ok := o.processedHosts[owner]
		if !ok {
			klog.V(4).Infof("[%s] %s '%s' skipped: host '%s' not processed", o.runID, kind, t.Name, owner)
			continue
		}
		rec := &models.Trigger{
			Flags:       flags,
			HostID:      hostID,
			Description: t.Name,
			Expression:  t.Expression,
			Priority:    t.Priority,
			Comments:    t.Comments,
			URL:         t.URL,
			Status:      t.Status,
			RuleID:      it.ruleID,
		}
		act, id, err := o.decide(p, rec.Key())
		if err != nil {
			return nil, err
		}
		if act == actionDrop {
			continue
		}
		for _, ref := range models.ExpressionRefs(t.Expression) {
			if _, _, err := o.requireAny(rec.Key(), itemRefKeys(prototype, ref)...); err != nil {
				return nil, err
			}
		}
		p.add(act, id, rec)
		todo = append(todo, plannedTrigger{src: t, rec: rec, created: act == actionCreate})
	}

	if err := o.insertPlanned(ctx, p); err != nil {
		return nil, err
	}
	var fixups []models.Record
	for _, t := range todo {
		for _, d := range t.src.Dependencies {
			id, err := o.require(triggerKey(kind, d.Name, d.Expression), t.rec.Key())
			if err != nil {
				return nil, err
			}
			if !models.ContainsID(t.rec.DependencyIDs, id) {
				t.rec.DependencyIDs = append(t.rec.DependencyIDs, id)
			}
		}
		if t.created && len(t.rec.DependencyIDs) > 0 {
			fixups = append(fixups, t.rec)
		}
	}
	if err := o.updatePlanned(ctx, p, fixups); err != nil {
		return nil, err
	}
	return p.records(), nil
}

// triggerDependencyEdges returns the dependency edges among imported triggers of the
// processed kinds
func (o *operation) triggerDependencyEdges(tree *models.ImportTree) []models.LinkEdge {
	var ret []models.LinkEdge
	add := func(kind models.Kind, t models.ImportedTrigger) {
		from := triggerKey(kind, t.Name, t.Expression).String()
		for _, d := range t.Dependencies {
			ret = append(ret, models.LinkEdge{
				Host:     from,
				Template: triggerKey(kind, d.Name, d.Expression).String(),
				Kind:     models.LinkTriggerDependency,
			})
		}
	}
	if !o.policies.Skipped(models.KindTrigger) {
		for _, t := range tree.Triggers {
			add(models.KindTrigger, t)
		}
	}
	if !o.policies.Skipped(models.KindTriggerPrototype) {
		for _, list := range [][]models.ImportedHost{tree.Templates, tree.Hosts} {
			for _, h := range list {
				for _, r := range h.DiscoveryRules {
					for _, t := range r.TriggerPrototypes {
						add(models.KindTriggerPrototype, t)
					}
				}
			}
		}
	}
	return ret
}
