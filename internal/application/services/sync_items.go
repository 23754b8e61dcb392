package services

import (
	"context"

	"k8s.io/klog/v2"

	"moncfg-backend/internal/domain/models"
)

func (o *operation) syncMacros(ctx context.Context, hosts []processedHost) ([]models.Record, error) {
	p := o.newPlan(models.KindMacro)
	for _, h := range hosts {
		for _, m := range h.src.Macros {
			rec := &models.Macro{HostID: h.id, Host: h.src.Host, Macro: m.Macro, Value: m.Value}
			if err := o.plan(p, rec); err != nil {
				return nil, err
			}
		}
	}
	return o.apply(ctx, p)
}

func (o *operation) syncApplications(ctx context.Context, hosts []processedHost) ([]models.Record, error) {
	p := o.newPlan(models.KindApplication)
	for _, h := range hosts {
		for _, a := range h.src.Applications {
			rec := &models.Application{HostID: h.id, Host: h.src.Host, Name: a.Name}
			if err := o.plan(p, rec); err != nil {
				return nil, err
			}
		}
	}
	return o.apply(ctx, p)
}

func newItem(flags models.ItemFlags, h processedHost, src models.ImportedItem) *models.Item {
	return &models.Item{
		HostID:      h.id,
		Host:        h.src.Host,
		Flags:       flags,
		ItemKey:     src.Key,
		Name:        src.Name,
		Type:        src.Type,
		ValueType:   src.ValueType,
		Delay:       src.Delay,
		History:     src.History,
		Trends:      src.Trends,
		Units:       src.Units,
		Description: src.Description,
		Status:      src.Status,
	}
}

// bindApplications resolves the applications of an item on its own host
func (o *operation) bindApplications(rec *models.Item, apps []models.NameRef) error {
	for _, a := range apps {
		id, err := o.require(models.ApplicationKey(rec.Host, a.Name), rec.Key())
		if err != nil {
			return err
		}
		if !models.ContainsID(rec.ApplicationIDs, id) {
			rec.ApplicationIDs = append(rec.ApplicationIDs, id)
		}
	}
	return nil
}

func (o *operation) syncItems(ctx context.Context, hosts []processedHost) ([]models.Record, error) {
	p := o.newPlan(models.KindItem)
	for _, h := range hosts {
		for _, it := range h.src.Items {
			rec := newItem(models.ItemFlagPlain, h, it)
			bind := func() error { return o.bindApplications(rec, it.Applications) }
			if err := o.plan(p, rec, bind); err != nil {
				return nil, err
			}
		}
	}
	return o.apply(ctx, p)
}

// syncDiscoveryRules synchronizes rules and records which of them were written; prototypes
// of any other rule are skipped
func (o *operation) syncDiscoveryRules(ctx context.Context, hosts []processedHost) ([]models.Record, error) {
	p := o.newPlan(models.KindDiscoveryRule)
	for _, h := range hosts {
		for _, r := range h.src.DiscoveryRules {
			rec := newItem(models.ItemFlagDiscoveryRule, h, r.ImportedItem)
			rec.Filter = r.Filter
			rec.Lifetime = r.Lifetime
			if err := o.plan(p, rec); err != nil {
				return nil, err
			}
		}
	}
	recs, err := o.apply(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		o.processedRules[rec.Key()] = rec.GetID()
	}
	return recs, nil
}

// processedRule is a discovery rule written in this run with its host
type processedRule struct {
	host processedHost
	src  models.ImportedDiscoveryRule
	id   models.ID
}

func (o *operation) processedRulesOf(hosts []processedHost) []processedRule {
	var ret []processedRule
	for _, h := range hosts {
		for _, r := range h.src.DiscoveryRules {
			key := models.DiscoveryRuleKey(h.src.Host, r.Key)
			id, ok := o.processedRules[key]
			if !ok {
				if len(r.ItemPrototypes)+len(r.TriggerPrototypes)+len(r.GraphPrototypes) > 0 {
					klog.V(4).Infof("[%s] prototypes of %s skipped: rule not processed", o.runID, key)
				}
				continue
			}
			ret = append(ret, processedRule{host: h, src: r, id: id})
		}
	}
	return ret
}

func (o *operation) syncItemPrototypes(ctx context.Context, hosts []processedHost) ([]models.Record, error) {
	p := o.newPlan(models.KindItemPrototype)
	for _, r := range o.processedRulesOf(hosts) {
		for _, it := range r.src.ItemPrototypes {
			rec := newItem(models.ItemFlagPrototype, r.host, it)
			rec.RuleID = r.id
			bind := func() error { return o.bindApplications(rec, it.Applications) }
			if err := o.plan(p, rec, bind); err != nil {
				return nil, err
			}
		}
	}
	return o.apply(ctx, p)
}
