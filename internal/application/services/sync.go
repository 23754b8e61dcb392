package services

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"moncfg-backend/internal/domain/models"
)

type action int

const (
	actionDrop action = iota
	actionCreate
	actionUpdate
)

// plan partitions the imported objects of one kind into creates and updates
type plan struct {
	kind    models.Kind
	policy  models.SyncPolicy
	seen    map[models.NaturalKey]struct{}
	creates []models.Record
	updates []models.Record
}

func (o *operation) newPlan(kind models.Kind) *plan {
	return &plan{
		kind:   kind,
		policy: o.policies.For(kind),
		seen:   make(map[models.NaturalKey]struct{}),
	}
}

// decide resolves the own key of an imported object and applies the sync policy to it.
// A repeated key within one import is dropped.
func (o *operation) decide(p *plan, key models.NaturalKey) (action, models.ID, error) {
	key = key.Storage()
	if _, dup := p.seen[key]; dup {
		return actionDrop, 0, nil
	}
	p.seen[key] = struct{}{}
	id, err := o.resolver.Resolve(key)
	if err != nil {
		return actionDrop, 0, err
	}
	switch {
	case id != 0 && p.policy.UpdateExisting:
		return actionUpdate, id, nil
	case id == 0 && p.policy.CreateMissing:
		return actionCreate, 0, nil
	}
	klog.V(4).Infof("[%s] %s dropped by policy", o.runID, key)
	return actionDrop, id, nil
}

func (p *plan) add(act action, id models.ID, rec models.Record) {
	switch act {
	case actionCreate:
		p.creates = append(p.creates, rec)
	case actionUpdate:
		rec.SetID(id)
		p.updates = append(p.updates, rec)
	}
}

// plan decides on a record and, unless it is dropped, binds its references and adds it
func (o *operation) plan(p *plan, rec models.Record, bind ...func() error) error {
	act, id, err := o.decide(p, rec.Key())
	if err != nil || act == actionDrop {
		return err
	}
	for _, b := range bind {
		if err = b(); err != nil {
			return err
		}
	}
	p.add(act, id, rec)
	return nil
}

func (p *plan) records() []models.Record {
	ret := make([]models.Record, 0, len(p.creates)+len(p.updates))
	ret = append(ret, p.creates...)
	return append(ret, p.updates...)
}

// apply persists the plan with one insert and one update call
func (o *operation) apply(ctx context.Context, p *plan) ([]models.Record, error) {
	if err := o.insertPlanned(ctx, p); err != nil {
		return nil, err
	}
	if err := o.updatePlanned(ctx, p, nil); err != nil {
		return nil, err
	}
	return p.records(), nil
}

func (o *operation) insertPlanned(ctx context.Context, p *plan) error {
	return o.insert(ctx, p.kind, p.creates)
}

// updatePlanned writes the updates of the plan; updated records keep the inheritance link
// of the stored record
func (o *operation) updatePlanned(ctx context.Context, p *plan, fixups []models.Record) error {
	if p.kind.Inheritable() && len(p.updates) > 0 {
		existing, err := o.byIDs(ctx, p.kind, models.IDs(p.updates))
		if err != nil {
			return err
		}
		for _, rec := range p.updates {
			if ex, ok := existing[rec.GetID()]; ok {
				rec.SetTemplateID(ex.GetTemplateID())
			}
		}
	}
	return o.update(ctx, p.kind, p.updates, fixups)
}

type syncStep struct {
	kind models.Kind
	run  func(ctx context.Context) ([]models.Record, error)
}

// syncAll synchronizes every kind in processing order. Inheritable kinds are propagated to
// linked hosts right after their own writes, and the resolver is refreshed so that later
// kinds see the new ids.
func (o *operation) syncAll(ctx context.Context, tree *models.ImportTree) error {
	steps := []syncStep{
		{models.KindGroup, func(ctx context.Context) ([]models.Record, error) {
			return o.syncGroups(ctx, tree.Groups)
		}},
		{models.KindTemplate, func(ctx context.Context) ([]models.Record, error) {
			return o.syncHosts(ctx, models.KindTemplate, tree.Templates)
		}},
		{models.KindHost, func(ctx context.Context) ([]models.Record, error) {
			return o.syncHosts(ctx, models.KindHost, tree.Hosts)
		}},
		{models.KindMacro, func(ctx context.Context) ([]models.Record, error) {
			return o.syncMacros(ctx, o.processed(tree))
		}},
		{models.KindApplication, func(ctx context.Context) ([]models.Record, error) {
			return o.syncApplications(ctx, o.processed(tree))
		}},
		{models.KindItem, func(ctx context.Context) ([]models.Record, error) {
			return o.syncItems(ctx, o.processed(tree))
		}},
		{models.KindDiscoveryRule, func(ctx context.Context) ([]models.Record, error) {
			return o.syncDiscoveryRules(ctx, o.processed(tree))
		}},
		{models.KindItemPrototype, func(ctx context.Context) ([]models.Record, error) {
			return o.syncItemPrototypes(ctx, o.processed(tree))
		}},
		{models.KindTrigger, func(ctx context.Context) ([]models.Record, error) {
			return o.syncTriggers(ctx, models.KindTrigger, plainTriggers(tree))
		}},
		{models.KindTriggerPrototype, func(ctx context.Context) ([]models.Record, error) {
			return o.syncTriggers(ctx, models.KindTriggerPrototype, o.triggerPrototypes(tree))
		}},
		{models.KindGraph, func(ctx context.Context) ([]models.Record, error) {
			return o.syncGraphs(ctx, models.KindGraph, plainGraphs(tree))
		}},
		{models.KindGraphPrototype, func(ctx context.Context) ([]models.Record, error) {
			return o.syncGraphs(ctx, models.KindGraphPrototype, o.graphPrototypes(tree))
		}},
		{models.KindImage, func(ctx context.Context) ([]models.Record, error) {
			return o.syncImages(ctx, tree.Images)
		}},
		{models.KindMap, func(ctx context.Context) ([]models.Record, error) {
			return o.syncMaps(ctx, tree.Maps)
		}},
		{models.KindScreen, func(ctx context.Context) ([]models.Record, error) {
			return o.syncScreens(ctx, tree.Screens)
		}},
	}
	for _, step := range steps {
		if o.policies.Skipped(step.kind) {
			klog.V(2).Infof("[%s] %s skipped", o.runID, step.kind)
			continue
		}
		recs, err := step.run(ctx)
		if err != nil {
			return errors.WithMessagef(err, "sync %s", step.kind)
		}
		if step.kind.Inheritable() {
			if err = o.propagate(ctx, step.kind, recs, nil); err != nil {
				return errors.WithMessagef(err, "inherit %s", step.kind)
			}
		}
		if err = o.resolver.Refresh(ctx, step.kind); err != nil {
			return err
		}
		klog.V(2).Infof("[%s] %s: %d created, %d updated", o.runID, step.kind,
			o.result.Created[step.kind], o.result.Updated[step.kind])
	}
	return nil
}

func (o *operation) syncGroups(ctx context.Context, groups []models.ImportedGroup) ([]models.Record, error) {
	p := o.newPlan(models.KindGroup)
	for _, g := range groups {
		if err := o.plan(p, models.NewGroup(g.Name)); err != nil {
			return nil, err
		}
	}
	return o.apply(ctx, p)
}
