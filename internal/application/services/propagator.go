package services

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// ref a record id together with the kind of the record
type ref struct {
	kind models.Kind
	id   models.ID
}

// refsOf lists the records a host-owned record points at
func refsOf(rec models.Record) []ref {
	var ret []ref
	if ro, ok := rec.(models.RuleOwned); ok && ro.GetRuleID() != 0 {
		ret = append(ret, ref{models.KindDiscoveryRule, ro.GetRuleID()})
	}
	switch r := rec.(type) {
	case *models.Item:
		for _, id := range r.ApplicationIDs {
			ret = append(ret, ref{models.KindApplication, id})
		}
	case *models.Trigger:
		for _, id := range r.DependencyIDs {
			ret = append(ret, ref{r.Kind(), id})
		}
	case *models.Graph:
		for _, l := range r.Links() {
			ret = append(ret, ref{l.Kind(), l.ID})
		}
	}
	return ret
}

// inheritTarget one template-level record and one host that inherits it
type inheritTarget struct {
	parent   models.Record
	from, to *models.Host
	key      models.NaturalKey
	result   models.Record
	adopted  bool
	created  bool
}

// pendingDependency a dependency of an inherited trigger whose counterpart on the child host
// does not exist yet, typically because it is created at a deeper level of the same chain
type pendingDependency struct {
	trigger *models.Trigger
	key     models.NaturalKey
}

// inheritLinks makes hosts inherit every entity of the templates newly linked to them,
// kind by kind so that items find their applications and triggers their items
func (o *operation) inheritLinks(ctx context.Context, links map[hostLink]bool) error {
	if len(links) == 0 {
		return nil
	}
	var templates []models.ID
	for l := range links {
		if !models.ContainsID(templates, l.template) {
			templates = append(templates, l.template)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i] < templates[j] })
	for _, kind := range models.InheritableKinds {
		parents, err := o.list(ctx, kind, ports.NewHostScope(templates...))
		if err != nil {
			return err
		}
		if err = o.propagate(ctx, kind, parents, links); err != nil {
			return errors.WithMessagef(err, "inherit %s", kind)
		}
	}
	return nil
}

// propagate copies parents onto every host linking the parent's host, then onward level by
// level down template chains until a level produces nothing. links, when set, restricts the
// first level to those host links.
func (o *operation) propagate(ctx context.Context, kind models.Kind, parents []models.Record, links map[hostLink]bool) error {
	level := parents
	for depth := 1; len(level) > 0; depth++ {
		if err := o.loadHosts(ctx); err != nil {
			return err
		}
		if depth > len(o.hosts) {
			return errors.Errorf("%s inheritance does not terminate after %d levels", kind, depth)
		}
		var targets []*inheritTarget
		for _, parent := range level {
			from, ok := o.hosts[parent.GetHostID()]
			if !ok {
				continue
			}
			for _, child := range o.dependents[from.ID] {
				if depth == 1 && links != nil && !links[hostLink{host: child.ID, template: from.ID}] {
					continue
				}
				targets = append(targets, &inheritTarget{parent: parent, from: from, to: child})
			}
		}
		if len(targets) == 0 {
			break
		}
		next, err := o.inheritLevel(ctx, kind, targets)
		if err != nil {
			return err
		}
		klog.V(2).Infof("[%s] %s inherited by %d record(s) at level %d", o.runID, kind, len(next), depth)
		level = next
	}
	return o.bindPendingDependencies(ctx, kind)
}

// inheritLevel creates or updates the inherited copies for one level of targets
func (o *operation) inheritLevel(ctx context.Context, kind models.Kind, targets []*inheritTarget) ([]models.Record, error) {
	if err := o.seedTargets(ctx, targets); err != nil {
		return nil, err
	}

	var childIDs []models.ID
	byKey := make(map[models.NaturalKey]*inheritTarget, len(targets))
	for _, t := range targets {
		if prev, dup := byKey[t.key]; dup && prev.parent.GetID() != t.parent.GetID() {
			return nil, &validation.LinkedToDifferentTemplateError{
				Host: t.to.Name, Entity: t.key, Template: t.from.Name, OtherTemplate: prev.from.Name,
			}
		}
		byKey[t.key] = t
		id, err := o.resolver.Resolve(t.key)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			childIDs = append(childIDs, id)
		}
	}
	existing, err := o.byIDs(ctx, kind, childIDs)
	if err != nil {
		return nil, err
	}

	var creates, updates []models.Record
	for _, t := range targets {
		id, _ := o.resolver.Resolve(t.key)
		ex, found := existing[id]
		if found && ex.GetTemplateID() != 0 && ex.GetTemplateID() != t.parent.GetID() {
			return nil, o.conflict(ctx, kind, t, ex)
		}
		c, err := o.clone(t)
		if err != nil {
			return nil, err
		}
		switch {
		case !found:
			t.created = true
			creates = append(creates, c)
			t.result = c
		case ex.GetTemplateID() == 0 && models.Equivalent(ex, c):
			ex.SetTemplateID(t.parent.GetID())
			t.adopted = true
			updates = append(updates, ex)
			t.result = ex
		default:
			c.SetID(id)
			updates = append(updates, c)
			t.result = c
		}
		klog.V(4).Infof("[%s] %s -> %s (created=%t adopted=%t)", o.runID, t.parent.Key(), t.key, t.created, t.adopted)
	}

	if err = o.insert(ctx, kind, creates); err != nil {
		return nil, err
	}
	fixups, err := o.inheritDependencies(kind, targets)
	if err != nil {
		return nil, err
	}
	if err = o.update(ctx, kind, updates, fixups); err != nil {
		return nil, err
	}

	next := make([]models.Record, 0, len(targets))
	for _, t := range targets {
		o.propagation.Add(t.parent.GetID(), t.result.GetID())
		next = append(next, t.result)
	}
	return next, nil
}

// seedTargets computes the keys of the copies and of everything they reference on the child
// hosts and resolves them with one query per kind
func (o *operation) seedTargets(ctx context.Context, targets []*inheritTarget) error {
	byKind := make(map[models.Kind][]models.ID)
	for _, t := range targets {
		for _, r := range refsOf(t.parent) {
			byKind[r.kind] = append(byKind[r.kind], r.id)
		}
	}
	kinds := make([]models.Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		if _, err := o.keysOf(ctx, k, byKind[k]); err != nil {
			return err
		}
	}
	for _, t := range targets {
		t.key = t.parent.Key().Rehost(t.from.Name, t.to.Name)
		o.resolver.Seed(t.key)
		for _, r := range refsOf(t.parent) {
			key, ok := o.keys[r.kind.Storage()][r.id]
			if !ok {
				continue
			}
			if childKey, same, ok := o.counterpart(t, key); ok && !same {
				o.resolver.Seed(childKey)
			}
		}
	}
	return o.resolver.ResolveBatch(ctx)
}

// counterpart returns the key of the record on the child host standing for a record the
// parent references. same means the reference is kept as it is: the record lives on a
// monitored host or on the child itself. ok is false for a trigger of a template the child
// does not inherit from.
func (o *operation) counterpart(t *inheritTarget, key models.NaturalKey) (childKey models.NaturalKey, same, ok bool) {
	childKey = key.Rehost(t.from.Name, t.to.Name)
	if childKey != key {
		return childKey, false, true
	}
	if key.Kind != models.KindTrigger && key.Kind != models.KindTriggerPrototype {
		return key, true, true
	}
	owner, found := o.hostByName[models.ExpressionOwner(key.Expression)]
	if !found || !owner.IsTemplate() || owner.ID == t.to.ID {
		return key, true, true
	}
	if !o.inherits(t.to, owner.ID) {
		return key, false, false
	}
	return key.Rehost(owner.Name, t.to.Name), false, true
}

// inherits reports whether host links template directly or through a chain of templates
func (o *operation) inherits(host *models.Host, template models.ID) bool {
	seen := map[models.ID]bool{host.ID: true}
	stack := append([]models.ID(nil), host.TemplateIDs...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == template {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if h, ok := o.hosts[id]; ok {
			stack = append(stack, h.TemplateIDs...)
		}
	}
	return false
}

// rebind maps a reference of the parent to the same entity on the child host. References to
// records on monitored hosts are kept.
func (o *operation) rebind(t *inheritTarget, r ref) (models.ID, error) {
	key, ok := o.keys[r.kind.Storage()][r.id]
	if !ok {
		return 0, errors.Errorf("%s #%d referenced by %s does not exist", r.kind, r.id, t.parent.Key())
	}
	childKey, same, ok := o.counterpart(t, key)
	if same {
		return r.id, nil
	}
	if !ok {
		return 0, validation.NewUnresolvedReferenceError(key, t.key)
	}
	id, err := o.resolver.Resolve(childKey)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, validation.NewUnresolvedReferenceError(childKey, t.key)
	}
	return id, nil
}

func (o *operation) rebindLink(t *inheritTarget, l models.ItemLink) (models.ItemLink, error) {
	if l.IsZero() {
		return l, nil
	}
	id, err := o.rebind(t, ref{l.Kind(), l.ID})
	l.ID = id
	return l, err
}

// clone builds the copy of the parent for the child host. Trigger dependencies are bound
// separately once every copy of the level has an id.
func (o *operation) clone(t *inheritTarget) (models.Record, error) {
	c := t.parent.DeepCopy()
	c.SetID(0)
	c.SetTemplateID(t.parent.GetID())
	var err error
	if ro, ok := t.parent.(models.RuleOwned); ok && ro.GetRuleID() != 0 {
		var ruleID models.ID
		if ruleID, err = o.rebind(t, ref{models.KindDiscoveryRule, ro.GetRuleID()}); err != nil {
			return nil, err
		}
		switch r := c.(type) {
		case *models.Item:
			r.RuleID = ruleID
		case *models.Trigger:
			r.RuleID = ruleID
		case *models.Graph:
			r.RuleID = ruleID
		}
	}
	switch r := c.(type) {
	case *models.Application:
		r.HostID, r.Host = t.to.ID, t.to.Name
	case *models.Item:
		r.HostID, r.Host = t.to.ID, t.to.Name
		for i, id := range r.ApplicationIDs {
			if r.ApplicationIDs[i], err = o.rebind(t, ref{models.KindApplication, id}); err != nil {
				return nil, err
			}
		}
	case *models.Trigger:
		r.HostID = t.to.ID
		r.Expression = models.RehostExpression(r.Expression, t.from.Name, t.to.Name)
		r.DependencyIDs = nil
	case *models.Graph:
		r.HostID, r.Host = t.to.ID, t.to.Name
		for i := range r.Items {
			if r.Items[i].Item, err = o.rebindLink(t, r.Items[i].Item); err != nil {
				return nil, err
			}
		}
		if r.YMinItem, err = o.rebindLink(t, r.YMinItem); err != nil {
			return nil, err
		}
		if r.YMaxItem, err = o.rebindLink(t, r.YMaxItem); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// inheritDependencies points the dependencies of inherited triggers at the copies of the
// parent's dependencies on the child host. Dependencies on triggers of templates the child
// does not inherit from are dropped. Copies created in this level are returned as fixups.
func (o *operation) inheritDependencies(kind models.Kind, targets []*inheritTarget) ([]models.Record, error) {
	if kind != models.KindTrigger && kind != models.KindTriggerPrototype {
		return nil, nil
	}
	var fixups []models.Record
	for _, t := range targets {
		if t.adopted {
			continue
		}
		parent := t.parent.(*models.Trigger)
		child := t.result.(*models.Trigger)
		for _, dep := range parent.DependencyIDs {
			key, ok := o.keys[kind.Storage()][dep]
			if !ok {
				return nil, errors.Errorf("%s #%d referenced by %s does not exist", kind, dep, t.parent.Key())
			}
			childKey, same, ok := o.counterpart(t, key)
			if !ok {
				klog.V(2).Infof("[%s] %s: %s does not inherit %s, dependency dropped", o.runID, t.key, t.to.Name, key)
				continue
			}
			id := dep
			if !same {
				var err error
				if id, err = o.resolver.Resolve(childKey); err != nil {
					return nil, err
				}
				if id == 0 {
					o.pendingDeps = append(o.pendingDeps, pendingDependency{trigger: child, key: childKey})
					continue
				}
			}
			if !models.ContainsID(child.DependencyIDs, id) {
				child.DependencyIDs = append(child.DependencyIDs, id)
			}
		}
		if t.created && len(child.DependencyIDs) > 0 {
			fixups = append(fixups, child)
		}
	}
	return fixups, nil
}

// bindPendingDependencies binds the dependencies whose counterparts appeared at deeper
// levels; those still missing are dropped
func (o *operation) bindPendingDependencies(ctx context.Context, kind models.Kind) error {
	pending := o.pendingDeps
	o.pendingDeps = nil
	if len(pending) == 0 {
		return nil
	}
	keys := make([]models.NaturalKey, 0, len(pending))
	for _, p := range pending {
		keys = append(keys, p.key)
	}
	if err := o.resolver.Ensure(ctx, keys...); err != nil {
		return err
	}
	var fixups []models.Record
	bound := make(map[*models.Trigger]bool)
	for _, p := range pending {
		id, err := o.resolver.Resolve(p.key)
		if err != nil {
			return err
		}
		if id == 0 {
			klog.V(2).Infof("[%s] %s: %s has no counterpart, dependency dropped", o.runID, p.trigger.Key(), p.key)
			continue
		}
		if !models.ContainsID(p.trigger.DependencyIDs, id) {
			p.trigger.DependencyIDs = append(p.trigger.DependencyIDs, id)
		}
		if !bound[p.trigger] {
			bound[p.trigger] = true
			fixups = append(fixups, p.trigger)
		}
	}
	return o.update(ctx, kind, nil, fixups)
}

// conflict builds the error for a host-level record already inherited from another template
func (o *operation) conflict(ctx context.Context, kind models.Kind, t *inheritTarget, existing models.Record) error {
	other := "unknown"
	parents, err := o.byIDs(ctx, kind, []models.ID{existing.GetTemplateID()})
	if err != nil {
		return err
	}
	if p, ok := parents[existing.GetTemplateID()]; ok {
		if h, ok := o.hosts[p.GetHostID()]; ok {
			other = h.Name
		}
	}
	return &validation.LinkedToDifferentTemplateError{
		Host:          t.to.Name,
		Entity:        t.key,
		Template:      t.from.Name,
		OtherTemplate: other,
	}
}
