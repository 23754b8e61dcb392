package services

import (
	"sort"

	"moncfg-backend/internal/domain/models"
)

// ReferenceSets holds every natural key an import touches, deduplicated per storage kind
type ReferenceSets struct {
	sets map[models.Kind]map[models.NaturalKey]struct{}
}

// NewReferenceSets creates empty ReferenceSets
func NewReferenceSets() *ReferenceSets {
	return &ReferenceSets{sets: make(map[models.Kind]map[models.NaturalKey]struct{})}
}

// Add adds keys; template keys are folded into host keys
func (r *ReferenceSets) Add(keys ...models.NaturalKey) {
	for _, k := range keys {
		k = k.Storage()
		set, ok := r.sets[k.Kind]
		if !ok {
			set = make(map[models.NaturalKey]struct{})
			r.sets[k.Kind] = set
		}
		set[k] = struct{}{}
	}
}

// Has reports whether key was collected
func (r *ReferenceSets) Has(key models.NaturalKey) bool {
	key = key.Storage()
	_, ok := r.sets[key.Kind][key]
	return ok
}

// Kinds returns the kinds that have keys, in kind order
func (r *ReferenceSets) Kinds() []models.Kind {
	ret := make([]models.Kind, 0, len(r.sets))
	for k, set := range r.sets {
		if len(set) > 0 {
			ret = append(ret, k)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Keys returns the keys of a kind in a stable order
func (r *ReferenceSets) Keys(kind models.Kind) []models.NaturalKey {
	set := r.sets[kind.Storage()]
	ret := make([]models.NaturalKey, 0, len(set))
	for k := range set {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret
}

// Len returns the number of collected keys
func (r *ReferenceSets) Len() int {
	n := 0
	for _, set := range r.sets {
		n += len(set)
	}
	return n
}

// Collect walks the import tree once and gathers the keys of every object that will be
// synchronized and of everything those objects reference. Objects of skipped kinds are not
// collected, but references to skipped kinds are, since they must already exist.
func Collect(tree *models.ImportTree, policies models.Policies) *ReferenceSets {
	c := collector{refs: NewReferenceSets(), policies: policies}
	c.collect(tree)
	return c.refs
}

type collector struct {
	refs     *ReferenceSets
	policies models.Policies
}

func (c *collector) active(kind models.Kind) bool {
	return !c.policies.Skipped(kind)
}

func (c *collector) collect(tree *models.ImportTree) {
	if c.active(models.KindGroup) {
		for _, g := range tree.Groups {
			c.refs.Add(g.Key())
		}
	}
	for _, h := range tree.Templates {
		c.collectHost(models.KindTemplate, h)
	}
	for _, h := range tree.Hosts {
		c.collectHost(models.KindHost, h)
	}
	if c.active(models.KindTrigger) {
		for _, t := range tree.Triggers {
			c.collectTrigger(models.KindTrigger, t)
		}
	}
	if c.active(models.KindGraph) {
		for _, g := range tree.Graphs {
			c.collectGraph(models.KindGraph, g)
		}
	}
	if c.active(models.KindImage) {
		for _, img := range tree.Images {
			c.refs.Add(models.ImageKey(img.Name))
		}
	}
	if c.active(models.KindMap) {
		for _, m := range tree.Maps {
			c.collectMap(m)
		}
	}
	if c.active(models.KindScreen) {
		for _, s := range tree.Screens {
			c.collectScreen(s)
		}
	}
}

func (c *collector) collectHost(kind models.Kind, h models.ImportedHost) {
	if c.active(kind) {
		c.refs.Add(h.Key())
		for _, g := range h.Groups {
			c.refs.Add(models.GroupKey(g.Name))
		}
		for _, t := range h.Templates {
			c.refs.Add(models.HostKey(t.Name))
		}
		if h.Proxy != nil && h.Proxy.Name != "" {
			c.refs.Add(models.ProxyKey(h.Proxy.Name))
		}
	}
	if c.active(models.KindMacro) {
		for _, m := range h.Macros {
			c.refs.Add(models.MacroKey(h.Host, m.Macro))
		}
	}
	if c.active(models.KindApplication) {
		for _, a := range h.Applications {
			c.refs.Add(models.ApplicationKey(h.Host, a.Name))
		}
	}
	if c.active(models.KindItem) {
		for _, it := range h.Items {
			c.collectItem(models.KindItem, h.Host, it)
		}
	}
	for _, r := range h.DiscoveryRules {
		if c.active(models.KindDiscoveryRule) {
			c.refs.Add(models.DiscoveryRuleKey(h.Host, r.Key))
		}
		c.collectPrototypes(h.Host, r)
	}
}

// collectPrototypes walks prototypes nested below a discovery rule; the rule itself must be
// known for any of them to be processed
func (c *collector) collectPrototypes(host string, r models.ImportedDiscoveryRule) {
	if len(r.ItemPrototypes)+len(r.TriggerPrototypes)+len(r.GraphPrototypes) > 0 {
		c.refs.Add(models.DiscoveryRuleKey(host, r.Key))
	}
	if c.active(models.KindItemPrototype) {
		for _, it := range r.ItemPrototypes {
			c.collectItem(models.KindItemPrototype, host, it)
		}
	}
	if c.active(models.KindTriggerPrototype) {
		for _, t := range r.TriggerPrototypes {
			c.collectTrigger(models.KindTriggerPrototype, t)
		}
	}
	if c.active(models.KindGraphPrototype) {
		for _, g := range r.GraphPrototypes {
			c.collectGraph(models.KindGraphPrototype, g)
		}
	}
}

func (c *collector) collectItem(kind models.Kind, host string, it models.ImportedItem) {
	c.refs.Add(models.KeyFor(kind, host, it.Key))
	for _, a := range it.Applications {
		c.refs.Add(models.ApplicationKey(host, a.Name))
	}
}

// itemRefKeys returns the keys an item reference may resolve to; prototypes may reference
// item prototypes as well as plain items
func itemRefKeys(prototype bool, ref models.ItemRef) []models.NaturalKey {
	if prototype {
		return []models.NaturalKey{models.ItemPrototypeKey(ref.Host, ref.Key), models.ItemKey(ref.Host, ref.Key)}
	}
	return []models.NaturalKey{models.ItemKey(ref.Host, ref.Key)}
}

func (c *collector) collectTrigger(kind models.Kind, t models.ImportedTrigger) {
	prototype := kind == models.KindTriggerPrototype
	if prototype {
		c.refs.Add(models.TriggerPrototypeKey(t.Name, t.Expression))
	} else {
		c.refs.Add(models.TriggerKey(t.Name, t.Expression))
	}
	for _, ref := range models.ExpressionRefs(t.Expression) {
		c.refs.Add(models.HostKey(ref.Host))
		c.refs.Add(itemRefKeys(prototype, ref)...)
	}
	for _, d := range t.Dependencies {
		if prototype {
			c.refs.Add(models.TriggerPrototypeKey(d.Name, d.Expression))
		} else {
			c.refs.Add(models.TriggerKey(d.Name, d.Expression))
		}
	}
}

func (c *collector) collectGraph(kind models.Kind, g models.ImportedGraph) {
	c.refs.Add(models.KeyFor(kind, g.Owner(), g.Name))
	for _, ref := range g.ItemRefs() {
		c.refs.Add(models.HostKey(ref.Host))
		c.refs.Add(itemRefKeys(kind == models.KindGraphPrototype, ref)...)
	}
}

func (c *collector) collectMap(m models.ImportedMap) {
	c.refs.Add(models.MapKey(m.Name))
	for _, el := range m.Elements {
		if key, ok := el.Element.Key(el.ElementType); ok && key.Name != "" {
			c.refs.Add(key)
		}
		if el.IconOff != nil && el.IconOff.Name != "" {
			c.refs.Add(models.ImageKey(el.IconOff.Name))
		}
	}
}

func (c *collector) collectScreen(s models.ImportedScreen) {
	c.refs.Add(models.ScreenKey(s.Name))
	for _, si := range s.Items {
		if key, ok := si.Resource.Key(si.ResourceType); ok {
			c.refs.Add(key)
		}
	}
}
