package models

// Record defines the interface that all stored entities implement
type Record interface {
	// GetID returns the surrogate id, zero until the record is inserted
	GetID() ID

	// SetID assigns the surrogate id
	SetID(id ID)

	// Key returns the natural key of the record
	Key() NaturalKey

	// Kind returns the storage kind of the record
	Kind() Kind

	// GetHostID returns the owning host or template id, zero for global kinds
	GetHostID() ID

	// GetTemplateID returns the id of the template-level record this one is inherited from
	GetTemplateID() ID

	// SetTemplateID sets the inheritance back-reference
	SetTemplateID(id ID)

	// DeepCopy creates a deep copy of the record
	DeepCopy() Record
}

// RuleOwned is implemented by prototypes owned by a discovery rule
type RuleOwned interface {
	GetRuleID() ID
}

// NewRecord returns an empty record of the given storage kind
func NewRecord(kind Kind) Record {
	switch kind {
	case KindGroup:
		return &Group{}
	case KindHost, KindTemplate:
		return &Host{}
	case KindProxy:
		return &Proxy{}
	case KindMacro:
		return &Macro{}
	case KindApplication:
		return &Application{}
	case KindItem:
		return &Item{Flags: ItemFlagPlain}
	case KindDiscoveryRule:
		return &Item{Flags: ItemFlagDiscoveryRule}
	case KindItemPrototype:
		return &Item{Flags: ItemFlagPrototype}
	case KindTrigger:
		return &Trigger{Flags: TriggerFlagPlain}
	case KindTriggerPrototype:
		return &Trigger{Flags: TriggerFlagPrototype}
	case KindGraph:
		return &Graph{Flags: GraphFlagPlain}
	case KindGraphPrototype:
		return &Graph{Flags: GraphFlagPrototype}
	case KindImage:
		return &Image{}
	case KindMap:
		return &Map{}
	case KindScreen:
		return &Screen{}
	}
	return nil
}

// IDs extracts surrogate ids of records
func IDs[R Record](records []R) []ID {
	ret := make([]ID, 0, len(records))
	for _, r := range records {
		ret = append(ret, r.GetID())
	}
	return ret
}

// Equivalent reports whether two records of the same kind carry the same comparable
// property values, ignoring ids, ownership and references
func Equivalent(a, b Record) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Application:
		y := b.(*Application)
		return x.Name == y.Name
	case *Item:
		y := b.(*Item)
		return x.ItemKey == y.ItemKey && x.Name == y.Name && x.Type == y.Type &&
			x.ValueType == y.ValueType && x.Delay == y.Delay && x.Units == y.Units &&
			x.Filter == y.Filter && x.Lifetime == y.Lifetime
	case *Trigger:
		y := b.(*Trigger)
		return x.Description == y.Description && x.Priority == y.Priority &&
			x.Comments == y.Comments && x.URL == y.URL
	case *Graph:
		y := b.(*Graph)
		return x.Name == y.Name && x.Width == y.Width && x.Height == y.Height &&
			x.GraphType == y.GraphType && len(x.Items) == len(y.Items)
	}
	return false
}

func copyIDs(ids []ID) []ID {
	if ids == nil {
		return nil
	}
	ret := make([]ID, len(ids))
	copy(ret, ids)
	return ret
}

// ContainsID reports whether ids holds id
func ContainsID(ids []ID, id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
