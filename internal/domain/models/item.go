package models

// ItemFlags distinguishes plain items, discovery rules and item prototypes sharing one shape
type ItemFlags int

const (
	// ItemFlagPlain plain item
	ItemFlagPlain ItemFlags = 0

	// ItemFlagDiscoveryRule low level discovery rule
	ItemFlagDiscoveryRule ItemFlags = 1

	// ItemFlagPrototype item prototype
	ItemFlagPrototype ItemFlags = 2
)

// Item represents an item, a discovery rule or an item prototype.
// RuleID is set for prototypes only; Filter and Lifetime for discovery rules only.
type Item struct {
	ID             ID        `json:"-"`
	HostID         ID        `json:"hostId"`
	Host           string    `json:"host"`
	Flags          ItemFlags `json:"flags"`
	ItemKey        string    `json:"key"`
	Name           string    `json:"name"`
	Type           int       `json:"type"`
	ValueType      int       `json:"valueType"`
	Delay          string    `json:"delay,omitempty"`
	History        string    `json:"history,omitempty"`
	Trends         string    `json:"trends,omitempty"`
	Units          string    `json:"units,omitempty"`
	Description    string    `json:"description,omitempty"`
	Status         int       `json:"status"`
	ApplicationIDs []ID      `json:"applicationIds,omitempty"`
	RuleID         ID        `json:"ruleId,omitempty"`
	Filter         string    `json:"filter,omitempty"`
	Lifetime       string    `json:"lifetime,omitempty"`
	TemplateID     ID        `json:"templateId,omitempty"`
}

func (i *Item) GetID() ID { return i.ID }
func (i *Item) SetID(id ID) { i.ID = id }
func (i *Item) Key() NaturalKey { return KeyFor(i.Kind(), i.Host, i.ItemKey) }
func (i *Item) GetHostID() ID { return i.HostID }
func (i *Item) GetTemplateID() ID { return i.TemplateID }
func (i *Item) SetTemplateID(id ID) { i.TemplateID = id }
func (i *Item) GetRuleID() ID { return i.RuleID }

// Kind returns the storage kind selected by the item flags
func (i *Item) Kind() Kind {
	switch i.Flags {
	case ItemFlagDiscoveryRule:
		return KindDiscoveryRule
	case ItemFlagPrototype:
		return KindItemPrototype
	}
	return KindItem
}

// DeepCopy creates a deep copy of Item
func (i *Item) DeepCopy() Record {
	c := *i
	c.ApplicationIDs = copyIDs(i.ApplicationIDs)
	return &c
}
