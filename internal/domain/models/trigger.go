package models

// TriggerFlags distinguishes triggers from trigger prototypes
type TriggerFlags int

const (
	// TriggerFlagPlain plain trigger
	TriggerFlagPlain TriggerFlags = 0

	// TriggerFlagPrototype trigger prototype
	TriggerFlagPrototype TriggerFlags = 2
)

// Trigger represents a trigger or trigger prototype.
// HostID is the first host referenced by Expression.
type Trigger struct {
	ID            ID           `json:"-"`
	Flags         TriggerFlags `json:"flags"`
	HostID        ID           `json:"hostId"`
	Description   string       `json:"description"`
	Expression    string       `json:"expression"`
	Priority      int          `json:"priority"`
	Comments      string       `json:"comments,omitempty"`
	URL           string       `json:"url,omitempty"`
	Status        int          `json:"status"`
	DependencyIDs []ID         `json:"dependencyIds,omitempty"`
	RuleID        ID           `json:"ruleId,omitempty"`
	TemplateID    ID           `json:"templateId,omitempty"`
}

func (t *Trigger) GetID() ID { return t.ID }
func (t *Trigger) SetID(id ID) { t.ID = id }
func (t *Trigger) GetHostID() ID { return t.HostID }
func (t *Trigger) GetTemplateID() ID { return t.TemplateID }
func (t *Trigger) SetTemplateID(id ID) { t.TemplateID = id }
func (t *Trigger) GetRuleID() ID { return t.RuleID }

// Kind returns the storage kind selected by the trigger flags
func (t *Trigger) Kind() Kind {
	if t.Flags == TriggerFlagPrototype {
		return KindTriggerPrototype
	}
	return KindTrigger
}

// Key returns the natural key of the trigger
func (t *Trigger) Key() NaturalKey {
	return NaturalKey{Kind: t.Kind(), Name: t.Description, Expression: t.Expression}
}

// DeepCopy creates a deep copy of Trigger
func (t *Trigger) DeepCopy() Record {
	c := *t
	c.DependencyIDs = copyIDs(t.DependencyIDs)
	return &c
}
