package ports

import (
	"fmt"
	"strings"

	"moncfg-backend/internal/domain/models"
)

// EmptyScope represents an empty scope
type EmptyScope struct{}

// IsEmpty returns true for EmptyScope
func (EmptyScope) IsEmpty() bool {
	return true
}

// String returns a string representation of EmptyScope
func (EmptyScope) String() string {
	return "empty"
}

// IDScope selects records by surrogate id
type IDScope struct {
	IDs []models.ID
}

// NewIDScope creates a new IDScope
func NewIDScope(ids ...models.ID) IDScope {
	return IDScope{IDs: ids}
}

// IsEmpty returns true if IDScope is empty
func (s IDScope) IsEmpty() bool {
	return len(s.IDs) == 0
}

// String returns a string representation of IDScope
func (s IDScope) String() string {
	return fmt.Sprintf("ids(%s)", joinIDs(s.IDs))
}

// HostScope selects host-owned records by owner id
type HostScope struct {
	HostIDs []models.ID
}

// NewHostScope creates a new HostScope
func NewHostScope(hostIDs ...models.ID) HostScope {
	return HostScope{HostIDs: hostIDs}
}

// IsEmpty returns true if HostScope is empty
func (s HostScope) IsEmpty() bool {
	return len(s.HostIDs) == 0
}

// String returns a string representation of HostScope
func (s HostScope) String() string {
	return fmt.Sprintf("hosts(%s)", joinIDs(s.HostIDs))
}

// TemplateScope selects inherited records by the id of the record they were inherited from
type TemplateScope struct {
	TemplateIDs []models.ID
}

// NewTemplateScope creates a new TemplateScope
func NewTemplateScope(templateIDs ...models.ID) TemplateScope {
	return TemplateScope{TemplateIDs: templateIDs}
}

// IsEmpty returns true if TemplateScope is empty
func (s TemplateScope) IsEmpty() bool {
	return len(s.TemplateIDs) == 0
}

// String returns a string representation of TemplateScope
func (s TemplateScope) String() string {
	return fmt.Sprintf("templates(%s)", joinIDs(s.TemplateIDs))
}

// RuleScope selects prototypes by owning discovery rule id
type RuleScope struct {
	RuleIDs []models.ID
}

// NewRuleScope creates a new RuleScope
func NewRuleScope(ruleIDs ...models.ID) RuleScope {
	return RuleScope{RuleIDs: ruleIDs}
}

// IsEmpty returns true if RuleScope is empty
func (s RuleScope) IsEmpty() bool {
	return len(s.RuleIDs) == 0
}

// String returns a string representation of RuleScope
func (s RuleScope) String() string {
	return fmt.Sprintf("rules(%s)", joinIDs(s.RuleIDs))
}

// DependencyScope selects triggers depending on any of the given triggers
type DependencyScope struct {
	TriggerIDs []models.ID
}

// NewDependencyScope creates a new DependencyScope
func NewDependencyScope(triggerIDs ...models.ID) DependencyScope {
	return DependencyScope{TriggerIDs: triggerIDs}
}

// IsEmpty returns true if DependencyScope is empty
func (s DependencyScope) IsEmpty() bool {
	return len(s.TriggerIDs) == 0
}

// String returns a string representation of DependencyScope
func (s DependencyScope) String() string {
	return fmt.Sprintf("depends-on(%s)", joinIDs(s.TriggerIDs))
}

// Match reports whether a record falls into scope; an empty scope matches everything
func Match(scope Scope, rec models.Record) bool {
	if scope == nil || scope.IsEmpty() {
		return true
	}
	switch s := scope.(type) {
	case IDScope:
		return models.ContainsID(s.IDs, rec.GetID())
	case HostScope:
		return models.ContainsID(s.HostIDs, rec.GetHostID())
	case TemplateScope:
		return models.ContainsID(s.TemplateIDs, rec.GetTemplateID())
	case RuleScope:
		if ro, ok := rec.(models.RuleOwned); ok {
			return models.ContainsID(s.RuleIDs, ro.GetRuleID())
		}
		return false
	case DependencyScope:
		if t, ok := rec.(*models.Trigger); ok {
			for _, id := range t.DependencyIDs {
				if models.ContainsID(s.TriggerIDs, id) {
					return true
				}
			}
		}
		return false
	}
	return true
}

func joinIDs(ids []models.ID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ",")
}
