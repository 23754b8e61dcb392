package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncPolicy controls whether missing records of a kind are created and existing ones updated
type SyncPolicy struct {
	CreateMissing  bool `yaml:"create-missing" json:"createMissing"`
	UpdateExisting bool `yaml:"update-existing" json:"updateExisting"`
}

// Skipped reports whether the kind is excluded from processing entirely
func (p SyncPolicy) Skipped() bool {
	return !p.CreateMissing && !p.UpdateExisting
}

// Policies per-kind sync policies; a kind without an entry is skipped
type Policies map[Kind]SyncPolicy

// For returns the policy of a kind
func (p Policies) For(kind Kind) SyncPolicy {
	return p[kind]
}

// Skipped reports whether the kind is excluded from processing
func (p Policies) Skipped(kind Kind) bool {
	return p.For(kind).Skipped()
}

// CreateAndUpdateAll returns policies that create and update every importable kind
func CreateAndUpdateAll() Policies {
	ret := make(Policies, len(ProcessingOrder))
	for _, k := range ProcessingOrder {
		ret[k] = SyncPolicy{CreateMissing: true, UpdateExisting: true}
	}
	return ret
}

// LinkKind kind of a linkage edge
type LinkKind int

const (
	// LinkTemplateHost a template linked to a monitored host
	LinkTemplateHost LinkKind = iota

	// LinkTemplateTemplate a template linked to another template
	LinkTemplateTemplate

	// LinkTriggerDependency a trigger depending on another trigger
	LinkTriggerDependency
)

// String stringer interface impl
func (k LinkKind) String() string {
	switch k {
	case LinkTemplateHost:
		return "template-host"
	case LinkTemplateTemplate:
		return "template-template"
	case LinkTriggerDependency:
		return "trigger-dependency"
	}
	return "unknown"
}

// LinkEdge directed edge: Host depends on (inherits from) Template.
// Nodes are natural-key strings so that topology can be checked before new records get ids.
type LinkEdge struct {
	Host     string
	Template string
	Kind     LinkKind
}

// PropagationRecord maps a template-level record id to the ids of its inherited copies
type PropagationRecord map[ID][]ID

// Add records that child was inherited from parent
func (p PropagationRecord) Add(parent, child ID) {
	if !ContainsID(p[parent], child) {
		p[parent] = append(p[parent], child)
	}
}

// Children returns the inherited copies of parent
func (p PropagationRecord) Children(parent ID) []ID {
	return p[parent]
}

// Counters per-kind counters
type Counters map[Kind]int

// Add increments the counter of kind
func (c Counters) Add(kind Kind, n int) {
	if n != 0 {
		c[kind] += n
	}
}

// Result outcome of one import, link or unlink operation
type Result struct {
	RunID     uuid.UUID     `yaml:"runId" json:"runId"`
	Success   bool          `yaml:"success" json:"success"`
	Created   Counters      `yaml:"created" json:"created"`
	Updated   Counters      `yaml:"updated" json:"updated"`
	Deleted   Counters      `yaml:"deleted" json:"deleted"`
	StartedAt time.Time     `yaml:"startedAt" json:"startedAt"`
	Duration  time.Duration `yaml:"duration" json:"duration"`
}

// NewResult creates an empty Result with a fresh run id
func NewResult() *Result {
	return &Result{
		RunID:     uuid.New(),
		Created:   make(Counters),
		Updated:   make(Counters),
		Deleted:   make(Counters),
		StartedAt: time.Now(),
	}
}

// CommitEvent is announced to registry observers after a successful commit
type CommitEvent struct {
	Kinds     []Kind
	UpdatedAt time.Time
}
