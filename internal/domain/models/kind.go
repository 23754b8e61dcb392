package models

import "fmt"

// Kind identifies an entity kind handled by the configuration engine
type Kind int

const (
	// KindGroup host groups
	KindGroup Kind = iota

	// KindTemplate templates; stored as host records with template status
	KindTemplate

	// KindHost hosts
	KindHost

	// KindProxy proxies; reference-only
	KindProxy

	// KindMacro host and template user macros
	KindMacro

	// KindApplication applications
	KindApplication

	// KindItem plain items
	KindItem

	// KindDiscoveryRule low level discovery rules
	KindDiscoveryRule

	// KindItemPrototype item prototypes owned by a discovery rule
	KindItemPrototype

	// KindTrigger plain triggers
	KindTrigger

	// KindTriggerPrototype trigger prototypes owned by a discovery rule
	KindTriggerPrototype

	// KindGraph plain graphs
	KindGraph

	// KindGraphPrototype graph prototypes owned by a discovery rule
	KindGraphPrototype

	// KindImage images
	KindImage

	// KindMap network maps
	KindMap

	// KindScreen screens
	KindScreen
)

// ProcessingOrder is the fixed order in which entity kinds are synchronized
var ProcessingOrder = []Kind{
	KindGroup,
	KindTemplate,
	KindHost,
	KindMacro,
	KindApplication,
	KindItem,
	KindDiscoveryRule,
	KindItemPrototype,
	KindTrigger,
	KindTriggerPrototype,
	KindGraph,
	KindGraphPrototype,
	KindImage,
	KindMap,
	KindScreen,
}

// InheritableKinds lists kinds that are cloned from templates onto linked hosts, in order
var InheritableKinds = []Kind{
	KindApplication,
	KindItem,
	KindDiscoveryRule,
	KindItemPrototype,
	KindTrigger,
	KindTriggerPrototype,
	KindGraph,
	KindGraphPrototype,
}

// StorageKinds lists kinds that own a table in the store
var StorageKinds = []Kind{
	KindGroup,
	KindHost,
	KindProxy,
	KindMacro,
	KindApplication,
	KindItem,
	KindDiscoveryRule,
	KindItemPrototype,
	KindTrigger,
	KindTriggerPrototype,
	KindGraph,
	KindGraphPrototype,
	KindImage,
	KindMap,
	KindScreen,
}

var kind2string = map[Kind]string{
	KindGroup:            "group",
	KindTemplate:         "template",
	KindHost:             "host",
	KindProxy:            "proxy",
	KindMacro:            "macro",
	KindApplication:      "application",
	KindItem:             "item",
	KindDiscoveryRule:    "discovery-rule",
	KindItemPrototype:    "item-prototype",
	KindTrigger:          "trigger",
	KindTriggerPrototype: "trigger-prototype",
	KindGraph:            "graph",
	KindGraphPrototype:   "graph-prototype",
	KindImage:            "image",
	KindMap:              "map",
	KindScreen:           "screen",
}

// String stringer interface impl
func (k Kind) String() string {
	if s, ok := kind2string[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind returns the kind with the given name
func ParseKind(s string) (Kind, bool) {
	for k, name := range kind2string {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Storage returns the kind whose table holds records of this kind
func (k Kind) Storage() Kind {
	if k == KindTemplate {
		return KindHost
	}
	return k
}

// Inheritable reports whether records of this kind are propagated through template links
func (k Kind) Inheritable() bool {
	for _, ik := range InheritableKinds {
		if ik == k {
			return true
		}
	}
	return false
}

// HostOwned reports whether records of this kind belong to a single host or template
func (k Kind) HostOwned() bool {
	switch k {
	case KindMacro, KindApplication, KindItem, KindDiscoveryRule, KindItemPrototype,
		KindTrigger, KindTriggerPrototype, KindGraph, KindGraphPrototype:
		return true
	}
	return false
}

// Prototype reports whether records of this kind are owned by a discovery rule
func (k Kind) Prototype() bool {
	return k == KindItemPrototype || k == KindTriggerPrototype || k == KindGraphPrototype
}

// MarshalText encoding.TextMarshaler impl
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText encoding.TextUnmarshaler impl
func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown kind '%s'", text)
	}
	*k = v
	return nil
}
