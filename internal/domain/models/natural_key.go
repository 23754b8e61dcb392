package models

import (
	"fmt"
	"strings"
)

// ID surrogate record id assigned by the store; zero means absent
type ID uint64

// NaturalKey identifies an entity by its business attributes rather than its surrogate id.
// Host is set for host-owned kinds, Expression only for triggers and trigger prototypes.
type NaturalKey struct {
	Kind       Kind
	Host       string
	Name       string
	Expression string
}

// String returns a string representation of NaturalKey
func (k NaturalKey) String() string {
	var b strings.Builder
	b.WriteString(k.Kind.String())
	b.WriteByte('(')
	if k.Host != "" {
		b.WriteString(k.Host)
		b.WriteByte(':')
	}
	b.WriteString(k.Name)
	if k.Expression != "" {
		b.WriteString(", ")
		b.WriteString(k.Expression)
	}
	b.WriteByte(')')
	return b.String()
}

// Storage returns the key as it is indexed in the store; template keys map to host keys
func (k NaturalKey) Storage() NaturalKey {
	k.Kind = k.Kind.Storage()
	return k
}

// Rehost returns the key of the same entity as it appears on another host.
// Keys that are not host-owned are returned unchanged.
func (k NaturalKey) Rehost(from, to string) NaturalKey {
	switch k.Kind {
	case KindTrigger, KindTriggerPrototype:
		k.Expression = RehostExpression(k.Expression, from, to)
	default:
		if k.Kind.HostOwned() && k.Host == from {
			k.Host = to
		}
	}
	return k
}

// Less orders keys deterministically
func (k NaturalKey) Less(o NaturalKey) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	if k.Host != o.Host {
		return k.Host < o.Host
	}
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	return k.Expression < o.Expression
}

// GroupKey key of a host group
func GroupKey(name string) NaturalKey {
	return NaturalKey{Kind: KindGroup, Name: name}
}

// HostKey key of a host or template; both share one namespace
func HostKey(name string) NaturalKey {
	return NaturalKey{Kind: KindHost, Name: name}
}

// ProxyKey key of a proxy
func ProxyKey(name string) NaturalKey {
	return NaturalKey{Kind: KindProxy, Name: name}
}

// MacroKey key of a user macro on a host
func MacroKey(host, macro string) NaturalKey {
	return NaturalKey{Kind: KindMacro, Host: host, Name: macro}
}

// ApplicationKey key of an application on a host
func ApplicationKey(host, name string) NaturalKey {
	return NaturalKey{Kind: KindApplication, Host: host, Name: name}
}

// ItemKey key of an item on a host
func ItemKey(host, key string) NaturalKey {
	return NaturalKey{Kind: KindItem, Host: host, Name: key}
}

// DiscoveryRuleKey key of a discovery rule on a host
func DiscoveryRuleKey(host, key string) NaturalKey {
	return NaturalKey{Kind: KindDiscoveryRule, Host: host, Name: key}
}

// ItemPrototypeKey key of an item prototype on a host
func ItemPrototypeKey(host, key string) NaturalKey {
	return NaturalKey{Kind: KindItemPrototype, Host: host, Name: key}
}

// TriggerKey key of a trigger
func TriggerKey(description, expression string) NaturalKey {
	return NaturalKey{Kind: KindTrigger, Name: description, Expression: expression}
}

// TriggerPrototypeKey key of a trigger prototype
func TriggerPrototypeKey(description, expression string) NaturalKey {
	return NaturalKey{Kind: KindTriggerPrototype, Name: description, Expression: expression}
}

// GraphKey key of a graph on a host
func GraphKey(host, name string) NaturalKey {
	return NaturalKey{Kind: KindGraph, Host: host, Name: name}
}

// GraphPrototypeKey key of a graph prototype on a host
func GraphPrototypeKey(host, name string) NaturalKey {
	return NaturalKey{Kind: KindGraphPrototype, Host: host, Name: name}
}

// ImageKey key of an image
func ImageKey(name string) NaturalKey {
	return NaturalKey{Kind: KindImage, Name: name}
}

// MapKey key of a map
func MapKey(name string) NaturalKey {
	return NaturalKey{Kind: KindMap, Name: name}
}

// ScreenKey key of a screen
func ScreenKey(name string) NaturalKey {
	return NaturalKey{Kind: KindScreen, Name: name}
}

// KeyFor builds a host-owned key of the given kind
func KeyFor(kind Kind, host, name string) NaturalKey {
	return NaturalKey{Kind: kind, Host: host, Name: name}
}

// EntityRef pairs a natural key with its resolved surrogate id
type EntityRef struct {
	Key NaturalKey
	ID  ID
}

// Resolved reports whether the reference has a surrogate id
func (r EntityRef) Resolved() bool {
	return r.ID != 0
}

// String returns a string representation of EntityRef
func (r EntityRef) String() string {
	return fmt.Sprintf("%s#%d", r.Key, r.ID)
}
