package models

import (
	"regexp"
	"strings"
)

// ItemRef references an item (or item prototype) by host and key
type ItemRef struct {
	Host string `yaml:"host" json:"host"`
	Key  string `yaml:"key" json:"key"`
}

// functionRe matches {host:key.func(params)} tokens of a trigger expression.
// The key is matched lazily so that dotted keys end at the last ".func(".
var functionRe = regexp.MustCompile(`\{([^:{}]+):(.+?)\.([a-zA-Z]+)\(([^)]*)\)\}`)

// ExpressionRefs returns the items referenced by a trigger expression in order of appearance,
// without duplicates
func ExpressionRefs(expression string) []ItemRef {
	matches := functionRe.FindAllStringSubmatch(expression, -1)
	seen := make(map[ItemRef]struct{}, len(matches))
	refs := make([]ItemRef, 0, len(matches))
	for _, m := range matches {
		ref := ItemRef{Host: m[1], Key: m[2]}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// ExpressionHosts returns the distinct hosts referenced by a trigger expression
func ExpressionHosts(expression string) []string {
	var hosts []string
	seen := make(map[string]struct{})
	for _, ref := range ExpressionRefs(expression) {
		if _, ok := seen[ref.Host]; ok {
			continue
		}
		seen[ref.Host] = struct{}{}
		hosts = append(hosts, ref.Host)
	}
	return hosts
}

// ExpressionOwner returns the first host referenced by a trigger expression
func ExpressionOwner(expression string) string {
	if refs := ExpressionRefs(expression); len(refs) > 0 {
		return refs[0].Host
	}
	return ""
}

// RehostExpression rewrites every function of host from to reference host to
func RehostExpression(expression, from, to string) string {
	if from == to || from == "" {
		return expression
	}
	return strings.ReplaceAll(expression, "{"+from+":", "{"+to+":")
}
