package validation

import (
	"sort"

	"moncfg-backend/internal/domain/models"
)

// LinkGraph is a validated dependency graph: every node depends on the templates it links.
// It is acyclic and every template is reachable from any node through exactly one path.
type LinkGraph struct {
	deps       map[string][]string
	dependents map[string][]string
	nodes      []string
	order      []string
	depth      int
}

type edge struct {
	from, to string
}

type frame struct {
	node string
	next int
}

// BuildLinkGraph validates the edges and computes a processing order with templates before
// the nodes depending on them.
func BuildLinkGraph(edges []models.LinkEdge) (*LinkGraph, error) {
	return buildGraph(edges, true)
}

// BuildDependencyGraph is BuildLinkGraph for graphs where a node may be reached through
// several paths, such as trigger dependencies; only cycles are rejected.
func BuildDependencyGraph(edges []models.LinkEdge) (*LinkGraph, error) {
	return buildGraph(edges, false)
}

func buildGraph(edges []models.LinkEdge, strict bool) (*LinkGraph, error) {
	g := &LinkGraph{
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
	kinds := make(map[edge]models.LinkKind, len(edges))
	seen := make(map[string]struct{})
	addNode := func(n string) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			g.nodes = append(g.nodes, n)
		}
	}
	for _, e := range edges {
		if e.Host == e.Template {
			return nil, &CircularLinkageError{Kind: e.Kind, Path: []string{e.Host, e.Template}}
		}
		addNode(e.Host)
		addNode(e.Template)
		k := edge{e.Host, e.Template}
		if _, dup := kinds[k]; dup {
			continue
		}
		kinds[k] = e.Kind
		g.deps[e.Host] = append(g.deps[e.Host], e.Template)
		g.dependents[e.Template] = append(g.dependents[e.Template], e.Host)
	}
	sort.Strings(g.nodes)
	for _, adj := range []map[string][]string{g.deps, g.dependents} {
		for _, v := range adj {
			sort.Strings(v)
		}
	}

	// roots are nodes nothing depends on
	var roots []string
	for _, n := range g.nodes {
		if len(g.dependents[n]) == 0 {
			roots = append(roots, n)
		}
	}

	visited := make(map[string]struct{}, len(g.nodes))
	emitted := make(map[string]struct{}, len(g.nodes))
	for _, root := range roots {
		reached := map[string]struct{}{root: {}}
		onPath := map[string]struct{}{root: {}}
		stack := []frame{{node: root}}
		visited[root] = struct{}{}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if len(stack) > g.depth {
				g.depth = len(stack)
			}
			if top.next >= len(g.deps[top.node]) {
				if _, ok := emitted[top.node]; !ok {
					emitted[top.node] = struct{}{}
					g.order = append(g.order, top.node)
				}
				delete(onPath, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			next := g.deps[top.node][top.next]
			top.next++
			if _, ok := onPath[next]; ok {
				path := make([]string, 0, len(stack)+1)
				for _, f := range stack {
					path = append(path, f.node)
				}
				return nil, &CircularLinkageError{
					Kind: kinds[edge{top.node, next}],
					Path: append(cyclePath(path, next), next),
				}
			}
			if _, ok := reached[next]; ok {
				if strict {
					return nil, &DuplicateLinkageError{Host: root, Template: next}
				}
				continue
			}
			if _, ok := emitted[next]; ok && !strict {
				continue
			}
			reached[next] = struct{}{}
			onPath[next] = struct{}{}
			visited[next] = struct{}{}
			stack = append(stack, frame{node: next})
		}
	}

	if len(visited) < len(g.nodes) {
		// a cycle with no root leading into it
		var rest []string
		for _, n := range g.nodes {
			if _, ok := visited[n]; !ok {
				rest = append(rest, n)
			}
		}
		var kind models.LinkKind
		if len(edges) > 0 {
			kind = edges[0].Kind
		}
		return nil, &CircularLinkageError{Kind: kind, Path: rest}
	}
	return g, nil
}

func cyclePath(path []string, start string) []string {
	for i, n := range path {
		if n == start {
			return path[i:]
		}
	}
	return path
}

// Order returns nodes with templates before the nodes that link them
func (g *LinkGraph) Order() []string {
	return g.order
}

// Depth returns the longest traversal stack seen while validating
func (g *LinkGraph) Depth() int {
	return g.depth
}

// Templates returns the templates directly linked to node
func (g *LinkGraph) Templates(node string) []string {
	return g.deps[node]
}

// Dependents returns the nodes directly linking template
func (g *LinkGraph) Dependents(template string) []string {
	return g.dependents[template]
}

// AllDependents returns every node linking template directly or through other templates,
// nearest first
func (g *LinkGraph) AllDependents(template string) []string {
	var ret []string
	seen := map[string]struct{}{template: {}}
	queue := []string{template}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, d := range g.dependents[n] {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			ret = append(ret, d)
			queue = append(queue, d)
		}
	}
	return ret
}
