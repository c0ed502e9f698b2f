package engine

import (
	"fmt"
	"iter"
	"sort"
	"strings"
)

// DependencyGraph is a directed graph over resource types.
// Edges point from a parent type to the types that need its instances as input.
// Only ParentDependency declarations contribute edges.
type DependencyGraph struct {
	// nodes is the set of known types
	nodes map[ResourceType]struct{}

	// children maps a type to its dependents, sorted
	children map[ResourceType][]ResourceType

	// parents maps a type to its declared parent, if the edge was added
	parents map[ResourceType]ResourceType

	// kinds records the dependency kind of each node for rendering
	kinds map[ResourceType]DependencyKind

	// mappings records the edge mapping for rendering
	mappings map[ResourceType][]PropertyMapping
}

// BuildGraph builds the dependency graph for universe using the declared dependencies.
// A ParentDependency whose parent is not part of the universe adds no edge.
func BuildGraph(universe []ResourceType, deps map[ResourceType]Dependency) *DependencyGraph {
	g := &DependencyGraph{
		nodes:    make(map[ResourceType]struct{}, len(universe)),
		children: make(map[ResourceType][]ResourceType),
		parents:  make(map[ResourceType]ResourceType),
		kinds:    make(map[ResourceType]DependencyKind, len(universe)),
		mappings: make(map[ResourceType][]PropertyMapping),
	}

	// First pass: index all types
	for _, t := range universe {
		g.nodes[t] = struct{}{}
		g.kinds[t] = DependencyNone
	}

	// Second pass: add parent edges where both ends exist
	for t := range g.nodes {
		dep, ok := deps[t]
		if !ok || dep == nil {
			continue
		}
		g.kinds[t] = dep.Kind()

		parent, ok := dep.(ParentDependency)
		if !ok {
			continue
		}
		if _, exists := g.nodes[parent.Parent]; !exists {
			continue
		}
		g.children[parent.Parent] = append(g.children[parent.Parent], t)
		g.parents[t] = parent.Parent
		g.mappings[t] = parent.Mapping
	}

	for parent := range g.children {
		SortTypes(g.children[parent])
	}

	return g
}

// Len returns the number of nodes.
func (g *DependencyGraph) Len() int {
	return len(g.nodes)
}

// Has reports whether t is a node of the graph.
func (g *DependencyGraph) Has(t ResourceType) bool {
	_, ok := g.nodes[t]
	return ok
}

// Nodes returns all nodes, sorted.
func (g *DependencyGraph) Nodes() []ResourceType {
	out := make([]ResourceType, 0, len(g.nodes))
	for t := range g.nodes {
		out = append(out, t)
	}
	return SortTypes(out)
}

// Roots returns every node without an incoming edge.
// The result is sorted, but callers should only rely on every root being present.
func (g *DependencyGraph) Roots() []ResourceType {
	roots := make([]ResourceType, 0)
	for t := range g.nodes {
		if _, hasParent := g.parents[t]; !hasParent {
			roots = append(roots, t)
		}
	}
	return SortTypes(roots)
}

// Children returns the direct dependents of t.
func (g *DependencyGraph) Children(t ResourceType) []ResourceType {
	return append([]ResourceType(nil), g.children[t]...)
}

// Parent returns the parent of t when t has an incoming edge.
func (g *DependencyGraph) Parent(t ResourceType) (ResourceType, bool) {
	p, ok := g.parents[t]
	return p, ok
}

// HasDependencies reports whether t has an incoming edge.
func (g *DependencyGraph) HasDependencies(t ResourceType) bool {
	_, ok := g.parents[t]
	return ok
}

// HasDependents reports whether t has outgoing edges.
func (g *DependencyGraph) HasDependents(t ResourceType) bool {
	return len(g.children[t]) > 0
}

// Walk yields from and then every descendant in depth-first pre-order.
//
// The walk uses an explicit stack. An edge into a node that is still open on the
// current path is not followed, so the sequence is finite even when the
// configuration declares a cycle (for example a type naming itself as parent).
func (g *DependencyGraph) Walk(from ResourceType) iter.Seq[ResourceType] {
	return func(yield func(ResourceType) bool) {
		if !g.Has(from) {
			return
		}

		type frame struct {
			node ResourceType
			next int
		}

		stack := []frame{{node: from}}
		open := map[ResourceType]bool{from: true}
		if !yield(from) {
			return
		}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.children[top.node]
			if top.next >= len(children) {
				delete(open, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			child := children[top.next]
			top.next++
			if open[child] {
				continue
			}

			open[child] = true
			stack = append(stack, frame{node: child})
			if !yield(child) {
				return
			}
		}
	}
}

// Cycles returns every dependency cycle, each starting and ending with the same type.
func (g *DependencyGraph) Cycles() [][]ResourceType {
	visited := make(map[ResourceType]bool)
	recStack := make(map[ResourceType]bool)
	var cycles [][]ResourceType

	for _, t := range g.Nodes() {
		if !visited[t] {
			g.detectCyclesUtil(t, visited, recStack, nil, &cycles)
		}
	}

	return cycles
}

// detectCyclesUtil performs DFS and records every back edge as a cycle.
func (g *DependencyGraph) detectCyclesUtil(
	node ResourceType,
	visited map[ResourceType]bool,
	recStack map[ResourceType]bool,
	path []ResourceType,
	cycles *[][]ResourceType,
) {
	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dependent := range g.children[node] {
		if !visited[dependent] {
			g.detectCyclesUtil(dependent, visited, recStack, path, cycles)
			continue
		}
		if !recStack[dependent] {
			continue
		}
		for i, t := range path {
			if t == dependent {
				cycle := append(append([]ResourceType(nil), path[i:]...), dependent)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recStack[node] = false
}

// Unreachable returns the nodes that no walk from a root visits.
// Only members of a dependency cycle (and their descendants) end up here.
func (g *DependencyGraph) Unreachable() []ResourceType {
	seen := make(map[ResourceType]bool, len(g.nodes))
	for _, root := range g.Roots() {
		for t := range g.Walk(root) {
			seen[t] = true
		}
	}

	out := make([]ResourceType, 0)
	for _, t := range g.Nodes() {
		if !seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// ToDOT generates a DOT format representation of the graph for visualization.
// Only nodes that take part in an edge or carry a non-trivial dependency are drawn.
func (g *DependencyGraph) ToDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph DependencyGraph {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, t := range g.Nodes() {
		kind := g.kinds[t]
		if kind == DependencyNone && !g.HasDependents(t) {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %q [fillcolor=%q, style=\"filled,rounded\"];\n",
			string(t), getKindColor(kind)))
	}

	sb.WriteString("\n")

	parents := make([]ResourceType, 0, len(g.children))
	for p := range g.children {
		parents = append(parents, p)
	}
	for _, parent := range SortTypes(parents) {
		for _, child := range g.children[parent] {
			sb.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n",
				string(parent), string(child), formatMapping(g.mappings[child])))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// formatCycle formats a cycle path for log messages.
func formatCycle(cycle []ResourceType) string {
	parts := make([]string, len(cycle))
	for i, t := range cycle {
		parts[i] = string(t)
	}
	return strings.Join(parts, " -> ")
}

// formatMapping renders a mapping as "child<-parent" pairs.
func formatMapping(mapping []PropertyMapping) string {
	parts := make([]string, len(mapping))
	for i, m := range mapping {
		parts[i] = m.Child + "<-" + m.Parent
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// getKindColor returns a color for visualizing dependency kinds.
func getKindColor(kind DependencyKind) string {
	switch kind {
	case DependencyParent:
		return "lightblue"
	case DependencyDynamic:
		return "lightgreen"
	case DependencyStatic:
		return "khaki"
	case DependencyFeatureGate:
		return "lightcoral"
	default:
		return "white"
	}
}
