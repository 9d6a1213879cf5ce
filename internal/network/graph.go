// Package network holds the read-only adjacency structure the simulator runs
// against, and the readers that build it from CSV edge lists.
package network

import (
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

// Graph is a simple undirected graph keyed by opaque string identifiers.
// It is immutable once built; every method is safe for concurrent readers.
type Graph struct {
	adjacency map[string]*treeset.Set
	neighbors map[string][]string
	nodes     []string
	edges     int
}

// Build constructs a graph from raw edge rows. Every row must contain exactly
// two non-empty identifiers. Self-loops make a node its own neighbor and
// duplicate rows are ignored.
func Build(rows [][]string) (*Graph, error) {
	b := newBuilder()
	for i, row := range rows {
		edge, err := edgeFromRow(row)
		if err != nil {
			return nil, errors.WithMessagef(err, "row %d", i+1)
		}
		b.add(edge)
	}
	return b.freeze(), nil
}

// FromEdges constructs a graph from already validated edges.
func FromEdges(edges []domain.Edge) *Graph {
	b := newBuilder()
	for _, e := range edges {
		b.add(e)
	}
	return b.freeze()
}

func edgeFromRow(row []string) (domain.Edge, error) {
	if len(row) != 2 {
		return domain.Edge{}, errors.Wrapf(domain.ErrInputFormat, "expected 2 fields, got %d", len(row))
	}
	if row[0] == "" || row[1] == "" {
		return domain.Edge{}, errors.Wrap(domain.ErrInputFormat, "empty node identifier")
	}
	return domain.Edge{Source: row[0], Target: row[1]}, nil
}

// Neighbors returns the sorted neighbors of node. The returned slice is a copy.
func (g *Graph) Neighbors(node string) ([]string, error) {
	ns, ok := g.neighbors[node]
	if !ok {
		return nil, errors.Wrapf(domain.ErrUnknownNode, "%q", node)
	}
	return append([]string(nil), ns...), nil
}

// Contains reports whether node is part of the graph.
func (g *Graph) Contains(node string) bool {
	_, ok := g.adjacency[node]
	return ok
}

// Adjacent reports whether a and b share an edge.
func (g *Graph) Adjacent(a, b string) bool {
	set, ok := g.adjacency[a]
	if !ok {
		return false
	}
	return set.Contains(b)
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct undirected edges, self-loops included.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Nodes returns every node identifier in sorted order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns each undirected edge once, with Source <= Target, in sorted order.
func (g *Graph) Edges() []domain.Edge {
	out := make([]domain.Edge, 0, g.edges)
	for _, node := range g.nodes {
		for _, other := range g.neighbors[node] {
			if node <= other {
				out = append(out, domain.Edge{Source: node, Target: other})
			}
		}
	}
	return out
}

// Component returns the sorted connected component that contains node.
func (g *Graph) Component(node string) ([]string, error) {
	if !g.Contains(node) {
		return nil, errors.Wrapf(domain.ErrUnknownNode, "%q", node)
	}
	seen := map[string]struct{}{node: {}}
	queue := []string{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.neighbors[current] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// Connected reports whether the graph has exactly one connected component.
// An empty graph is not connected.
func (g *Graph) Connected() bool {
	if len(g.nodes) == 0 {
		return false
	}
	component, _ := g.Component(g.nodes[0])
	return len(component) == len(g.nodes)
}

type builder struct {
	adjacency map[string]*treeset.Set
	edges     int
}

func newBuilder() *builder {
	return &builder{adjacency: make(map[string]*treeset.Set)}
}

func (b *builder) set(node string) *treeset.Set {
	s, ok := b.adjacency[node]
	if !ok {
		s = treeset.NewWithStringComparator()
		b.adjacency[node] = s
	}
	return s
}

func (b *builder) add(e domain.Edge) {
	src := b.set(e.Source)
	if src.Contains(e.Target) {
		return
	}
	src.Add(e.Target)
	b.set(e.Target).Add(e.Source)
	b.edges++
}

func (b *builder) freeze() *Graph {
	g := &Graph{
		adjacency: b.adjacency,
		neighbors: make(map[string][]string, len(b.adjacency)),
		nodes:     make([]string, 0, len(b.adjacency)),
		edges:     b.edges,
	}
	for node, set := range b.adjacency {
		g.nodes = append(g.nodes, node)
		g.neighbors[node] = stringValues(set)
	}
	sort.Strings(g.nodes)
	return g
}

// stringValues materializes a string treeset in comparator order.
func stringValues(set *treeset.Set) []string {
	values := set.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.(string)
	}
	return out
}
