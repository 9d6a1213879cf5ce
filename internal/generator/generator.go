// Package generator produces random networks in the edge-list shape the
// simulator consumes.
package generator

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/network"
)

// Generator produces one random graph per Generate call.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New validates cfg and returns a seeded Generator. A zero seed is replaced
// with a time-based one.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Generate builds the configured model. It respects context cancellation.
// Node identifiers are the decimal strings "0" .. "n-1".
func (g *Generator) Generate(ctx context.Context) ([]domain.Edge, error) {
	var (
		adj adjacency
		err error
	)
	switch g.cfg.Model {
	case ModelErdosRenyi:
		adj, err = g.erdosRenyi(ctx)
	case ModelBarabasiAlbert:
		adj, err = g.barabasiAlbert(ctx)
	case ModelWattsStrogatz:
		adj, err = g.connectedWattsStrogatz(ctx)
	}
	if err != nil {
		return nil, err
	}
	return adj.edges(), nil
}

func (g *Generator) erdosRenyi(ctx context.Context) (adjacency, error) {
	n := g.cfg.Vertices
	adj := newAdjacency(n)
	for u := 0; u < n; u++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for v := u + 1; v < n; v++ {
			if g.rand.Float64() < g.cfg.EdgeProbability {
				adj.link(u, v)
			}
		}
	}
	return adj, nil
}

// barabasiAlbert grows the graph by attaching each new node to m distinct
// targets picked with probability proportional to degree.
func (g *Generator) barabasiAlbert(ctx context.Context) (adjacency, error) {
	n, m := g.cfg.Vertices, g.cfg.EdgesPerNode
	adj := newAdjacency(n)

	targets := make([]int, m)
	for i := range targets {
		targets[i] = i
	}
	var repeated []int
	for source := m; source < n; source++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, t := range targets {
			adj.link(source, t)
		}
		repeated = append(repeated, targets...)
		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
		targets = g.distinctSample(repeated, m)
	}
	return adj, nil
}

func (g *Generator) distinctSample(pool []int, m int) []int {
	seen := make(map[int]struct{}, m)
	out := make([]int, 0, m)
	for len(out) < m {
		x := pool[g.rand.Intn(len(pool))]
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

func (g *Generator) connectedWattsStrogatz(ctx context.Context) (adjacency, error) {
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		adj, err := g.wattsStrogatz(ctx)
		if err != nil {
			return nil, err
		}
		graph := network.FromEdges(adj.edges())
		if graph.NodeCount() == g.cfg.Vertices && graph.Connected() {
			return adj, nil
		}
	}
	return nil, errors.Wrapf(domain.ErrConfiguration,
		"no connected watts-strogatz graph with pksum %v in %d attempts", g.cfg.PKSum, g.cfg.MaxAttempts)
}

// wattsStrogatz builds a ring lattice where every node links to k/2 nodes on
// each side, then rewires each lattice edge with probability p.
func (g *Generator) wattsStrogatz(ctx context.Context) (adjacency, error) {
	n := g.cfg.Vertices
	k, p := g.cfg.WattsParams()
	adj := newAdjacency(n)
	for u := 0; u < n; u++ {
		for j := 1; j <= k/2; j++ {
			adj.link(u, (u+j)%n)
		}
	}

	for j := 1; j <= k/2; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for u := 0; u < n; u++ {
			if g.rand.Float64() >= p {
				continue
			}
			if len(adj[u]) >= n-1 {
				continue
			}
			w := g.rand.Intn(n)
			for w == u || adj.has(u, w) {
				w = g.rand.Intn(n)
			}
			adj.unlink(u, (u+j)%n)
			adj.link(u, w)
		}
	}
	return adj, nil
}

type adjacency []map[int]struct{}

func newAdjacency(n int) adjacency {
	adj := make(adjacency, n)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	return adj
}

func (a adjacency) link(u, v int) {
	a[u][v] = struct{}{}
	a[v][u] = struct{}{}
}

func (a adjacency) unlink(u, v int) {
	delete(a[u], v)
	delete(a[v], u)
}

func (a adjacency) has(u, v int) bool {
	_, ok := a[u][v]
	return ok
}

// edges lists each undirected edge once, ordered by (low, high) endpoint.
func (a adjacency) edges() []domain.Edge {
	type pair struct{ u, v int }
	var pairs []pair
	for u, ns := range a {
		for v := range ns {
			if u < v {
				pairs = append(pairs, pair{u, v})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].u != pairs[j].u {
			return pairs[i].u < pairs[j].u
		}
		return pairs[i].v < pairs[j].v
	})
	out := make([]domain.Edge, len(pairs))
	for i, p := range pairs {
		out[i] = domain.Edge{Source: strconv.Itoa(p.u), Target: strconv.Itoa(p.v)}
	}
	return out
}
