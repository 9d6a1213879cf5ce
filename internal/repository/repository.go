// Package repository persists networks as (:Host)-[:LINK]-(:Host) graphs so
// they can be shared between runs and tools.
package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/graph"
)

const (
	ensureConstraintCypher = `
CREATE CONSTRAINT host_identity IF NOT EXISTS
FOR (h:Host) REQUIRE (h.network, h.id) IS UNIQUE`

	importEdgesCypher = `
UNWIND $edges AS edge
MERGE (a:Host {network: $network, id: edge.source})
MERGE (b:Host {network: $network, id: edge.target})
MERGE (a)-[:LINK]-(b)`

	loadEdgesCypher = `
MATCH (a:Host {network: $network})-[:LINK]-(b:Host {network: $network})
WHERE a.id <= b.id
RETURN DISTINCT a.id AS source, b.id AS target
ORDER BY source, target`

	countHostsCypher = `
MATCH (h:Host {network: $network})
RETURN count(h) AS hosts`

	deleteNetworkCypher = `
MATCH (h:Host {network: $network})
DETACH DELETE h`
)

// EdgeRepository reads and writes edge lists in the graph database.
type EdgeRepository struct {
	client graph.Client
}

// New instantiates an EdgeRepository backed by the supplied graph client.
func New(client graph.Client) *EdgeRepository {
	return &EdgeRepository{client: client}
}

// EnsureSchema creates the host uniqueness constraint when missing.
func (r *EdgeRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, ensureConstraintCypher, nil); err != nil {
		return errors.Wrap(err, "ensure host constraint")
	}
	return nil
}

// ImportEdges merges one batch of edges into the named network.
func (r *EdgeRepository) ImportEdges(ctx context.Context, network string, edges []domain.Edge) error {
	network, err := networkName(network)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}

	params := map[string]any{
		"network": network,
		"edges":   edgeParams(edges),
	}
	if _, err := r.client.ExecuteWrite(ctx, importEdgesCypher, params); err != nil {
		return errors.Wrapf(err, "import %d edges into %s", len(edges), network)
	}
	return nil
}

// LoadEdges returns every edge of the named network, once per pair.
func (r *EdgeRepository) LoadEdges(ctx context.Context, network string) ([]domain.Edge, error) {
	network, err := networkName(network)
	if err != nil {
		return nil, err
	}

	res, err := r.client.ExecuteRead(ctx, loadEdgesCypher, map[string]any{"network": network})
	if err != nil {
		return nil, errors.Wrapf(err, "load edges of %s", network)
	}
	if len(res.Records) == 0 {
		return nil, errors.Wrapf(domain.ErrNotFound, "network %q has no edges", network)
	}

	edges := make([]domain.Edge, 0, len(res.Records))
	for i, rec := range res.Records {
		source, err := rec.String("source")
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInputFormat, "record %d: %v", i, err)
		}
		target, err := rec.String("target")
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInputFormat, "record %d: %v", i, err)
		}
		edges = append(edges, domain.Edge{Source: source, Target: target})
	}
	return edges, nil
}

// CountHosts returns the number of hosts stored for network.
func (r *EdgeRepository) CountHosts(ctx context.Context, network string) (int64, error) {
	network, err := networkName(network)
	if err != nil {
		return 0, err
	}
	res, err := r.client.ExecuteRead(ctx, countHostsCypher, map[string]any{"network": network})
	if err != nil {
		return 0, errors.Wrapf(err, "count hosts of %s", network)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	return res.Records[0].Int64("hosts")
}

// DeleteNetwork removes every host and link of network.
func (r *EdgeRepository) DeleteNetwork(ctx context.Context, network string) error {
	network, err := networkName(network)
	if err != nil {
		return err
	}
	if _, err := r.client.ExecuteWrite(ctx, deleteNetworkCypher, map[string]any{"network": network}); err != nil {
		return errors.Wrapf(err, "delete network %s", network)
	}
	return nil
}

func networkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.Wrap(domain.ErrConfiguration, "network name is required")
	}
	return name, nil
}

func edgeParams(edges []domain.Edge) []map[string]any {
	out := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]any{
			"source": e.Source,
			"target": e.Target,
		})
	}
	return out
}
