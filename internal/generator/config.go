package generator

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

// Model names a random graph model.
type Model string

const (
	ModelErdosRenyi     Model = "erdos-renyi"
	ModelBarabasiAlbert Model = "barabasi-albert"
	ModelWattsStrogatz  Model = "watts-strogatz"
)

// Config drives the network generator.
type Config struct {
	Model    Model
	Vertices int
	// EdgeProbability is p for Erdős–Rényi G(n, p).
	EdgeProbability float64
	// EdgesPerNode is m for Barabási–Albert.
	EdgesPerNode int
	// PKSum packs Watts–Strogatz parameters: the integer part is k (ring
	// neighbors), the fraction is the rewiring probability.
	PKSum float64
	// MaxAttempts bounds the retries for a connected Watts–Strogatz graph.
	MaxAttempts int
	Seed        int64
}

// DefaultConfig returns a dense 1000-node Erdős–Rényi graph.
func DefaultConfig() Config {
	return Config{
		Model:           ModelErdosRenyi,
		Vertices:        1000,
		EdgeProbability: 0.5,
		MaxAttempts:     100,
	}
}

// FromOptions picks the model from command-line style options where the zero
// value means "not given". At most one model may be chosen; none selects the
// default graph.
func FromOptions(vertices int, erdos float64, barabasi int, watts float64, seed int64) (Config, error) {
	cfg := DefaultConfig()
	cfg.Seed = seed

	chosen := 0
	for _, set := range []bool{erdos != 0, barabasi != 0, watts != 0} {
		if set {
			chosen++
		}
	}
	switch {
	case chosen == 0:
		return cfg, nil
	case chosen > 1:
		return Config{}, errors.Wrap(domain.ErrConfiguration, "specify only one of erdos-renyi, barabasi-albert and watts-strogatz")
	}

	if vertices > 0 {
		cfg.Vertices = vertices
	}
	switch {
	case erdos != 0:
		cfg.Model = ModelErdosRenyi
		cfg.EdgeProbability = erdos
	case barabasi != 0:
		cfg.Model = ModelBarabasiAlbert
		cfg.EdgesPerNode = barabasi
	default:
		cfg.Model = ModelWattsStrogatz
		cfg.PKSum = watts
	}
	return cfg, cfg.Validate()
}

// WattsParams splits PKSum into ring neighbors and rewiring probability.
func (c Config) WattsParams() (int, float64) {
	k := math.Floor(c.PKSum)
	return int(k), c.PKSum - k
}

// Validate applies the per-model parameter bounds.
func (c Config) Validate() error {
	if c.Vertices <= 0 {
		return errors.Wrapf(domain.ErrConfiguration, "vertex count %d must be positive", c.Vertices)
	}
	switch c.Model {
	case ModelErdosRenyi:
		if !(c.EdgeProbability > 0 && c.EdgeProbability < 1) {
			return errors.Wrapf(domain.ErrConfiguration, "edge probability %v must be in (0,1)", c.EdgeProbability)
		}
	case ModelBarabasiAlbert:
		if c.EdgesPerNode < 1 || c.EdgesPerNode >= c.Vertices {
			return errors.Wrapf(domain.ErrConfiguration, "edges per new node %d must be in [1,%d)", c.EdgesPerNode, c.Vertices)
		}
	case ModelWattsStrogatz:
		k, p := c.WattsParams()
		if k < 1 || k >= c.Vertices {
			return errors.Wrapf(domain.ErrConfiguration, "ring neighbors %d must be in [1,%d)", k, c.Vertices)
		}
		if !(p > 0 && p < 1) {
			return errors.Wrapf(domain.ErrConfiguration, "rewiring probability %v must be in (0,1)", p)
		}
	default:
		return errors.Wrapf(domain.ErrConfiguration, "unknown model %q", c.Model)
	}
	return nil
}
