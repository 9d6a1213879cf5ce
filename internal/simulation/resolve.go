package simulation

import (
	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/engine"
)

// Graph is the read-only view the driver runs against.
type Graph interface {
	engine.Topology
	Contains(node string) bool
	Nodes() []string
}

// Seeds are the resolved starting nodes of a run. Inoculator is empty when
// inoculation is disabled.
type Seeds struct {
	PatientZero string
	Inoculator  string
}

// Resolve turns the configured node references into graph nodes, drawing
// random ones from rng. A random inoculator never equals the patient zero.
func Resolve(g Graph, cfg Config, rng engine.Source) (Seeds, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return Seeds{}, errors.Wrap(domain.ErrConfiguration, "network has no nodes")
	}

	var seeds Seeds
	switch {
	case domain.IsRandomRequest(cfg.PatientZero):
		seeds.PatientZero = rng.Choose(nodes)
	case g.Contains(cfg.PatientZero):
		seeds.PatientZero = cfg.PatientZero
	default:
		return Seeds{}, errors.Wrapf(domain.ErrUnknownNode, "first infected %q", cfg.PatientZero)
	}

	if !cfg.InoculationEnabled() {
		return seeds, nil
	}

	switch {
	case domain.IsRandomRequest(cfg.Inoculator):
		candidates := make([]string, 0, len(nodes)-1)
		for _, n := range nodes {
			if n != seeds.PatientZero {
				candidates = append(candidates, n)
			}
		}
		if len(candidates) == 0 {
			return Seeds{}, errors.Wrap(domain.ErrConfiguration, "no node left to inoculate")
		}
		seeds.Inoculator = rng.Choose(candidates)
	case g.Contains(cfg.Inoculator):
		seeds.Inoculator = cfg.Inoculator
	default:
		return Seeds{}, errors.Wrapf(domain.ErrUnknownNode, "inoculator %q", cfg.Inoculator)
	}
	return seeds, nil
}

// checkReferences validates explicit node references without drawing
// anything, so a batch can fail fast before spawning trials.
func checkReferences(g Graph, cfg Config) error {
	if g.NodeCount() == 0 {
		return errors.Wrap(domain.ErrConfiguration, "network has no nodes")
	}
	if !domain.IsRandomRequest(cfg.PatientZero) && !g.Contains(cfg.PatientZero) {
		return errors.Wrapf(domain.ErrUnknownNode, "first infected %q", cfg.PatientZero)
	}
	if !cfg.InoculationEnabled() {
		return nil
	}
	if domain.IsRandomRequest(cfg.Inoculator) {
		if g.NodeCount() < 2 {
			return errors.Wrap(domain.ErrConfiguration, "no node left to inoculate")
		}
		return nil
	}
	if !g.Contains(cfg.Inoculator) {
		return errors.Wrapf(domain.ErrUnknownNode, "inoculator %q", cfg.Inoculator)
	}
	return nil
}
