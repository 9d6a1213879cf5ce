// Package engine implements the round-based infection and inoculation rules.
package engine

import (
	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

// Topology is the read-only graph view the engine needs.
type Topology interface {
	Neighbors(node string) ([]string, error)
	NodeCount() int
}

// Rules carries the per-edge spread probabilities.
type Rules struct {
	InfectionProb   float64
	InoculationProb float64
}

// StepReport describes what one round changed.
type StepReport struct {
	NewInfections   int
	NewInoculations int
}

// Engine applies one propagation mode to a State. The mode is fixed for the
// lifetime of the engine.
type Engine struct {
	mode  domain.Mode
	graph Topology
	rules Rules
	rng   Source
}

// New returns an engine for mode.
func New(mode domain.Mode, graph Topology, rules Rules, rng Source) (*Engine, error) {
	switch mode {
	case domain.ModeSimple, domain.ModeCompetitive:
	default:
		return nil, errors.Wrapf(domain.ErrConfiguration, "unknown mode %q", mode)
	}
	if graph == nil || rng == nil {
		return nil, errors.Wrap(domain.ErrConfiguration, "engine requires a graph and a random source")
	}
	return &Engine{mode: mode, graph: graph, rules: rules, rng: rng}, nil
}

// Mode returns the configured propagation mode.
func (e *Engine) Mode() domain.Mode {
	return e.mode
}

// Step runs exactly one round against s and advances its round counter.
func (e *Engine) Step(s *State) (StepReport, error) {
	var report StepReport

	infected, err := e.spreadInfection(s)
	if err != nil {
		return report, err
	}
	report.NewInfections = infected

	if e.mode == domain.ModeCompetitive {
		inoculated, err := e.spreadInoculation(s)
		if err != nil {
			return report, err
		}
		report.NewInoculations = inoculated
		s.resolve()
	}

	s.round++
	return report, nil
}

// Terminal reports the outcome once s has reached the mode's terminal state.
func (e *Engine) Terminal(s *State) (domain.Outcome, bool) {
	switch e.mode {
	case domain.ModeCompetitive:
		if s.infected.Empty() {
			return domain.OutcomeEradicated, true
		}
	default:
		if s.infected.Size() == e.graph.NodeCount() {
			return domain.OutcomeFullyInfected, true
		}
	}
	return domain.OutcomeIncomplete, false
}

// spreadInfection picks one infected node and tries each healthy,
// non-inoculated neighbor once.
func (e *Engine) spreadInfection(s *State) (int, error) {
	if s.infected.Empty() {
		return 0, nil
	}
	source := e.rng.Choose(stringValues(s.infected))
	neighbors, err := e.graph.Neighbors(source)
	if err != nil {
		return 0, errors.WithMessage(err, "infection source")
	}

	added := 0
	for _, v := range neighbors {
		if s.infected.Contains(v) || s.inoculated.Contains(v) {
			continue
		}
		if e.rng.Float64() < e.rules.InfectionProb {
			s.infected.Add(v)
			added++
		}
	}
	return added, nil
}

// spreadInoculation picks one inoculated node and tries each neighbor that is
// not yet inoculated, infected ones included.
func (e *Engine) spreadInoculation(s *State) (int, error) {
	if s.inoculated.Empty() {
		return 0, nil
	}
	source := e.rng.Choose(stringValues(s.inoculated))
	neighbors, err := e.graph.Neighbors(source)
	if err != nil {
		return 0, errors.WithMessage(err, "inoculation source")
	}

	added := 0
	for _, v := range neighbors {
		if s.inoculated.Contains(v) {
			continue
		}
		if e.rng.Float64() < e.rules.InoculationProb {
			s.inoculated.Add(v)
			added++
		}
	}
	return added, nil
}
