package engine

import (
	"github.com/emirpasic/gods/sets/treeset"
)

// State is the mutable per-run propagation state. Both sets iterate in sorted
// order, which keeps seeded runs reproducible.
type State struct {
	infected   *treeset.Set
	inoculated *treeset.Set
	round      int
}

// NewState seeds round 0. An empty inoculator disables inoculation. When both
// seeds name the same node the cure wins and infected starts empty.
func NewState(patientZero, inoculator string) *State {
	s := &State{
		infected:   treeset.NewWithStringComparator(patientZero),
		inoculated: treeset.NewWithStringComparator(),
	}
	if inoculator != "" {
		s.inoculated.Add(inoculator)
	}
	s.resolve()
	return s
}

// Round returns the number of completed rounds.
func (s *State) Round() int { return s.round }

// InfectedCount returns the size of the infected set.
func (s *State) InfectedCount() int { return s.infected.Size() }

// InoculatedCount returns the size of the inoculated set.
func (s *State) InoculatedCount() int { return s.inoculated.Size() }

// IsInfected reports whether node is currently infected.
func (s *State) IsInfected(node string) bool { return s.infected.Contains(node) }

// IsInoculated reports whether node is currently inoculated.
func (s *State) IsInoculated(node string) bool { return s.inoculated.Contains(node) }

// Infected returns the infected nodes in sorted order.
func (s *State) Infected() []string { return stringValues(s.infected) }

// Inoculated returns the inoculated nodes in sorted order.
func (s *State) Inoculated() []string { return stringValues(s.inoculated) }

// resolve applies cure precedence: nothing inoculated stays infected.
func (s *State) resolve() {
	if s.inoculated.Empty() || s.infected.Empty() {
		return
	}
	s.infected.Remove(s.inoculated.Values()...)
}

func stringValues(set *treeset.Set) []string {
	values := set.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.(string)
	}
	return out
}
