package simulation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

// Config describes one run. Node references are plain identifiers or the
// literal "random".
type Config struct {
	InfectionProb   float64
	InoculationProb float64
	PatientZero     string
	// Inoculator disables inoculation when empty.
	Inoculator string
	// MaxRounds bounds the run; zero means unbounded.
	MaxRounds int
}

// DefaultConfig mirrors the command-line defaults.
func DefaultConfig() Config {
	return Config{
		InfectionProb:   0.5,
		InoculationProb: 0.5,
		PatientZero:     domain.RandomNode,
	}
}

// InoculationEnabled reports whether a competing cure process runs.
func (c Config) InoculationEnabled() bool {
	return c.Inoculator != ""
}

// Mode derives the propagation mode from the inoculator setting.
func (c Config) Mode() domain.Mode {
	if c.InoculationEnabled() {
		return domain.ModeCompetitive
	}
	return domain.ModeSimple
}

// Validate checks everything that does not need the graph.
func (c Config) Validate() error {
	if !validProbability(c.InfectionProb) {
		return errors.Wrapf(domain.ErrConfiguration, "infection probability %v outside [0,1]", c.InfectionProb)
	}
	if !validProbability(c.InoculationProb) {
		return errors.Wrapf(domain.ErrConfiguration, "inoculation probability %v outside [0,1]", c.InoculationProb)
	}
	if c.PatientZero == "" {
		return errors.Wrap(domain.ErrConfiguration, "first infected node is required")
	}
	if c.MaxRounds < 0 {
		return errors.Wrapf(domain.ErrConfiguration, "max rounds %d is negative", c.MaxRounds)
	}
	if c.InoculationEnabled() &&
		!domain.IsRandomRequest(c.PatientZero) &&
		!domain.IsRandomRequest(c.Inoculator) &&
		c.PatientZero == c.Inoculator {
		return errors.Wrapf(domain.ErrConfiguration, "inoculator and first infected are both %q", c.PatientZero)
	}
	return nil
}

func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
