// Package simulation drives the propagation engine from a validated run
// configuration to a terminal outcome.
package simulation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/engine"
)

// Result is the last consistent state of a run.
type Result struct {
	Mode            domain.Mode    `json:"mode"`
	Outcome         domain.Outcome `json:"outcome"`
	Rounds          int            `json:"rounds"`
	PatientZero     string         `json:"patientZero"`
	Inoculator      string         `json:"inoculator,omitempty"`
	InfectedCount   int            `json:"infectedCount"`
	InoculatedCount int            `json:"inoculatedCount"`
	Infected        []string       `json:"infected"`
	Inoculated      []string       `json:"inoculated"`
}

// StagnationError reports a run that hit its round cap before a terminal state.
type StagnationError struct {
	MaxRounds       int
	InfectedCount   int
	InoculatedCount int
}

func (e *StagnationError) Error() string {
	return fmt.Sprintf("no terminal state after %d rounds (infected=%d inoculated=%d)",
		e.MaxRounds, e.InfectedCount, e.InoculatedCount)
}

// Is lets errors.Is match domain.ErrStagnation.
func (e *StagnationError) Is(target error) bool {
	return target == domain.ErrStagnation
}

// Driver runs simulations. A Driver holds no run state and may be shared.
type Driver struct {
	logger   *slog.Logger
	reporter Reporter
}

// NewDriver constructs a Driver. Nil arguments fall back to silent defaults.
func NewDriver(logger *slog.Logger, reporter Reporter) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Driver{logger: logger, reporter: reporter}
}

// WithReporter returns a copy of d that also reports progress to r.
// A nil r returns d itself.
func (d *Driver) WithReporter(r Reporter) *Driver {
	if r == nil {
		return d
	}
	if _, ok := d.reporter.(NopReporter); ok {
		return &Driver{logger: d.logger, reporter: r}
	}
	return &Driver{logger: d.logger, reporter: MultiReporter{d.reporter, r}}
}

// Run validates cfg, resolves the seed nodes and steps the engine until a
// terminal state, cancellation of ctx, or the round cap. On cancellation and
// stagnation the returned Result still describes the last finished round.
func (d *Driver) Run(ctx context.Context, g Graph, cfg Config, rng engine.Source) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	seeds, err := Resolve(g, cfg, rng)
	if err != nil {
		return Result{}, err
	}
	return d.run(ctx, g, cfg, seeds, rng, d.reporter)
}

func (d *Driver) run(ctx context.Context, g Graph, cfg Config, seeds Seeds, rng engine.Source, reporter Reporter) (Result, error) {
	eng, err := engine.New(cfg.Mode(), g, engine.Rules{
		InfectionProb:   cfg.InfectionProb,
		InoculationProb: cfg.InoculationProb,
	}, rng)
	if err != nil {
		return Result{}, err
	}

	state := engine.NewState(seeds.PatientZero, seeds.Inoculator)
	d.logger.Debug("simulation starting",
		"mode", eng.Mode(),
		"nodes", g.NodeCount(),
		"patient_zero", seeds.PatientZero,
		"inoculator", seeds.Inoculator,
	)

	for {
		if outcome, done := eng.Terminal(state); done {
			return snapshot(eng.Mode(), outcome, seeds, state), nil
		}
		if err := ctx.Err(); err != nil {
			res := snapshot(eng.Mode(), domain.OutcomeIncomplete, seeds, state)
			return res, errors.Wrapf(err, "stopped after round %d", state.Round())
		}
		if cfg.MaxRounds > 0 && state.Round() >= cfg.MaxRounds {
			res := snapshot(eng.Mode(), domain.OutcomeIncomplete, seeds, state)
			return res, &StagnationError{
				MaxRounds:       cfg.MaxRounds,
				InfectedCount:   state.InfectedCount(),
				InoculatedCount: state.InoculatedCount(),
			}
		}

		step, err := eng.Step(state)
		if err != nil {
			return snapshot(eng.Mode(), domain.OutcomeIncomplete, seeds, state), err
		}
		_, terminal := eng.Terminal(state)
		reporter.Report(domain.Progress{
			Round:           state.Round(),
			InfectedCount:   state.InfectedCount(),
			InoculatedCount: state.InoculatedCount(),
			NewInfections:   step.NewInfections,
			NewInoculations: step.NewInoculations,
			Terminal:        terminal,
		})
	}
}

func snapshot(mode domain.Mode, outcome domain.Outcome, seeds Seeds, s *engine.State) Result {
	return Result{
		Mode:            mode,
		Outcome:         outcome,
		Rounds:          s.Round(),
		PatientZero:     seeds.PatientZero,
		Inoculator:      seeds.Inoculator,
		InfectedCount:   s.InfectedCount(),
		InoculatedCount: s.InoculatedCount(),
		Infected:        s.Infected(),
		Inoculated:      s.Inoculated(),
	}
}
