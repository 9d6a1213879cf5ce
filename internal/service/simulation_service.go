package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/engine"
	"github.com/vanshika/wormsim/internal/network"
	"github.com/vanshika/wormsim/internal/simulation"
)

// EdgeSource loads stored networks.
type EdgeSource interface {
	LoadEdges(ctx context.Context, network string) ([]domain.Edge, error)
}

// RunLedger is the storage contract for finished runs.
type RunLedger interface {
	Save(ctx context.Context, rec domain.RunRecord) (domain.RunRecord, error)
	Get(ctx context.Context, id string) (domain.RunRecord, error)
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// SimulationService loads networks, runs simulations and records their outcome.
type SimulationService struct {
	driver *simulation.Driver
	edges  EdgeSource
	ledger RunLedger
	logger *slog.Logger
	nowFn  func() time.Time
}

// SimulateRequest describes one run.
type SimulateRequest struct {
	Network NetworkRef
	Config  simulation.Config
	// Seed zero picks a time-based seed, which is reported back.
	Seed     int64
	Record   bool
	Reporter simulation.Reporter
}

// SimulateResponse carries the final state and the ledger entry describing it.
// Run.ID is empty when the run was not recorded.
type SimulateResponse struct {
	Run    domain.RunRecord  `json:"run"`
	Result simulation.Result `json:"result"`
}

// TrialsRequest describes a batch of independent runs.
type TrialsRequest struct {
	Network NetworkRef
	Config  simulation.Config
	Options simulation.TrialOptions
}

// NewSimulationService wires a service. edges and ledger may be nil when
// stored networks or the run ledger are not configured.
func NewSimulationService(driver *simulation.Driver, edges EdgeSource, ledger RunLedger, logger *slog.Logger) *SimulationService {
	if driver == nil {
		driver = simulation.NewDriver(logger, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationService{
		driver: driver,
		edges:  edges,
		ledger: ledger,
		logger: logger,
		nowFn:  time.Now,
	}
}

// LoadNetwork builds the graph named by ref.
func (s *SimulationService) LoadNetwork(ctx context.Context, ref NetworkRef) (*network.Graph, error) {
	switch {
	case ref.Stored != "":
		if s.edges == nil {
			return nil, errors.Wrapf(domain.ErrConfiguration, "stored network %q requested but no graph database is configured", ref.Stored)
		}
		edges, err := s.edges.LoadEdges(ctx, ref.Stored)
		if err != nil {
			return nil, err
		}
		return network.FromEdges(edges), nil
	case ref.Path != "":
		return network.LoadFile(ref.Path)
	case len(ref.Edges) > 0:
		rows := make([][]string, 0, len(ref.Edges))
		for _, e := range ref.Edges {
			rows = append(rows, []string{e.Source, e.Target})
		}
		return network.Build(rows)
	default:
		return nil, errors.Wrap(domain.ErrConfiguration, "network is required")
	}
}

// Simulate runs one simulation. On stagnation or cancellation the response
// still carries the last consistent state next to the error.
func (s *SimulationService) Simulate(ctx context.Context, req SimulateRequest) (SimulateResponse, error) {
	if err := req.Config.Validate(); err != nil {
		return SimulateResponse{}, err
	}
	if req.Record && s.ledger == nil {
		return SimulateResponse{}, errors.Wrap(domain.ErrConfiguration, "recording requested but no run ledger is configured")
	}
	g, err := s.LoadNetwork(ctx, req.Network)
	if err != nil {
		return SimulateResponse{}, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.nowFn().UnixNano()
	}

	started := s.nowFn()
	result, runErr := s.driver.WithReporter(req.Reporter).Run(ctx, g, req.Config, engine.NewSource(seed))
	if runErr != nil && result.Mode == "" {
		// Rejected before round 0.
		return SimulateResponse{}, runErr
	}

	rec := domain.RunRecord{
		Network:         req.Network.String(),
		Mode:            result.Mode,
		InfectionProb:   req.Config.InfectionProb,
		InoculationProb: req.Config.InoculationProb,
		PatientZero:     result.PatientZero,
		Inoculator:      result.Inoculator,
		Seed:            seed,
		Rounds:          result.Rounds,
		Outcome:         result.Outcome,
		NodeCount:       g.NodeCount(),
		InfectedCount:   result.InfectedCount,
		InoculatedCount: result.InoculatedCount,
		Duration:        s.nowFn().Sub(started),
	}
	if !req.Config.InoculationEnabled() {
		rec.InoculationProb = 0
	}

	if req.Record && (runErr == nil || errors.Is(runErr, domain.ErrStagnation)) {
		saved, err := s.ledger.Save(ctx, rec)
		if err != nil {
			return SimulateResponse{Run: rec, Result: result}, err
		}
		rec = saved
	}

	s.logger.Info("simulation finished",
		slog.String("network", rec.Network),
		slog.String("mode", string(rec.Mode)),
		slog.String("outcome", string(rec.Outcome)),
		slog.Int("rounds", rec.Rounds),
		slog.Int64("seed", seed),
		slog.String("run_id", rec.ID),
	)
	return SimulateResponse{Run: rec, Result: result}, runErr
}

// Trials runs a batch of independent simulations over one network.
func (s *SimulationService) Trials(ctx context.Context, req TrialsRequest) (simulation.TrialSummary, error) {
	if err := req.Config.Validate(); err != nil {
		return simulation.TrialSummary{}, err
	}
	g, err := s.LoadNetwork(ctx, req.Network)
	if err != nil {
		return simulation.TrialSummary{}, err
	}
	if req.Options.BaseSeed == 0 {
		req.Options.BaseSeed = s.nowFn().UnixNano()
	}
	summary, err := s.driver.RunTrials(ctx, g, req.Config, req.Options)
	s.logger.Info("trials finished",
		slog.String("network", req.Network.String()),
		slog.Int("trials", summary.Trials),
		slog.Int64("base_seed", summary.BaseSeed),
		slog.Float64("mean_rounds", summary.MeanRounds),
	)
	return summary, err
}

// ListRuns returns recent ledger entries, newest first.
func (s *SimulationService) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.ledger == nil {
		return nil, errors.Wrap(domain.ErrConfiguration, "no run ledger is configured")
	}
	return s.ledger.List(ctx, limit)
}

// GetRun returns one ledger entry.
func (s *SimulationService) GetRun(ctx context.Context, id string) (domain.RunRecord, error) {
	if s.ledger == nil {
		return domain.RunRecord{}, errors.Wrap(domain.ErrConfiguration, "no run ledger is configured")
	}
	return s.ledger.Get(ctx, id)
}
