package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/simulation"
)

type stubLedger struct {
	saved   []domain.RunRecord
	saveErr error
}

func (s *stubLedger) Save(_ context.Context, rec domain.RunRecord) (domain.RunRecord, error) {
	if s.saveErr != nil {
		return domain.RunRecord{}, s.saveErr
	}
	rec.ID = "run-" + string(rune('a'+len(s.saved)))
	s.saved = append(s.saved, rec)
	return rec, nil
}

func (s *stubLedger) Get(_ context.Context, id string) (domain.RunRecord, error) {
	for _, rec := range s.saved {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.RunRecord{}, domain.ErrNotFound
}

func (s *stubLedger) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	if limit > 0 && limit < len(s.saved) {
		return s.saved[:limit], nil
	}
	return s.saved, nil
}

type stubEdges struct {
	edges map[string][]domain.Edge
}

func (s stubEdges) LoadEdges(_ context.Context, network string) ([]domain.Edge, error) {
	edges, ok := s.edges[network]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return edges, nil
}

func writeNetwork(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write network: %v", err)
	}
	return path
}

func newTestService(ledger RunLedger, edges EdgeSource) *SimulationService {
	svc := NewSimulationService(nil, edges, ledger, nil)
	svc.nowFn = func() time.Time { return time.Unix(0, 1234) }
	return svc
}

func TestSimulateRecordsTerminalRun(t *testing.T) {
	ledger := &stubLedger{}
	svc := newTestService(ledger, nil)
	path := writeNetwork(t, "A,B\nB,C\n")

	resp, err := svc.Simulate(context.Background(), SimulateRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 1, InoculationProb: 0.5, PatientZero: "A"},
		Record:  true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Result.Outcome != domain.OutcomeFullyInfected || resp.Result.InfectedCount != 3 {
		t.Fatalf("unexpected result %+v", resp.Result)
	}
	if len(ledger.saved) != 1 || resp.Run.ID != "run-a" {
		t.Fatalf("expected run to be recorded, got %+v", ledger.saved)
	}
	rec := ledger.saved[0]
	if rec.Seed != 1234 {
		t.Fatalf("expected time-based seed to be recorded, got %d", rec.Seed)
	}
	if rec.Network != path || rec.NodeCount != 3 || rec.Mode != domain.ModeSimple || rec.InoculationProb != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestSimulateKeepsExplicitSeed(t *testing.T) {
	svc := newTestService(nil, nil)
	path := writeNetwork(t, "A,B\nB,C\nC,D\n")
	req := SimulateRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 0.5, InoculationProb: 0.5, PatientZero: domain.RandomNode, Inoculator: domain.RandomNode},
		Seed:    77,
	}

	first, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.Run.Seed != 77 || first.Result.Rounds != second.Result.Rounds ||
		first.Result.PatientZero != second.Result.PatientZero || first.Result.Inoculator != second.Result.Inoculator {
		t.Fatalf("expected identical seeded runs, got %+v and %+v", first.Result, second.Result)
	}
	if first.Run.ID != "" {
		t.Fatalf("expected unrecorded run to have no id")
	}
}

func TestSimulateRecordsStagnation(t *testing.T) {
	ledger := &stubLedger{}
	svc := newTestService(ledger, nil)
	path := writeNetwork(t, "A,B\nC,D\n")

	resp, err := svc.Simulate(context.Background(), SimulateRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 1, PatientZero: "A", MaxRounds: 20},
		Record:  true,
	})
	if !errors.Is(err, domain.ErrStagnation) {
		t.Fatalf("expected ErrStagnation, got %v", err)
	}
	if resp.Result.Outcome != domain.OutcomeIncomplete || resp.Result.Rounds != 20 {
		t.Fatalf("unexpected result %+v", resp.Result)
	}
	if len(ledger.saved) != 1 || ledger.saved[0].Outcome != domain.OutcomeIncomplete {
		t.Fatalf("expected stagnated run to be recorded, got %+v", ledger.saved)
	}
}

func TestSimulateDoesNotRecordCancelledRun(t *testing.T) {
	ledger := &stubLedger{}
	svc := newTestService(ledger, nil)
	path := writeNetwork(t, "A,B\nB,C\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := svc.Simulate(ctx, SimulateRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 1, PatientZero: "A"},
		Record:  true,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if resp.Result.Rounds != 0 || resp.Result.InfectedCount != 1 {
		t.Fatalf("expected initial state, got %+v", resp.Result)
	}
	if len(ledger.saved) != 0 {
		t.Fatalf("expected cancelled run not to be recorded")
	}
}

func TestSimulateRejectsBeforeRoundZero(t *testing.T) {
	ledger := &stubLedger{}
	svc := newTestService(ledger, nil)
	path := writeNetwork(t, "A,B\n")

	_, err := svc.Simulate(context.Background(), SimulateRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 0.5, PatientZero: "Z"},
		Record:  true,
	})
	if !errors.Is(err, domain.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}

	_, err = svc.Simulate(context.Background(), SimulateRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 1.5, PatientZero: "A"},
	})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(ledger.saved) != 0 {
		t.Fatalf("expected nothing recorded")
	}
}

func TestSimulateRecordWithoutLedger(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.Simulate(context.Background(), SimulateRequest{
		Network: NetworkRef{Edges: []domain.Edge{{Source: "A", Target: "B"}}},
		Config:  simulation.DefaultConfig(),
		Record:  true,
	})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSimulateReportsProgress(t *testing.T) {
	svc := newTestService(nil, nil)
	var rounds []int
	reporter := simulation.ReporterFunc(func(p domain.Progress) { rounds = append(rounds, p.Round) })

	resp, err := svc.Simulate(context.Background(), SimulateRequest{
		Network:  NetworkRef{Edges: []domain.Edge{{Source: "A", Target: "B"}}},
		Config:   simulation.Config{InfectionProb: 1, PatientZero: "A"},
		Seed:     1,
		Reporter: reporter,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Result.Rounds != 1 || len(rounds) != 1 || rounds[0] != 1 {
		t.Fatalf("expected one reported round, got %v (%+v)", rounds, resp.Result)
	}
	if resp.Run.Network != "inline" {
		t.Fatalf("expected inline network label, got %q", resp.Run.Network)
	}
}

func TestLoadNetwork(t *testing.T) {
	edges := stubEdges{edges: map[string][]domain.Edge{
		"lab": {{Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
	}}
	svc := newTestService(nil, edges)

	g, err := svc.LoadNetwork(context.Background(), ParseNetworkRef("neo4j:lab"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("unexpected graph %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}

	if _, err := svc.LoadNetwork(context.Background(), ParseNetworkRef("neo4j:ghost")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := newTestService(nil, nil).LoadNetwork(context.Background(), ParseNetworkRef("neo4j:lab")); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration without a graph database, got %v", err)
	}
	if _, err := svc.LoadNetwork(context.Background(), NetworkRef{}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for empty ref, got %v", err)
	}
	if _, err := svc.LoadNetwork(context.Background(), NetworkRef{Edges: []domain.Edge{{Source: "A"}}}); !errors.Is(err, domain.ErrInputFormat) {
		t.Fatalf("expected ErrInputFormat for inline edge with empty target, got %v", err)
	}
	if _, err := svc.LoadNetwork(context.Background(), ParseNetworkRef(filepath.Join(t.TempDir(), "absent.csv"))); !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO for missing file, got %v", err)
	}
}

func TestParseNetworkRef(t *testing.T) {
	if ref := ParseNetworkRef(" neo4j:lab "); ref.Stored != "lab" || ref.Path != "" || ref.String() != "neo4j:lab" {
		t.Fatalf("unexpected stored ref %+v", ref)
	}
	if ref := ParseNetworkRef("graphs/g.csv"); ref.Path != "graphs/g.csv" || ref.Stored != "" {
		t.Fatalf("unexpected path ref %+v", ref)
	}
}

func TestTrials(t *testing.T) {
	svc := newTestService(nil, nil)
	path := writeNetwork(t, "A,B\nB,C\nC,D\nD,A\n")

	summary, err := svc.Trials(context.Background(), TrialsRequest{
		Network: ParseNetworkRef(path),
		Config:  simulation.Config{InfectionProb: 0.5, InoculationProb: 0.5, PatientZero: "A", Inoculator: "C"},
		Options: simulation.TrialOptions{Trials: 20, Workers: 3},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Trials != 20 || summary.BaseSeed != 1234 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	total := 0
	for _, n := range summary.Outcomes {
		total += n
	}
	if total != 20 {
		t.Fatalf("expected 20 outcomes, got %d", total)
	}
}

func TestRunsRequireLedger(t *testing.T) {
	svc := newTestService(nil, nil)
	if _, err := svc.ListRuns(context.Background(), 10); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := svc.GetRun(context.Background(), "x"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	ledger := &stubLedger{saved: []domain.RunRecord{{ID: "r1"}}}
	svc = newTestService(ledger, nil)
	rec, err := svc.GetRun(context.Background(), "r1")
	if err != nil || rec.ID != "r1" {
		t.Fatalf("expected r1, got %+v (%v)", rec, err)
	}
}
