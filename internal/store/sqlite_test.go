package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanshika/wormsim/internal/domain"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger", "runs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() domain.RunRecord {
	return domain.RunRecord{
		Network:         "graph.csv",
		Mode:            domain.ModeCompetitive,
		InfectionProb:   0.5,
		InoculationProb: 0.75,
		PatientZero:     "A",
		Inoculator:      "C",
		Seed:            42,
		Rounds:          7,
		Outcome:         domain.OutcomeEradicated,
		NodeCount:       10,
		InfectedCount:   0,
		InoculatedCount: 10,
		Duration:        1500 * time.Microsecond,
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "runs.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file, got %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, sampleRun())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", saved)
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", saved.CreatedAt, got.CreatedAt)
	}
	got.CreatedAt = saved.CreatedAt
	if got != saved {
		t.Fatalf("expected %+v, got %+v", saved, got)
	}
}

func TestSaveSimpleRunWithoutInoculator(t *testing.T) {
	s := openTestStore(t)
	rec := sampleRun()
	rec.Mode = domain.ModeSimple
	rec.Inoculator = ""
	rec.Outcome = domain.OutcomeFullyInfected

	saved, err := s.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Get(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Inoculator != "" || got.Mode != domain.ModeSimple {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		rec := sampleRun()
		rec.ID = []string{"first", "second", "third"}[i]
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "third" || runs[1].ID != "second" {
		t.Fatalf("unexpected order %+v", runs)
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestDuplicateIDFails(t *testing.T) {
	s := openTestStore(t)
	rec := sampleRun()
	rec.ID = "dup"
	if _, err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Save(context.Background(), rec); !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO on duplicate id, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := Open(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Save(context.Background(), sampleRun()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	runs, err := s.List(context.Background(), 10)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d (%v)", len(runs), err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	saved, err := s.Save(ctx, sampleRun())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, saved.ID); err != nil {
		t.Fatalf("expected run to survive reopen, got %v", err)
	}
}
