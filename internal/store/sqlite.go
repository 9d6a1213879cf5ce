// Package store keeps the ledger of finished simulation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vanshika/wormsim/internal/domain"
)

// MemoryPath opens a private in-memory ledger.
const MemoryPath = ":memory:"

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit bounds List when no positive limit is given.
const DefaultListLimit = 50

// RunStore persists run summaries.
type RunStore struct {
	db   *sql.DB
	path string
}

// Open creates or opens the ledger at path and migrates its schema.
func Open(ctx context.Context, path string) (*RunStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.Wrap(domain.ErrConfiguration, "store path is required")
	}

	dsn := path
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "create store directory")
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "open database")
	}
	// SQLite works best with a single writer; an in-memory database also
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, domain.Classify(domain.ErrIO, err)
	}
	return &RunStore{db: db, path: path}, nil
}

// Path returns the location the store was opened with.
func (s *RunStore) Path() string {
	return s.path
}

// Save inserts rec, assigning an ID and creation time when missing.
// The stored record is returned.
func (s *RunStore) Save(ctx context.Context, rec domain.RunRecord) (domain.RunRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, network, mode, infection_prob, inoculation_prob,
			patient_zero, inoculator, seed, rounds, outcome,
			node_count, infected_count, inoculated_count, duration_ns, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Network, string(rec.Mode), rec.InfectionProb, rec.InoculationProb,
		rec.PatientZero, nullString(rec.Inoculator), rec.Seed, rec.Rounds, string(rec.Outcome),
		rec.NodeCount, rec.InfectedCount, rec.InoculatedCount, int64(rec.Duration),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.RunRecord{}, errors.Wrapf(domain.Classify(domain.ErrIO, err), "save run %s", rec.ID)
	}
	return rec, nil
}

// Get returns the run with the given ID or domain.ErrNotFound.
func (s *RunStore) Get(ctx context.Context, id string) (domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return domain.RunRecord{}, errors.Wrapf(domain.ErrNotFound, "run %q", id)
	}
	if err != nil {
		return domain.RunRecord{}, errors.Wrapf(domain.Classify(domain.ErrIO, err), "get run %s", id)
	}
	return rec, nil
}

// List returns up to limit runs, newest first.
func (s *RunStore) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "list runs")
	}
	defer rows.Close()

	var out []domain.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "scan run")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "list runs")
	}
	return out, nil
}

// Ping verifies the database is reachable.
func (s *RunStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}

const selectRuns = `
	SELECT id, network, mode, infection_prob, inoculation_prob,
		patient_zero, inoculator, seed, rounds, outcome,
		node_count, infected_count, inoculated_count, duration_ns, created_at
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (domain.RunRecord, error) {
	var (
		rec        domain.RunRecord
		mode       string
		outcome    string
		inoculator sql.NullString
		durationNs int64
		createdAt  string
	)
	err := row.Scan(
		&rec.ID, &rec.Network, &mode, &rec.InfectionProb, &rec.InoculationProb,
		&rec.PatientZero, &inoculator, &rec.Seed, &rec.Rounds, &outcome,
		&rec.NodeCount, &rec.InfectedCount, &rec.InoculatedCount, &durationNs, &createdAt,
	)
	if err != nil {
		return domain.RunRecord{}, err
	}

	rec.Mode = domain.Mode(mode)
	rec.Outcome = domain.Outcome(outcome)
	rec.Inoculator = inoculator.String
	rec.Duration = time.Duration(durationNs)
	rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.RunRecord{}, errors.Wrapf(err, "parse created_at %q", createdAt)
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
