package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/bio-saliency/gazesim/sim"
)

// ErrNotFound is returned when a run or cohort does not exist.
var ErrNotFound = errors.New("not found")

// Run is one stored generation run.
type Run struct {
	ID        string
	Seed      int64
	Config    string
	CreatedAt time.Time
}

// createdAtLayout is fixed width so that ORDER BY created_at sorts by time.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed cohort store. Safe for concurrent use; writes are
// serialised through a single connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records a new run and returns its ID. config is an opaque
// description of how the run was produced (typically the experiment YAML).
func (s *Store) CreateRun(ctx context.Context, seed int64, config string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, config, created_at) VALUES (?, ?, ?, ?)`,
		id, seed, config, s.now().UTC().Format(createdAtLayout))
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, seed, config, created_at FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, seed, config, created_at FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		config  sql.NullString
		created string
	)
	if err := sc.Scan(&r.ID, &r.Seed, &config, &created); err != nil {
		return Run{}, err
	}
	r.Config = config.String
	t, err := time.Parse(createdAtLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	return r, nil
}

// SaveCohort stores every trajectory of c under the run, appending after
// any trajectories already stored for that cohort name.
func (s *Store) SaveCohort(ctx context.Context, runID string, c sim.Cohort) error {
	if c.Name == "" {
		return fmt.Errorf("cohort name must not be empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	var offset int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(idx) + 1, 0) FROM trajectories WHERE run_id = ? AND cohort = ?`,
		runID, c.Name).Scan(&offset); err != nil {
		return fmt.Errorf("failed to read cohort size: %w", err)
	}

	trStmt, err := tx.PrepareContext(ctx, `INSERT INTO trajectories (run_id, cohort, idx, length) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trajectory insert: %w", err)
	}
	defer trStmt.Close()
	obsStmt, err := tx.PrepareContext(ctx, `INSERT INTO observations (run_id, cohort, traj_idx, step, x, y) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare observation insert: %w", err)
	}
	defer obsStmt.Close()

	for i, tr := range c.Trajectories {
		idx := offset + i
		if _, err := trStmt.ExecContext(ctx, runID, c.Name, idx, len(tr)); err != nil {
			return fmt.Errorf("trajectory %d: %w", idx, err)
		}
		for step, p := range tr {
			if _, err := obsStmt.ExecContext(ctx, runID, c.Name, idx, step, p.X, p.Y); err != nil {
				return fmt.Errorf("trajectory %d step %d: %w", idx, step, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cohort %q: %w", c.Name, err)
	}
	logrus.Debugf("store: saved %d trajectories of cohort %s to run %s", c.Len(), c.Name, runID)
	return nil
}

// LoadCohort reads a stored cohort in trajectory order.
func (s *Store) LoadCohort(ctx context.Context, runID, name string) (sim.Cohort, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, length FROM trajectories WHERE run_id = ? AND cohort = ? ORDER BY idx`, runID, name)
	if err != nil {
		return sim.Cohort{}, fmt.Errorf("failed to query trajectories: %w", err)
	}
	var lengths []int
	for rows.Next() {
		var idx, n int
		if err := rows.Scan(&idx, &n); err != nil {
			rows.Close()
			return sim.Cohort{}, err
		}
		if idx != len(lengths) {
			rows.Close()
			return sim.Cohort{}, fmt.Errorf("cohort %q: trajectory index gap at %d", name, idx)
		}
		lengths = append(lengths, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return sim.Cohort{}, err
	}
	if len(lengths) == 0 {
		return sim.Cohort{}, fmt.Errorf("cohort %q in run %s: %w", name, runID, ErrNotFound)
	}

	obs, err := s.db.QueryContext(ctx,
		`SELECT x, y FROM observations WHERE run_id = ? AND cohort = ? ORDER BY traj_idx, step`, runID, name)
	if err != nil {
		return sim.Cohort{}, fmt.Errorf("failed to query observations: %w", err)
	}
	defer obs.Close()
	var points []sim.Point
	for obs.Next() {
		var p sim.Point
		if err := obs.Scan(&p.X, &p.Y); err != nil {
			return sim.Cohort{}, err
		}
		points = append(points, p)
	}
	if err := obs.Err(); err != nil {
		return sim.Cohort{}, err
	}

	trs, ok := sim.Split(points, lengths)
	if !ok {
		return sim.Cohort{}, fmt.Errorf("cohort %q: %d observations do not match stored lengths", name, len(points))
	}
	return sim.Cohort{Name: name, Trajectories: trs}, nil
}

// ListCohorts returns the cohort names stored under a run, sorted.
func (s *Store) ListCohorts(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT cohort FROM trajectories WHERE run_id = ? ORDER BY cohort`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cohorts: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DeleteRun removes a run and everything stored under it.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}
