package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database file.
//
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore returns a store using the database at path. Init must be
// called before use.
//
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	sweep       TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	letter      TEXT NOT NULL,
	deviation   REAL NOT NULL,
	cells       INTEGER NOT NULL,
	inputs      INTEGER NOT NULL,
	outputs     INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	dir         TEXT NOT NULL,
	netlist     TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL,
	started     INTEGER NOT NULL,
	duration    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_sweep ON runs (sweep, started, seq);
`

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return errors.Wrap(err, "open run ledger")
	}
	// single writer
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, "open run ledger")
	}
	if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return errors.Wrap(err, "open run ledger")
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return errors.Wrap(err, "create run ledger schema")
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, r Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, sweep, seq, letter, deviation, cells, inputs, outputs, seed,
			dir, netlist, status, error, started, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			netlist = excluded.netlist,
			inputs = excluded.inputs,
			duration = excluded.duration
	`, r.ID, r.Sweep, r.Seq, r.Letter, r.Deviation, r.Cells, r.Inputs, r.Outputs, int64(r.Seed),
		r.Dir, r.Netlist, string(r.Status), r.Error, r.Started.UnixNano(), int64(r.Duration))
	return errors.Wrap(err, "save run")
}

const selectRun = `SELECT id, sweep, seq, letter, deviation, cells, inputs, outputs, seed,
	dir, netlist, status, error, started, duration FROM runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r             Run
		seed, st, dur int64
		status        string
	)
	err := sc.Scan(&r.ID, &r.Sweep, &r.Seq, &r.Letter, &r.Deviation, &r.Cells, &r.Inputs, &r.Outputs, &seed,
		&r.Dir, &r.Netlist, &status, &r.Error, &st, &dur)
	if err != nil {
		return Run{}, err
	}
	r.Seed = uint64(seed)
	r.Status = Status(status)
	r.Started = time.Unix(0, st)
	r.Duration = time.Duration(dur)
	return r, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}
	r, err := scanRun(db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return Run{}, false, nil
		}
		return Run{}, false, errors.Wrapf(err, "get run %s", id)
	}
	return r, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, sweep string) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	q, args := selectRun+` ORDER BY started, seq`, []interface{}(nil)
	if sweep != "" {
		q, args = selectRun+` WHERE sweep = ? ORDER BY started, seq`, []interface{}{sweep}
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list runs")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "list runs")
}

// Close closes the database.
//
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
