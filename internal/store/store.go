// Package store keeps a ledger of simulation runs.
//
package store

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Status is the state of a run.
//
type Status string

// Run states.
//
const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Run records one simulation of a network design.
//
type Run struct {
	ID    string
	Sweep string // ID of the sweep the run belongs to
	Seq   int    // position of the run in its sweep

	Letter    string
	Deviation float64
	Cells     int
	Inputs    int
	Outputs   int
	Seed      uint64

	Dir     string // run directory
	Netlist string // generated netlist path

	Status   Status
	Error    string
	Started  time.Time
	Duration time.Duration
}

// Store persists runs.
//
type Store interface {
	Init(ctx context.Context) error
	// SaveRun inserts or replaces the run with the same ID.
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	// ListRuns returns the runs of the given sweep, or all runs if sweep is
	// empty, ordered by start time then sequence number.
	ListRuns(ctx context.Context, sweep string) ([]Run, error)
}

// NewStore returns a store of the given kind: "memory" (or empty) or
// "sqlite". The path is only used by the sqlite backend.
//
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if path == "" {
			return nil, errors.New("sqlite path is required")
		}
		return NewSQLiteStore(path), nil
	default:
		return nil, errors.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes s if it implements io.Closer.
//
func CloseIfSupported(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

func sortRuns(rs []Run) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Started.Equal(rs[j].Started) {
			return rs[i].Started.Before(rs[j].Started)
		}
		return rs[i].Seq < rs[j].Seq
	})
}
