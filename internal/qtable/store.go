// Package qtable stores state values keyed by state key. Every write is
// fanned out to the four team perspectives of the key.
package qtable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownDriver = errors.New("unknown value table driver")
	ErrClosed        = errors.New("value table is closed")
)

// Driver names accepted by Open
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store is the persistence behind a Table. PutMany must apply all rows or
// none.
type Store interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	PutMany(ctx context.Context, rows map[string]float64) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// Options selects and tunes a store
type Options struct {
	Driver      string
	Path        string
	BusyRetries uint
	BusyDelay   time.Duration
	// BusyTimeout is how long SQLite itself waits on a lock before a
	// commit fails as busy and is retried. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// Open creates the store named by opts.Driver
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
