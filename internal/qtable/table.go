package qtable

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/statekey"
	"github.com/rs/zerolog"
)

// ValueTable is what the learner reads and writes. Table and Batch both
// implement it.
type ValueTable interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64) error
}

// Table is the shared value table. It is safe for concurrent use.
type Table struct {
	store  Store
	logger zerolog.Logger
}

var (
	_ ValueTable = (*Table)(nil)
	_ ValueTable = (*Batch)(nil)
)

func New(store Store, logger zerolog.Logger) *Table {
	return &Table{
		store:  store,
		logger: logger.With().Str("component", "QTable").Logger(),
	}
}

// Get returns the stored value of key and whether it was present
func (t *Table) Get(ctx context.Context, key string) (float64, bool, error) {
	return t.store.Get(ctx, key)
}

// Set stores value under key as seen by every team
func (t *Table) Set(ctx context.Context, key string, value float64) error {
	rows, err := fanOut(key, value)
	if err != nil {
		return err
	}
	return t.store.PutMany(ctx, rows)
}

// Len returns the number of stored rows
func (t *Table) Len(ctx context.Context) (int, error) {
	return t.store.Len(ctx)
}

// Close closes the underlying store
func (t *Table) Close() error {
	return t.store.Close()
}

// BeginBatch starts collecting writes for a single commit
func (t *Table) BeginBatch() *Batch {
	return &Batch{table: t, pending: make(map[string]float64)}
}

func fanOut(key string, value float64) (map[string]float64, error) {
	variants, err := statekey.Perspectives(key)
	if err != nil {
		return nil, fmt.Errorf("fan out %q: %w", key, err)
	}
	rows := make(map[string]float64, len(variants))
	for _, v := range variants {
		rows[v.Key] = value
	}
	return rows, nil
}

// Batch buffers fanned-out writes until Commit. Reads see the batch's own
// pending writes first. A Batch is safe for concurrent use.
type Batch struct {
	table   *Table
	mu      sync.Mutex
	pending map[string]float64
}

func (b *Batch) Get(ctx context.Context, key string) (float64, bool, error) {
	b.mu.Lock()
	v, ok := b.pending[key]
	b.mu.Unlock()
	if ok {
		return v, true, nil
	}
	return b.table.Get(ctx, key)
}

func (b *Batch) Set(_ context.Context, key string, value float64) error {
	rows, err := fanOut(key, value)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range rows {
		b.pending[k] = v
	}
	return nil
}

// Len returns the number of rows waiting for Commit
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Commit writes every pending row in one store transaction. On failure the
// rows stay pending so Commit can be retried.
func (b *Batch) Commit(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	if err := b.table.store.PutMany(ctx, b.pending); err != nil {
		return fmt.Errorf("commit %d rows: %w", len(b.pending), err)
	}
	b.table.logger.Debug().Int("rows", len(b.pending)).Msg("Batch committed")
	b.pending = make(map[string]float64)
	return nil
}

// Discard drops every pending row
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = make(map[string]float64)
}
