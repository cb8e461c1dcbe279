package service

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kyc-ledger/internal/registry/store"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// Lock contention metrics for monitoring writer behavior
var (
	writerLockWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kyc_writer_lock_wait_seconds",
		Help:    "Time spent waiting to acquire the single-writer lock",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	writerLockAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kyc_writer_lock_acquisitions_total",
		Help: "Total number of single-writer lock acquisitions",
	})
)

// Tx provides the transactional boundary for registry mutations. Every
// state-changing operation runs inside exactly one RunInTx call, which
// reproduces the ledger's serialized-operation model: no two mutations ever
// interleave, and a mutation either applies in full or not at all.
type Tx interface {
	RunInTx(ctx context.Context, fn func(st store.Store) error) error
}

// defaultTxTimeout is the maximum duration for a registry mutation.
const defaultTxTimeout = 5 * time.Second

// SingleWriterTx serializes all mutations through one mutex.
type SingleWriterTx struct {
	mu      sync.Mutex
	store   store.Store
	timeout time.Duration
}

// NewSingleWriterTx wraps a store in a single-writer transaction boundary.
func NewSingleWriterTx(st store.Store) *SingleWriterTx {
	return &SingleWriterTx{store: st, timeout: defaultTxTimeout}
}

func (t *SingleWriterTx) RunInTx(ctx context.Context, fn func(st store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	writerLockWaitDuration.Observe(time.Since(start).Seconds())
	writerLockAcquisitions.Inc()

	// Deadline may have passed while queued behind another writer.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: deadline exceeded while queued")
	}

	// Stores backed by a database scope the mutation to one native
	// transaction; the in-memory store applies its writes in process memory
	// under this lock and needs no rollback machinery.
	if txr, ok := t.store.(store.Transactor); ok {
		return txr.InTx(ctx, fn)
	}
	return fn(t.store)
}
