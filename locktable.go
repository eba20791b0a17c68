package pipecache

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LockTable serializes invalidations per group name. Entries are created
// lazily on first reference and live for the lifetime of the table: the
// table never evicts, so its footprint is bounded only by the number of
// distinct group names it has seen. Eviction is a possible future
// extension, not a correctness requirement.
//
// The zero value is ready to use and safe for concurrent use.
type LockTable struct {
	sems sync.Map // group name -> *semaphore.Weighted(1)
}

// sharedLocks is the process-wide table behaviors fall back to when
// Options.Locks is nil. Invalidators in one process must share a table for
// the per-group exclusion guarantee to hold.
var sharedLocks = NewLockTable()

func NewLockTable() *LockTable { return &LockTable{} }

// Acquire takes the lock for name, creating it on first use. Two callers
// never obtain distinct locks for the same name. Blocks until the lock is
// free or ctx is done; on success the returned func releases the lock and
// must be called exactly once.
func (t *LockTable) Acquire(ctx context.Context, name string) (release func(), err error) {
	sem := t.get(name)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

func (t *LockTable) get(name string) *semaphore.Weighted {
	if v, ok := t.sems.Load(name); ok {
		return v.(*semaphore.Weighted)
	}
	v, _ := t.sems.LoadOrStore(name, semaphore.NewWeighted(1))
	return v.(*semaphore.Weighted)
}
