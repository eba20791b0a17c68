package pipecache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestLockTableMutualExclusion: a counter guarded only by the table stays
// consistent under heavy concurrent acquire/release.
func TestLockTableMutualExclusion(t *testing.T) {
	ctx := context.Background()
	table := NewLockTable()

	const workers = 64
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			release, err := table.Acquire(ctx, "users")
			if err != nil {
				t.Error(err)
				return
			}
			counter++
			release()
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d (lost updates)", counter, workers)
	}
}

// TestLockTableSingleHandlePerName: concurrent first references to one name
// must converge on one lock. If two callers got distinct locks both would
// acquire immediately and the exclusion test above would flake; this checks
// it directly via blocking behavior.
func TestLockTableSingleHandlePerName(t *testing.T) {
	table := NewLockTable()

	release, err := table.Acquire(context.Background(), "g")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := table.Acquire(ctx, "g"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Acquire err = %v, want deadline exceeded", err)
	}

	release()
	release2, err := table.Acquire(context.Background(), "g")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}

// TestLockTableIndependentNames: different groups never block each other.
func TestLockTableIndependentNames(t *testing.T) {
	table := NewLockTable()

	releaseA, err := table.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := table.Acquire(ctx, "b")
	if err != nil {
		t.Fatalf("Acquire b blocked by a: %v", err)
	}
	releaseB()
}
