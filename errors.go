package pipecache

import (
	"errors"
	"fmt"
)

// ErrNoExpiration reports that the resolved sliding expiration for a write
// was not positive. This is a configuration error, not a transient one.
var ErrNoExpiration = errors.New("pipecache: resolved sliding expiration is not positive")

// WriteThroughError reports a failed cache write after the downstream
// handler already produced a valid response. The response is returned
// alongside this error; callers that prefer best-effort caching may use
// the response and only log the error.
type WriteThroughError struct {
	Key   string
	Group string // non-empty when the failure happened updating a group record
	Err   error
}

func (e *WriteThroughError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("pipecache: write-through %q: group %q update failed: %v", e.Key, e.Group, e.Err)
	}
	return fmt.Sprintf("pipecache: write-through %q failed: %v", e.Key, e.Err)
}

func (e *WriteThroughError) Unwrap() error { return e.Err }

// GroupInvalidateError reports a failed group invalidation. Removals that
// completed before the failure stay removed; the group records may still be
// present and a retry is safe (removal is idempotent).
type GroupInvalidateError struct {
	Group string
	Err   error
}

func (e *GroupInvalidateError) Error() string {
	return fmt.Sprintf("pipecache: invalidate group %q: %v", e.Group, e.Err)
}

func (e *GroupInvalidateError) Unwrap() error { return e.Err }
