// Package pipecache implements read-through caching and group invalidation
// as request-pipeline behaviors. A request declares its caching directives
// through the Policy interface; ReadThrough serves it from a pluggable byte
// store or populates the store on a miss, and Invalidator removes a single
// key and/or every key belonging to named groups after a mutating request
// completes.
//
// Components:
//   - Provider: byte store with TTL (e.g. Redis, Ristretto, BigCache).
//   - Codec[Res]: (de)serializes the response <-> []byte.
//   - LockTable: per-group mutual exclusion for invalidations. Process-wide
//     by default; it is not a distributed lock.
//
// Group records:
//
//	<group>                   - framed set of member cache keys
//	<group>SlidingExpiration  - framed integer seconds
//
// The recorded group expiration is the running maximum of every member
// write's expiration, so the group records outlive their longest-lived
// member by construction. Invalidating a group removes both records and
// every member visible in the membership snapshot, fanned out concurrently
// and awaited as one batch.
//
// Usage:
//
//	cacheBehavior, _ := pipecache.NewReadThrough[ListOrders, []Order](pipecache.Options[[]Order]{
//	    Provider: prov,
//	    Codec:    codec.Msgpack[[]Order]{},
//	    Logger:   zaplog.Logger{L: zl},
//	})
//	resp, err := cacheBehavior.Handle(ctx, req, func(ctx context.Context) ([]Order, error) {
//	    return repo.ListOrders(ctx, req)
//	})
package pipecache
