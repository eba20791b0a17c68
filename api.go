package pipecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/pipecache/codec"
	pr "github.com/unkn0wn-root/pipecache/provider"
)

// Policy is implemented by request types that carry caching directives.
// Both behaviors read the same interface; the read-through path uses all
// four methods, the invalidation path ignores SlidingExpiration.
type Policy interface {
	// CacheKey identifies the cached response for this request.
	// Empty disables single-key handling on the invalidation path.
	CacheKey() string

	// CacheGroupKeys names the groups this request participates in.
	// Nil or empty means the request is group-less.
	CacheGroupKeys() []string

	// SlidingExpiration is the requested entry lifetime.
	// Zero means "use the configured default".
	SlidingExpiration() time.Duration

	// BypassCache disables every store interaction for this request.
	BypassCache() bool
}

// Next is the rest of the request pipeline. Behaviors wrap it without
// knowing what it does.
type Next[Res any] func(ctx context.Context) (Res, error)

// SetCostFunc computes the admission cost passed to the provider on Set.
// groupRecord is true for group membership/expiration records.
type SetCostFunc func(key string, raw []byte, groupRecord bool) int64

// Options tune both behaviors. Provider is always required; Codec is
// required only for the read-through behavior (the invalidator never
// decodes responses).
type Options[Res any] struct {
	Provider pr.Provider
	Codec    c.Codec[Res]

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// DefaultExpiration applies when a request does not carry its own
	// sliding expiration. 0 => 30m. Negative is a configuration error.
	DefaultExpiration time.Duration

	ComputeSetCost SetCostFunc // nil => constant 1

	// Locks is the mutual-exclusion table the invalidator uses per group.
	// nil => a process-wide table shared by every behavior in this
	// process, which is what you want unless you deliberately partition
	// groups across tables.
	Locks *LockTable

	Disabled bool // kill switch: behaviors become pass-through
}

// NewReadThrough builds the read-through caching behavior for requests of
// type Req producing responses of type Res.
func NewReadThrough[Req Policy, Res any](opts Options[Res]) (*ReadThrough[Req, Res], error) {
	b, err := newBehavior(opts, true)
	if err != nil {
		return nil, err
	}
	return &ReadThrough[Req, Res]{behavior: b}, nil
}

// NewInvalidator builds the invalidation behavior for requests of type Req
// producing responses of type Res.
func NewInvalidator[Req Policy, Res any](opts Options[Res]) (*Invalidator[Req, Res], error) {
	b, err := newBehavior(opts, false)
	if err != nil {
		return nil, err
	}
	return &Invalidator[Req, Res]{behavior: b}, nil
}
