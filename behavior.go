package pipecache

import (
	"fmt"
	"time"

	c "github.com/unkn0wn-root/pipecache/codec"
	pr "github.com/unkn0wn-root/pipecache/provider"
)

const defaultExpiration = 30 * time.Minute

// expirationSuffix derives the group expiration record key from a group key.
const expirationSuffix = "SlidingExpiration"

func expirationKey(group string) string { return group + expirationSuffix }

// behavior holds the configuration shared by both pipeline behaviors.
type behavior[Res any] struct {
	provider   pr.Provider
	codec      c.Codec[Res]
	log        Logger
	hooks      Hooks
	defaultExp time.Duration
	setCost    SetCostFunc
	locks      *LockTable
	enabled    bool
}

func newBehavior[Res any](opts Options[Res], needsCodec bool) (behavior[Res], error) {
	var b behavior[Res]
	if opts.Provider == nil {
		return b, fmt.Errorf("pipecache: provider is required")
	}
	if needsCodec && opts.Codec == nil {
		return b, fmt.Errorf("pipecache: codec is required")
	}
	if opts.DefaultExpiration < 0 {
		return b, fmt.Errorf("pipecache: negative default expiration %v", opts.DefaultExpiration)
	}

	b.provider = opts.Provider
	b.codec = opts.Codec
	b.enabled = !opts.Disabled

	// defaults
	b.log = coalesce[Logger](opts.Logger, NopLogger{})
	b.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	b.defaultExp = coalesce[time.Duration](opts.DefaultExpiration, defaultExpiration)

	if opts.ComputeSetCost != nil {
		b.setCost = opts.ComputeSetCost
	} else {
		b.setCost = func(_ string, _ []byte, _ bool) int64 { return 1 }
	}

	if opts.Locks != nil {
		b.locks = opts.Locks
	} else {
		b.locks = sharedLocks
	}
	return b, nil
}

func (b *behavior[Res]) Enabled() bool { return b.enabled }
