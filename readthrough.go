package pipecache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/pipecache/internal/wire"
)

// ReadThrough answers cache-eligible requests from the store when possible
// and populates it otherwise, maintaining group membership and the shared
// group expiration as it writes.
type ReadThrough[Req Policy, Res any] struct {
	behavior[Res]
}

// Handle serves req from the cache on a hit; on a miss it calls next,
// caches the response under req.CacheKey(), and records the key in each of
// req.CacheGroupKeys().
//
// Read failures (backend error or undecodable entry) never propagate: the
// request proceeds as a miss. Write failures do propagate, but the response
// obtained from next is still returned alongside the error, so callers see
// correct data even when caching it failed.
func (h *ReadThrough[Req, Res]) Handle(ctx context.Context, req Req, next Next[Res]) (Res, error) {
	if !h.enabled || req.BypassCache() {
		return next(ctx)
	}
	if err := ctx.Err(); err != nil {
		var zero Res
		return zero, err
	}

	key := req.CacheKey()
	if raw, ok, err := h.provider.Get(ctx, key); err != nil {
		h.log.Warn("cache read failed, treating as miss", Fields{"key": key, "err": err})
	} else if ok {
		v, derr := h.codec.Decode(raw)
		if derr == nil {
			return v, nil
		}
		// corrupted entry must never abort the caller; the write below
		// replaces it with a valid one
		h.log.Warn("cached entry undecodable, treating as miss", Fields{"key": key, "err": derr})
		h.hooks.EntryDecodeMiss(key)
	}

	res, err := next(ctx)
	if err != nil {
		return res, err
	}

	exp := req.SlidingExpiration()
	if exp == 0 {
		exp = h.defaultExp
	}
	if exp <= 0 {
		return res, fmt.Errorf("pipecache: cache %q: %w", key, ErrNoExpiration)
	}

	payload, cerr := h.codec.Encode(res)
	if cerr != nil {
		return res, &WriteThroughError{Key: key, Err: cerr}
	}
	ok, serr := h.provider.Set(ctx, key, payload, h.setCost(key, payload, false), exp)
	if serr != nil {
		return res, &WriteThroughError{Key: key, Err: serr}
	}
	if !ok {
		h.log.Debug("entry rejected by provider (pressure)", Fields{"key": key})
		h.hooks.ProviderSetRejected(key, false)
	}

	for _, group := range req.CacheGroupKeys() {
		if group == "" {
			continue
		}
		if gerr := h.joinGroup(ctx, group, key, exp); gerr != nil {
			return res, &WriteThroughError{Key: key, Group: group, Err: gerr}
		}
	}
	return res, nil
}

// joinGroup records key as a member of group and merges exp into the
// group's shared expiration. Adding an existing member is a no-op: the
// group records are only rewritten when membership actually changes.
func (h *ReadThrough[Req, Res]) joinGroup(ctx context.Context, group, key string, exp time.Duration) error {
	members := wire.MemberSet{}
	if raw, ok, err := h.provider.Get(ctx, group); err != nil {
		return err
	} else if ok {
		m, derr := wire.DecodeMembers(raw)
		if derr != nil {
			h.log.Warn("group membership undecodable, rebuilding", Fields{"group": group, "err": derr})
			h.hooks.GroupDecodeError(group)
		} else {
			members = m
		}
	}
	if members.Contains(key) {
		return nil
	}
	members.Add(key)

	// merge with the recorded group expiration; absent or unreadable
	// records read as zero so the merge can only raise the lifetime
	var current time.Duration
	if raw, ok, err := h.provider.Get(ctx, expirationKey(group)); err != nil {
		return err
	} else if ok {
		if secs, derr := wire.DecodeSeconds(raw); derr == nil {
			current = time.Duration(secs) * time.Second
		}
	}
	merged := exp
	if current > merged {
		merged = current
	}

	raw := wire.EncodeMembers(members)
	if ok, err := h.provider.Set(ctx, group, raw, h.setCost(group, raw, true), merged); err != nil {
		return err
	} else if !ok {
		h.hooks.ProviderSetRejected(group, true)
	}

	ek := expirationKey(group)
	raw = wire.EncodeSeconds(ceilSeconds(merged))
	if ok, err := h.provider.Set(ctx, ek, raw, h.setCost(ek, raw, true), merged); err != nil {
		return err
	} else if !ok {
		h.hooks.ProviderSetRejected(ek, true)
	}

	h.log.Debug("group membership updated", Fields{
		"group":      group,
		"key":        key,
		"members":    len(members),
		"expiration": merged,
	})
	return nil
}

// ceilSeconds rounds up so a nonzero expiration never persists as zero.
func ceilSeconds(d time.Duration) uint64 {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return uint64(secs)
}
