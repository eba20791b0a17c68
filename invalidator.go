package pipecache

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/pipecache/internal/wire"
)

// Invalidator removes cache state after a mutating request completes. It
// always calls next first: the invalidation must reflect the state after
// the mutation, so it can never race ahead of the write it follows. Bypass
// is checked after next returns and suppresses every store interaction,
// group fan-out and single-key removal alike.
type Invalidator[Req Policy, Res any] struct {
	behavior[Res]
}

// Handle calls next, then invalidates each group in req.CacheGroupKeys()
// under that group's lock, then removes req.CacheKey() if set. Group
// processing is sequential across groups; the fan-out within one group is
// concurrent and awaited as a batch.
//
// If next fails the mutation did not complete, so no invalidation runs and
// the error is returned as-is. Invalidation failures propagate together
// with the (valid) response from next.
func (h *Invalidator[Req, Res]) Handle(ctx context.Context, req Req, next Next[Res]) (Res, error) {
	if err := ctx.Err(); err != nil {
		var zero Res
		return zero, err
	}

	res, err := next(ctx)
	if err != nil {
		return res, err
	}
	if !h.enabled || req.BypassCache() {
		return res, nil
	}

	for _, group := range req.CacheGroupKeys() {
		if group == "" {
			continue
		}
		if gerr := h.invalidateGroup(ctx, group); gerr != nil {
			return res, gerr
		}
	}

	if key := req.CacheKey(); key != "" {
		if rerr := h.provider.Remove(ctx, key); rerr != nil {
			return res, fmt.Errorf("pipecache: remove %q: %w", key, rerr)
		}
	}
	return res, nil
}

// invalidateGroup holds the group's lock across the membership read and the
// fan-out delete. Keys added to the group after the membership read are not
// part of this invalidation; a racing writer's key either lands in the
// snapshot or survives and re-seeds the group on its next write-through.
func (h *Invalidator[Req, Res]) invalidateGroup(ctx context.Context, group string) error {
	release, err := h.locks.Acquire(ctx, group)
	if err != nil {
		return err
	}
	defer release()

	raw, ok, err := h.provider.Get(ctx, group)
	if err != nil {
		return &GroupInvalidateError{Group: group, Err: err}
	}
	if !ok {
		// group already empty
		return nil
	}

	members, derr := wire.DecodeMembers(raw)
	if derr != nil {
		// snapshot unreadable: remove the group records only; orphaned
		// members expire on their own TTL
		h.log.Warn("group membership undecodable, removing group records only", Fields{"group": group, "err": derr})
		h.hooks.GroupDecodeError(group)
		members = wire.MemberSet{}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, k := range append(members.Keys(), group, expirationKey(group)) {
		k := k
		g.Go(func() error { return h.provider.Remove(gctx, k) })
	}
	if err := g.Wait(); err != nil {
		return &GroupInvalidateError{Group: group, Err: err}
	}

	h.log.Info("cache group invalidated", Fields{"group": group, "members": len(members)})
	h.hooks.GroupInvalidated(group, len(members))
	return nil
}
