// Package asynchook decouples a slow hook sink from the cache hot path:
// events are queued and replayed by background workers, and dropped when
// the queue is full.
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/pipecache"
)

type Hooks struct {
	inner pipecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ pipecache.Hooks = (*Hooks)(nil)

func New(inner pipecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) EntryDecodeMiss(key string)    { h.try(func() { h.inner.EntryDecodeMiss(key) }) }
func (h *Hooks) GroupDecodeError(group string) { h.try(func() { h.inner.GroupDecodeError(group) }) }
func (h *Hooks) ProviderSetRejected(key string, groupRecord bool) {
	h.try(func() { h.inner.ProviderSetRejected(key, groupRecord) })
}
func (h *Hooks) GroupInvalidated(group string, members int) {
	h.try(func() { h.inner.GroupInvalidated(group, members) })
}
