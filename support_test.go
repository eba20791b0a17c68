package pipecache

import (
	"context"
	"sync"
	"testing"
	"time"

	c "github.com/unkn0wn-root/pipecache/codec"
	pr "github.com/unkn0wn-root/pipecache/provider"
)

type memEntry struct {
	v   []byte
	ttl time.Duration // ttl recorded at Set time, for assertions
}

// memProvider is an in-memory Provider double. Counters let tests assert
// "no store interaction occurred" for bypass paths.
type memProvider struct {
	mu sync.Mutex
	m  map[string]memEntry

	gets, sets, removes int

	getErr    error
	setErr    error
	removeErr map[string]error // per-key Remove failures
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets++
	if p.setErr != nil {
		return false, p.setErr
	}
	p.m[key] = memEntry{v: value, ttl: ttl}
	return true, nil
}

func (p *memProvider) Remove(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removes++
	if err := p.removeErr[key]; err != nil {
		return err
	}
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(_ context.Context) error { return nil }

func (p *memProvider) has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[key]
	return ok
}

func (p *memProvider) raw(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	return e.v, ok
}

func (p *memProvider) ttlOf(key string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m[key].ttl
}

func (p *memProvider) put(key string, v []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[key] = memEntry{v: v}
}

func (p *memProvider) ops() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gets + p.sets + p.removes
}

type order struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

// testReq carries caching directives the way a pipeline request would.
type testReq struct {
	key    string
	groups []string
	exp    time.Duration
	bypass bool
}

func (r testReq) CacheKey() string                 { return r.key }
func (r testReq) CacheGroupKeys() []string         { return r.groups }
func (r testReq) SlidingExpiration() time.Duration { return r.exp }
func (r testReq) BypassCache() bool                { return r.bypass }

func newTestReadThrough(t *testing.T, p pr.Provider, mod func(*Options[order])) *ReadThrough[testReq, order] {
	t.Helper()
	opts := Options[order]{
		Provider: p,
		Codec:    c.JSON[order]{},
	}
	if mod != nil {
		mod(&opts)
	}
	rt, err := NewReadThrough[testReq, order](opts)
	if err != nil {
		t.Fatalf("NewReadThrough: %v", err)
	}
	return rt
}

func newTestInvalidator(t *testing.T, p pr.Provider, mod func(*Options[order])) *Invalidator[testReq, order] {
	t.Helper()
	opts := Options[order]{Provider: p}
	if mod != nil {
		mod(&opts)
	}
	inv, err := NewInvalidator[testReq, order](opts)
	if err != nil {
		t.Fatalf("NewInvalidator: %v", err)
	}
	return inv
}

// respond builds a next that returns v and counts invocations.
func respond(v order, calls *int) Next[order] {
	return func(context.Context) (order, error) {
		*calls++
		return v, nil
	}
}

// seed caches v under key in the given groups via the write-through path.
func seed(t *testing.T, rt *ReadThrough[testReq, order], key string, groups []string, exp time.Duration, v order) {
	t.Helper()
	calls := 0
	got, err := rt.Handle(context.Background(), testReq{key: key, groups: groups, exp: exp}, respond(v, &calls))
	if err != nil {
		t.Fatalf("seed %q: %v", key, err)
	}
	if got != v {
		t.Fatalf("seed %q: got %+v want %+v", key, got, v)
	}
}
