// Package sloghooks is a log/slog hook sink with sampling for the noisy
// events and optional key redaction for shared-store deployments.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/pipecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DecodeMissEvery  uint64
	SetRejectedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	decodeMissCtr  atomic.Uint64
	setRejectedCtr atomic.Uint64
}

var _ pipecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) EntryDecodeMiss(key string) {
	if h.l == nil || !sample(h.opts.DecodeMissEvery, &h.decodeMissCtr) {
		return
	}
	h.l.Warn("pipecache.entry_decode_miss", "key", h.redact(key))
}

func (h *Hooks) GroupDecodeError(group string) {
	if h.l == nil {
		return
	}
	h.l.Warn("pipecache.group_decode_error", "group", h.redact(group))
}

func (h *Hooks) ProviderSetRejected(key string, groupRecord bool) {
	if h.l == nil || !sample(h.opts.SetRejectedEvery, &h.setRejectedCtr) {
		return
	}
	h.l.Debug("pipecache.provider_set_rejected",
		"key", h.redact(key),
		"group_record", groupRecord)
}

func (h *Hooks) GroupInvalidated(group string, members int) {
	if h.l == nil {
		return
	}
	h.l.Info("pipecache.group_invalidated",
		"group", h.redact(group),
		"members", members)
}
