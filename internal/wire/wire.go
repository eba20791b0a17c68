// Package wire frames the two group records pipecache keeps in the backing
// store: the membership set stored under the group key, and the
// integer-seconds expiration stored under the derived expiration key.
// Framing is independent of the caller's response codec so that an
// invalidator can always read groups written under any codec, and so that
// corruption is detected deterministically.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"
)

const (
	version     byte = 1
	kindMembers byte = 1
	kindSeconds byte = 2
)

var (
	ErrCorrupt = errors.New("pipecache: corrupt group record")
	magic4     = [...]byte{'P', 'G', 'R', 'P'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// MemberSet is the set of cache keys currently belonging to a group.
type MemberSet map[string]struct{}

func (s MemberSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s MemberSet) Add(key string) { s[key] = struct{}{} }

// Keys returns the members in sorted order, for deterministic encoding.
func (s MemberSet) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Members: magic(4) | ver(1) | kind(1=members) | n(u32 be)
//          keyLen(u16 be) | key(keyLen) * n
func EncodeMembers(s MemberSet) []byte {
	keys := s.Keys()

	total := 4 + 1 + 1 + 4
	for _, k := range keys {
		total += 2 + len(k)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindMembers)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint32(u4[:], uint32(len(keys)))
	buf.Write(u4[:])

	for _, k := range keys {
		if l := len(k); l == 0 || l > 0xFFFF {
			panic("pipecache: invalid member key length")
		}
		binary.BigEndian.PutUint16(u2[:], uint16(len(k)))
		buf.Write(u2[:])
		buf.WriteString(k)
	}

	return buf.Bytes()
}

func DecodeMembers(b []byte) (MemberSet, error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindMembers {
		return nil, ErrCorrupt
	}

	off := 6

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 {
		return nil, ErrCorrupt
	}

	// cap prealloc: n is attacker-controllable in a shared store
	capHint := n
	if capHint > 1024 {
		capHint = 1024
	}
	set := make(MemberSet, capHint)
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return nil, ErrCorrupt
		}
		klen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if klen <= 0 || klen > len(b)-off {
			return nil, ErrCorrupt
		}
		set[string(b[off:off+klen])] = struct{}{}
		off += klen
	}
	if off != len(b) {
		return nil, ErrCorrupt
	}
	return set, nil
}

// Seconds: magic(4) | ver(1) | kind(2=seconds) | secs(u64 be)
func EncodeSeconds(secs uint64) []byte {
	out := make([]byte, 0, 4+1+1+8)
	out = append(out, magic4[:]...)
	out = append(out, version, kindSeconds)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], secs)
	return append(out, u8[:]...)
}

func DecodeSeconds(b []byte) (uint64, error) {
	const want = 4 + 1 + 1 + 8
	if len(b) != want || !hasMagic(b) || b[4] != version || b[5] != kindSeconds {
		return 0, ErrCorrupt
	}
	return binary.BigEndian.Uint64(b[6:]), nil
}
