// Package codec holds the pluggable response serializers. Any codec that
// round-trips the response type works; pipecache makes no assumption about
// text vs. binary format.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
