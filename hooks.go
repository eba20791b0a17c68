package pipecache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the behaviors call them
// on hot paths. Wrap with hooks/async to decouple a slow sink.
type Hooks interface {
	// A cached entry was present but could not be decoded; the request
	// proceeded as a miss and the entry will be overwritten.
	EntryDecodeMiss(key string)

	// A group membership record could not be decoded. On the write path
	// the membership is rebuilt; on the invalidation path only the group
	// records themselves are removed.
	GroupDecodeError(group string)

	// Provider returned ok=false on Set (backpressure/eviction).
	// groupRecord is true for membership/expiration records.
	ProviderSetRejected(key string, groupRecord bool)

	// A group was invalidated: members is the number of member entries
	// in the fan-out (group records excluded).
	GroupInvalidated(group string, members int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) EntryDecodeMiss(string)           {}
func (NopHooks) GroupDecodeError(string)          {}
func (NopHooks) ProviderSetRejected(string, bool) {}
func (NopHooks) GroupInvalidated(string, int)     {}
