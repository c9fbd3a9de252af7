package tape

import "sync/atomic"

// nextTapeID is the global, monotonically increasing tape-id counter
// Id 0 is reserved as the
// sentinel meaning "no tape". Grounded on an equivalent mutex-guarded counter,
// which sketched a per-goroutine id store but never supplied the
// counter; a single atomic integer is the idiomatic Go replacement
// adapted here for a lock-free atomic counter ("Per-thread
// global state").
var nextTapeID uint64

// newTapeID reserves and returns a fresh, never-reused tape id.
func newTapeID() uint64 {
	return atomic.AddUint64(&nextTapeID, 1)
}
