// Package limits holds the subsystem's fixed resource ceilings and a
// small atomic counter type for tracking consumption against them.
// Grounded on biscuit's limits.Sysatomic_t (an atomically
// taken-and-given resource counter) and Syslimit_t (the struct of
// configured system-wide ceilings), narrowed to the two ceilings this
// subsystem actually needs.
package limits

import "sync/atomic"

// / MaxProc bounds the fault queue's capacity (spec §4.D): at most one
// / outstanding fault per process.
const MaxProc = 1024

// / KMax bounds the pager pool size K a caller may request at init
// / (spec §4.E).
const KMax = 64

// / Bounded_t is a resource counter that can be taken from and given back
// / atomically, mirroring biscuit's Sysatomic_t Taken/Given pair.
type Bounded_t struct {
	remaining atomic.Int64
}

// / NewBounded returns a counter starting at capacity.
func NewBounded(capacity int) *Bounded_t {
	b := &Bounded_t{}
	b.remaining.Store(int64(capacity))
	return b
}

// / Take decrements the counter by one, returning false without
// / decrementing if the counter would go negative.
func (b *Bounded_t) Take() bool {
	if b.remaining.Add(-1) >= 0 {
		return true
	}
	b.remaining.Add(1)
	return false
}

// / Give increments the counter by one.
func (b *Bounded_t) Give() {
	b.remaining.Add(1)
}

// / Remaining reports the current count.
func (b *Bounded_t) Remaining() int {
	return int(b.remaining.Load())
}
