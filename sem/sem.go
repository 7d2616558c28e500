// Package sem provides a named counting semaphore with classic P/V
// semantics, built on golang.org/x/sync/semaphore.Weighted. Grounded on
// biscuit's Sema_t (a counting semaphore used for the fault semaphore,
// per-fault wait semaphore, and pager startup rendezvous in spec §4.E/§4.F),
// reimplemented over the x/sync primitive rather than a hand-rolled
// channel-and-mutex counter.
package sem

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"
)

// / maxUnits bounds how many outstanding posts a Counting_t can ever hold.
// / It only needs to exceed any realistic fault-queue depth; MAX_PROC-scale
// / systems never approach it.
const maxUnits = math.MaxInt32

// / Counting_t is a named counting semaphore: P (Down) blocks until a unit
// / is available, V (Up) makes one available. semaphore.Weighted has no
// / classic P/V API of its own, so Counting_t reserves all but `initial`
// / units up front, leaving exactly `initial` acquirable — Down/Up then
// / acquire/release one unit at a time.
type Counting_t struct {
	name string
	w    *semaphore.Weighted
}

// / New creates a named semaphore with the given initial count.
func New(name string, initial int) *Counting_t {
	w := semaphore.NewWeighted(maxUnits)
	if initial < maxUnits {
		// Reserve everything above `initial` so only `initial` units are
		// acquirable until a matching Up releases more. This acquire
		// cannot block: a fresh Weighted(maxUnits) has its full capacity
		// free.
		_ = w.Acquire(context.Background(), int64(maxUnits-initial))
	}
	return &Counting_t{name: name, w: w}
}

// / Name returns the semaphore's diagnostic name.
func (c *Counting_t) Name() string { return c.name }

// / Down (P) blocks until a unit is available, then consumes it.
func (c *Counting_t) Down(ctx context.Context) error {
	return c.w.Acquire(ctx, 1)
}

// / Up (V) makes one unit available, waking a blocked Down if any.
func (c *Counting_t) Up() {
	c.w.Release(1)
}
