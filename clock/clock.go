// Package clock implements the Replacement Engine (spec §4.C): the clock
// algorithm that advances a hand over physical frames, gives each IN_USE
// frame a second chance by clearing its reference bit, writes a dirty
// victim back to swap, invalidates the victim owner's PTE, and marks the
// victim BUSY for its new occupant. Grounded on original_source/phase3d.c's
// P3SwapOut (a hand that sweeps framesTable, skipping BUSY, clearing
// reference bits on the first pass) generalized from that single flat
// global array into a package operating over collaborators.
package clock

import (
	"sync/atomic"

	"pager/defs"
	"pager/mem"
	"pager/mmu"
	"pager/swap"
)

// / OwnerLookup_i is the view of the process registry the clock algorithm
// / needs to find a frame's current owner and that owner's page table,
// / without importing package proc directly (spec §9: frames hold no
// / back-pointer to their PTE).
type OwnerLookup_i interface {
	Owner(frame int) (pid, page int, ok bool)
	Table(pid int) (*mmu.Table_t, bool)
}

// / Engine_t holds the clock hand. Its lifetime is the process, per spec
// / §5's "static lifetime" note; callers must hold the replacement mutex
// / across every call into Evict.
type Engine_t struct {
	hand       int
	mt         *mem.Table_t
	store      *swap.Store_t
	reg        OwnerLookup_i
	writeBacks int64
}

// / NewEngine builds a clock engine over the given frame table, swap
// / store, and owner lookup. The hand starts at -1 so its first advance
// / yields frame 0, matching spec §4.C.
func NewEngine(mt *mem.Table_t, store *swap.Store_t, reg OwnerLookup_i) *Engine_t {
	return &Engine_t{hand: -1, mt: mt, store: store, reg: reg}
}

// / Evict runs one clock sweep and returns a BUSY victim frame. Callers
// / must hold the replacement mutex; Evict itself does not acquire it.
//
// / The sweep is bounded at 2*frames iterations, the worst case spec §4.C
// / documents for "every frame referenced". Beyond that — every candidate
// / frame BUSY, which the spec says livelocks by design when K is
// / misconfigured to be >= F — Evict gives up rather than spinning
// / forever, so a misconfigured test fails loudly instead of hanging.
func (e *Engine_t) Evict() (frame int, rc defs.Err_t) {
	n := e.mt.Len()
	if n == 0 {
		return 0, defs.INVALID_FRAME
	}

	victim := -1
	limit := 2 * n
	for i := 0; i < limit; i++ {
		e.hand = (e.hand + 1) % n
		state, rc := e.mt.State(e.hand)
		if rc != defs.SUCCESS {
			return 0, rc
		}
		if state != mem.InUse {
			continue
		}

		pte := e.ownerPTE(e.hand)
		if pte == nil {
			// IN_USE but untracked by the registry: nothing to consult
			// a reference bit on, so take it immediately.
			victim = e.hand
			break
		}
		if pte.Ref() {
			pte.ClearRef()
			continue
		}
		victim = e.hand
		break
	}
	if victim < 0 {
		return 0, defs.INVALID_FRAME
	}

	if err := e.writeBackIfDirty(victim); err != defs.SUCCESS {
		return 0, err
	}
	e.invalidateOwner(victim)

	if rc := e.mt.MarkBusy(victim); rc != defs.SUCCESS {
		return 0, rc
	}
	return victim, defs.SUCCESS
}

// / WriteBacks reports how many times Evict has written a dirty victim
// / back to swap, a running total callers can diff across calls to drive
// / their own observable statistics (spec §4.A "observable statistics").
func (e *Engine_t) WriteBacks() int64 { return atomic.LoadInt64(&e.writeBacks) }

func (e *Engine_t) ownerPTE(frame int) *mmu.PTE_t {
	pid, page, ok := e.reg.Owner(frame)
	if !ok {
		return nil
	}
	table, ok := e.reg.Table(pid)
	if !ok {
		return nil
	}
	return table.Entry(page)
}

func (e *Engine_t) writeBackIfDirty(frame int) defs.Err_t {
	pid, page, ok := e.reg.Owner(frame)
	if !ok {
		return defs.SUCCESS
	}
	table, ok := e.reg.Table(pid)
	if !ok {
		return defs.SUCCESS
	}
	pte := table.Entry(page)
	if pte == nil || !pte.Dirty() {
		return defs.SUCCESS
	}
	if rc := e.store.WriteBack(e.mt, frame, pid, page); rc != defs.SUCCESS {
		return rc
	}
	pte.ClearDirty()
	atomic.AddInt64(&e.writeBacks, 1)
	return defs.SUCCESS
}

func (e *Engine_t) invalidateOwner(frame int) {
	pid, page, ok := e.reg.Owner(frame)
	if !ok {
		return
	}
	table, ok := e.reg.Table(pid)
	if !ok {
		return
	}
	table.Invalidate(page)
	table.Commit()
}
