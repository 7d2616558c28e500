// Package mmu simulates the hardware MMU model that the paging subsystem
// treats as an external collaborator (spec §6): a page-size constant, a
// per-process page table of PTEs, and accessor calls for the reference and
// dirty bits a real MMU would maintain in hardware. Nothing in this
// package is part of the core — it exists only so the rest of the module
// has something concrete to fault against.
package mmu

import "sync/atomic"

// / PageShift is the base-2 exponent of the page size.
const PageShift = 12

// / PageSize is the size in bytes of one page/frame.
const PageSize = 1 << PageShift

// / PTE_t is one page-table entry: residency, permissions, and the
// / hardware-maintained reference/dirty bits. All fields are unexported —
// / callers observe and mutate them only through the accessor methods
// / below, mirroring a real MMU's get-access/set-access calls.
type PTE_t struct {
	incore bool
	frame  int
	read   bool
	write  bool
	ref    int32
	dirty  int32
}

// / Incore reports whether this entry currently maps a frame.
func (e *PTE_t) Incore() bool { return e.incore }

// / Frame returns the mapped frame index. Only meaningful when Incore.
func (e *PTE_t) Frame() int { return e.frame }

// / Perm returns the read/write permission bits.
func (e *PTE_t) Perm() (read, write bool) { return e.read, e.write }

// / Ref reads the hardware reference bit.
func (e *PTE_t) Ref() bool { return atomic.LoadInt32(&e.ref) != 0 }

// / ClearRef clears the hardware reference bit (clock algorithm's "give a
// / second chance" step).
func (e *PTE_t) ClearRef() { atomic.StoreInt32(&e.ref, 0) }

// / Touch sets the reference bit, standing in for the hardware setting it
// / on every access. Exercised by tests.
func (e *PTE_t) Touch() { atomic.StoreInt32(&e.ref, 1) }

// / Dirty reads the hardware dirty bit.
func (e *PTE_t) Dirty() bool { return atomic.LoadInt32(&e.dirty) != 0 }

// / ClearDirty clears the hardware dirty bit after a write-back.
func (e *PTE_t) ClearDirty() { atomic.StoreInt32(&e.dirty, 0) }

// / MarkDirty sets the hardware dirty bit, standing in for the hardware
// / setting it on a write fault. Exercised by tests simulating a process
// / writing to a mapped page.
func (e *PTE_t) MarkDirty() { atomic.StoreInt32(&e.dirty, 1) }

// / Table_t is one process's page table: an array of PTEs indexed by page
// / number, plus a commit counter standing in for reloading the hardware's
// / page-table-base register.
type Table_t struct {
	entries []PTE_t
	commits int64
}

// / NewTable allocates a page table with npages entries, all initially
// / not-incore.
func NewTable(npages int) *Table_t {
	return &Table_t{entries: make([]PTE_t, npages)}
}

// / Pages reports the number of page-table entries.
func (t *Table_t) Pages() int { return len(t.entries) }

// / Entry returns the PTE for page, or nil if page is out of range.
func (t *Table_t) Entry(page int) *PTE_t {
	if page < 0 || page >= len(t.entries) {
		return nil
	}
	return &t.entries[page]
}

// / Install maps page to frame with the given permissions and sets
// / incore=1. It does not commit the change to the (simulated) hardware;
// / callers commit explicitly once they own the faulting context.
func (t *Table_t) Install(page, frame int, read, write bool) {
	e := t.Entry(page)
	if e == nil {
		panic("mmu: Install on out-of-range page")
	}
	e.incore = true
	e.frame = frame
	e.read = read
	e.write = write
}

// / Invalidate clears incore and frame for page, leaving permissions
// / untouched. Used by the replacement engine to evict a victim's PTE.
func (t *Table_t) Invalidate(page int) {
	e := t.Entry(page)
	if e == nil {
		panic("mmu: Invalidate on out-of-range page")
	}
	e.incore = false
	e.frame = 0
}

// / FindByFrame returns the page number currently mapped to frame, if any.
// / The replacement engine uses this to reconstruct a victim frame's owner
// / without frames ever storing a back-pointer to their PTE (spec §9).
func (t *Table_t) FindByFrame(frame int) (page int, ok bool) {
	for i := range t.entries {
		if t.entries[i].incore && t.entries[i].frame == frame {
			return i, true
		}
	}
	return 0, false
}

// / Commit simulates reloading the page table into the hardware MMU (a cr3
// / reload on real hardware). It is a counter here so tests can assert a
// / commit happened without modelling real hardware state.
func (t *Table_t) Commit() { atomic.AddInt64(&t.commits, 1) }

// / Commits reports how many times Commit has been called.
func (t *Table_t) Commits() int64 { return atomic.LoadInt64(&t.commits) }
