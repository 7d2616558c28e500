// Package mem implements the Frame Table (spec §4.A): per-frame
// free/used/busy bookkeeping, free-frame allocation, and the transient
// map/unmap window pagers use to touch a frame's bytes without installing
// it into a user page table. Grounded on biscuit's mem.Physmem_t free-list
// allocator, generalized from a refcounted free list to the spec's
// tri-state Free/Busy/InUse frame state machine.
package mem

import (
	"sync"

	"pager/defs"
	"pager/mmu"
)

// / FrameState_t is the lifecycle state of one physical frame (spec §3).
type FrameState_t int

const (
	// / Free frames are eligible for allocation.
	Free FrameState_t = iota
	// / Busy frames are reserved by a pager servicing a fault; no other
	// / pager may select them.
	Busy
	// / InUse frames are mapped into exactly one PTE.
	InUse
)

func (s FrameState_t) String() string {
	switch s {
	case Free:
		return "FREE"
	case Busy:
		return "BUSY"
	case InUse:
		return "IN_USE"
	default:
		return "FrameState_t(?)"
	}
}

type frame_t struct {
	state  FrameState_t
	mapped bool
}

// / Table_t owns every physical frame in the system. All transitions and
// / lookups are serialized by an internal mutex; the spec additionally
// / requires the replacement mutex to be held by pagers mutating frame
// / state during a fault (see package pager), but Table_t remains safe to
// / use on its own for tests and for process-exit bookkeeping.
type Table_t struct {
	mu          sync.Mutex
	frames      []frame_t
	pages       [][]byte
	pageCount   int
	freeCount   int
	initialized bool
}

// / PageTableLookup_i is the minimal view of the process/page-table
// / registry the frame table needs to release a process's frames on exit
// / without importing the proc package directly (spec §9: frames carry no
// / pointer to PTEs or processes).
type PageTableLookup_i interface {
	FindIncoreFrames(pid int) ([]int, bool)
	ClearIncore(pid int, frame int)
}

// / Init populates f frames in the FREE state and records the page count
// / used later for bounds checks. Fails with ALREADY_INITIALIZED if called
// / twice.
func (t *Table_t) Init(pages, frames int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initialized {
		return defs.ALREADY_INITIALIZED
	}
	t.frames = make([]frame_t, frames)
	t.pages = make([][]byte, frames)
	for i := range t.pages {
		t.pages[i] = make([]byte, mmu.PageSize)
	}
	t.pageCount = pages
	t.freeCount = frames
	t.initialized = true
	return defs.SUCCESS
}

// / Shutdown releases internal storage. Fails with NOT_INITIALIZED
// / otherwise.
func (t *Table_t) Shutdown() defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return defs.NOT_INITIALIZED
	}
	t.frames = nil
	t.pages = nil
	t.initialized = false
	return defs.SUCCESS
}

// / Len returns the configured frame count.
func (t *Table_t) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// / FreeCount reports the number of FREE frames, the observable statistic
// / Init publishes per spec §4.A.
func (t *Table_t) FreeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freeCount
}

// / State returns the current state of frame.
func (t *Table_t) State(frame int) (FrameState_t, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < 0 || frame >= len(t.frames) {
		return 0, defs.INVALID_FRAME
	}
	return t.frames[frame].state, defs.SUCCESS
}

// / AllocFree scans for a FREE frame, marks it BUSY, and returns its
// / index. Callers invoke this only when the clock algorithm's "free
// / frame available" precondition may hold (spec §4.E step f).
func (t *Table_t) AllocFree() (frame int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.frames {
		if t.frames[i].state == Free {
			t.frames[i].state = Busy
			t.freeCount--
			return i, true
		}
	}
	return 0, false
}

// / MarkBusy transitions frame from IN_USE to BUSY (clock victim
// / selection, spec §3), or from FREE to BUSY (the bootstrap handler's
// / direct allocation), keeping FreeCount in step.
func (t *Table_t) MarkBusy(frame int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < 0 || frame >= len(t.frames) {
		return defs.INVALID_FRAME
	}
	if t.frames[frame].state == Free {
		t.freeCount--
	}
	t.frames[frame].state = Busy
	return defs.SUCCESS
}

// / MarkInUse transitions frame from BUSY to IN_USE once its PTE has been
// / installed (spec §4.E step j).
func (t *Table_t) MarkInUse(frame int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < 0 || frame >= len(t.frames) {
		return defs.INVALID_FRAME
	}
	t.frames[frame].state = InUse
	return defs.SUCCESS
}

// / MarkFree transitions a BUSY frame back to FREE (fault failed after
// / allocation, spec §3) or an IN_USE frame to FREE (process exit).
func (t *Table_t) MarkFree(frame int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < 0 || frame >= len(t.frames) {
		return defs.INVALID_FRAME
	}
	if t.frames[frame].state != Free {
		t.freeCount++
	}
	t.frames[frame].state = Free
	return defs.SUCCESS
}

// / Map installs frame into the caller's transient window and returns a
// / byte slice aliasing the frame's storage. This is the only way a pager
// / touches a frame's bytes (spec §4.A).
func (t *Table_t) Map(frame int) ([]byte, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < 0 || frame >= len(t.frames) {
		return nil, defs.INVALID_FRAME
	}
	t.frames[frame].mapped = true
	return t.pages[frame], defs.SUCCESS
}

// / Unmap is the inverse of Map.
func (t *Table_t) Unmap(frame int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < 0 || frame >= len(t.frames) {
		return defs.INVALID_FRAME
	}
	if !t.frames[frame].mapped {
		return defs.FRAME_NOT_MAPPED
	}
	t.frames[frame].mapped = false
	return defs.SUCCESS
}

// / FreeAll releases every frame owned by pid's incore PTEs (as reported
// / by reg) and clears incore on those PTEs. Fails with INVALID_PID when
// / reg has no page table for pid. Clearing incore here (rather than
// / leaving it to the caller) closes the gap spec.md §9 calls out in the
// / original P3FrameFreeAll, which freed frames without touching PTEs.
func (t *Table_t) FreeAll(reg PageTableLookup_i, pid int) defs.Err_t {
	frames, ok := reg.FindIncoreFrames(pid)
	if !ok {
		return defs.INVALID_PID
	}
	t.mu.Lock()
	for _, fr := range frames {
		if fr >= 0 && fr < len(t.frames) {
			if t.frames[fr].state != Free {
				t.freeCount++
			}
			t.frames[fr].state = Free
		}
	}
	t.mu.Unlock()
	for _, fr := range frames {
		reg.ClearIncore(pid, fr)
	}
	return defs.SUCCESS
}
