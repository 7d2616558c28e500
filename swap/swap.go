// Package swap implements the Swap Store (spec §4.B): a fixed pool of
// disk-backed slots, one per page-size disk address, allocated to
// (pid, page) pairs on demand and released on process exit. Grounded on original_source/phase3d.c's swapData/Data pool
// (a flat array of {pid, frame, track, first, page} records protected by
// one mutex) and biscuit's fs block layer for the disk transfer shape.
package swap

import (
	"sync"

	"pager/defs"
	"pager/disk"
	"pager/mem"
	"pager/mmu"
	"pager/util"
)

// / slot_t mirrors phase3d.c's Data record: the owning (pid, page), and
// / the disk address it occupies. An unowned slot has pid -1.
type slot_t struct {
	pid   int
	page  int
	owned bool
	addr  disk.Addr_t
}

// / Store_t is the fixed-size pool of swap slots backing one swap disk.
// / Every mutation is serialized by mu, mirroring phase3d.c's single
// / "mutex around the free swap space" note.
type Store_t struct {
	mu          sync.Mutex
	disk        *disk.Disk_t
	slots       []slot_t
	sectorsPer  int
	initialized bool
}

// / Init carves the disk's sectors into PageSize-aligned slots. Fails with
// / ALREADY_INITIALIZED if called twice.
func (s *Store_t) Init(d *disk.Disk_t) defs.Err_t {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return defs.ALREADY_INITIALIZED
	}
	geom := d.Geometry()
	// Round up so a page size that is not a multiple of the sector size
	// still gets enough whole sectors to hold it.
	sectorsPer := util.Roundup(mmu.PageSize, geom.SectorSize) / geom.SectorSize
	if sectorsPer < 1 {
		sectorsPer = 1
	}
	slotsPerTrack := geom.TrackSize / sectorsPer
	total := slotsPerTrack * geom.TrackCount

	s.disk = d
	s.sectorsPer = sectorsPer
	s.slots = make([]slot_t, total)
	for i := range s.slots {
		s.slots[i] = slot_t{
			pid:  -1,
			page: -1,
			addr: disk.Addr_t{
				Track:  i / slotsPerTrack,
				Sector: (i % slotsPerTrack) * sectorsPer,
			},
		}
	}
	s.initialized = true
	return defs.SUCCESS
}

// / Shutdown releases the slot table. Fails with NOT_INITIALIZED
// / otherwise.
func (s *Store_t) Shutdown() defs.Err_t {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return defs.NOT_INITIALIZED
	}
	s.slots = nil
	s.initialized = false
	return defs.SUCCESS
}

// / Len reports the total slot count.
func (s *Store_t) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// / Lookup returns the slot index currently holding (pid, page), if any.
func (s *Store_t) Lookup(pid, page int) (index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if s.slots[i].owned && s.slots[i].pid == pid && s.slots[i].page == page {
			return i, true
		}
	}
	return 0, false
}

// / alloc finds a free slot and reserves it for (pid, page), returning
// / OUT_OF_SWAP if the pool is exhausted — spec §4.B's
// / "swap space is a shared resource" precondition on a single mutex.
func (s *Store_t) alloc(pid, page int) (int, defs.Err_t) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if !s.slots[i].owned {
			s.slots[i].owned = true
			s.slots[i].pid = pid
			s.slots[i].page = page
			return i, defs.SUCCESS
		}
	}
	return 0, defs.OUT_OF_SWAP
}

// / WriteBack writes frame's bytes (mapped through mt) to pid's slot for
// / page. Spec §4.C says that slot always already exists by the time a
// / dirty page is evicted (SwapIn allocates it on the page's first fault);
// / the allocate-on-miss fallback here only guards a caller that writes
// / back a page SwapIn never saw.
func (s *Store_t) WriteBack(mt *mem.Table_t, frame, pid, page int) defs.Err_t {
	index, ok := s.Lookup(pid, page)
	if !ok {
		var rc defs.Err_t
		index, rc = s.alloc(pid, page)
		if rc != defs.SUCCESS {
			return rc
		}
	}

	buf, rc := mt.Map(frame)
	if rc != defs.SUCCESS {
		return rc
	}
	defer mt.Unmap(frame)

	s.mu.Lock()
	addr := s.slots[index].addr
	d := s.disk
	s.mu.Unlock()

	if err := d.Write(addr, buf); err != nil {
		return defs.OUT_OF_SWAP
	}
	return defs.SUCCESS
}

// / SwapIn reads pid's slot for page back into frame (mapped through mt)
// / if one already exists, or allocates a fresh slot for (pid, page) on
// / first fault (phase3d.c's P3SwapIn: the else branch reserves a slot
// / immediately on a miss, before any byte is ever written). A slot, once
// / allocated, belongs to (pid, page) for the rest of the process's life —
// / a later eviction writes back to this same slot, per spec §4.C's "the
// / victim's swap slot must exist; it was created by the previous
// / swap_in". Returns EMPTY_PAGE — not an error — on first allocation,
// / directing the caller to zero-fill frame instead of reading it.
func (s *Store_t) SwapIn(mt *mem.Table_t, frame, pid, page int) defs.Err_t {
	index, ok := s.Lookup(pid, page)
	if !ok {
		_, rc := s.alloc(pid, page)
		if rc != defs.SUCCESS {
			return rc
		}
		return defs.EMPTY_PAGE
	}

	buf, rc := mt.Map(frame)
	if rc != defs.SUCCESS {
		return rc
	}
	defer mt.Unmap(frame)

	s.mu.Lock()
	addr := s.slots[index].addr
	d := s.disk
	s.mu.Unlock()

	if err := d.Read(addr, buf); err != nil {
		return defs.OUT_OF_SWAP
	}
	return defs.SUCCESS
}

// / FreeAll releases every slot owned by pid, mirroring phase3d.c's
// / P3SwapFreeAll.
func (s *Store_t) FreeAll(pid int) defs.Err_t {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if s.slots[i].owned && s.slots[i].pid == pid {
			s.slots[i] = slot_t{pid: -1, page: -1, addr: s.slots[i].addr}
		}
	}
	return defs.SUCCESS
}

// / FreeCount reports the number of unowned slots, an observable statistic
// / mirroring mem.Table_t.FreeCount.
func (s *Store_t) FreeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.slots {
		if !s.slots[i].owned {
			n++
		}
	}
	return n
}
