// Package proc is the external process/page-table collaborator (spec §6):
// it owns each process's mmu.Table_t and answers the two lookups the core
// paging packages need without importing each other — "which frame backs
// (pid, page)" and "who owns this frame". Grounded on biscuit's per-process
// Vm_t holding its own Pmap_t, generalized into a small registry so the
// rest of the module can treat it as a collaborator rather than a kernel
// singleton.
package proc

import (
	"sync"

	"pager/defs"
	"pager/limits"
	"pager/mmu"
)

// / Registry_t maps pid to that process's page table, admitting at most
// / limits.MaxProc live registrations (spec §3's process-count ceiling).
type Registry_t struct {
	mu     sync.Mutex
	tables map[int]*mmu.Table_t
	slots  *limits.Bounded_t
}

// / NewRegistry returns an empty registry bounded at limits.MaxProc.
func NewRegistry() *Registry_t {
	return &Registry_t{
		tables: make(map[int]*mmu.Table_t),
		slots:  limits.NewBounded(limits.MaxProc),
	}
}

// / Register creates and stores a page table with npages entries for pid,
// / or returns nil if the registry is already at limits.MaxProc live
// / processes.
func (r *Registry_t) Register(pid, npages int) *mmu.Table_t {
	if !r.slots.Take() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := mmu.NewTable(npages)
	r.tables[pid] = t
	return t
}

// / Table returns pid's page table, satisfying clock.OwnerLookup_i.
func (r *Registry_t) Table(pid int) (*mmu.Table_t, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[pid]
	return t, ok
}

// / Unregister drops pid's page table entirely, used once free_all has
// / released its frames, and returns its process slot to the registry's
// / limits.MaxProc ceiling.
func (r *Registry_t) Unregister(pid int) {
	r.mu.Lock()
	_, existed := r.tables[pid]
	delete(r.tables, pid)
	r.mu.Unlock()
	if existed {
		r.slots.Give()
	}
}

// / Owner returns the (pid, page) currently mapped to frame, if any,
// / satisfying clock.OwnerLookup_i. Frames carry no back-pointer (spec
// / §9), so this walks every registered page table.
func (r *Registry_t) Owner(frame int) (pid, page int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p, t := range r.tables {
		if pg, found := t.FindByFrame(frame); found {
			return p, pg, true
		}
	}
	return 0, 0, false
}

// / FindIncoreFrames returns every frame currently mapped by pid's page
// / table, satisfying mem.PageTableLookup_i. ok is false if pid has no
// / registered page table, matching the INVALID_PID case in
// / mem.Table_t.FreeAll.
func (r *Registry_t) FindIncoreFrames(pid int) ([]int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[pid]
	if !ok {
		return nil, false
	}
	var frames []int
	for page := 0; page < t.Pages(); page++ {
		e := t.Entry(page)
		if e.Incore() {
			frames = append(frames, e.Frame())
		}
	}
	return frames, true
}

// / ClearIncore invalidates pid's PTE mapping frame, satisfying
// / mem.PageTableLookup_i. A no-op if pid or the mapping no longer exists.
func (r *Registry_t) ClearIncore(pid, frame int) {
	r.mu.Lock()
	t, ok := r.tables[pid]
	r.mu.Unlock()
	if !ok {
		return
	}
	if page, found := t.FindByFrame(frame); found {
		t.Invalidate(page)
	}
}

// / FaultPid validates that pid is registered, returning INVALID_PID
// / otherwise.
func (r *Registry_t) FaultPid(pid int) defs.Err_t {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[pid]; !ok {
		return defs.INVALID_PID
	}
	return defs.SUCCESS
}
