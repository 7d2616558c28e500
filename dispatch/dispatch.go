// Package dispatch implements the Fault Dispatcher (spec §4.F): the MMU
// interrupt handler that runs in the faulting thread's context, hands the
// fault to the pager pool, blocks for the result, and terminates the
// process on an unrecoverable outcome. Grounded on biscuit's
// vm.Sys_pgfault/Userdmap8_inner call shape ("take the lock, check
// incore, fault if needed, proceed") adapted from copying bytes to/from
// user space into servicing one MMU-reported fault and resuming or
// terminating the caller.
package dispatch

import (
	"context"

	"pager/defs"
	"pager/faultq"
	"pager/mem"
	"pager/mmu"
	"pager/pager"
	"pager/proc"
	"pager/sem"
	"pager/util"
)

// / Terminator_i is how the dispatcher ends a process that cannot be
// / serviced, kept as a narrow interface so tests can supply a recording
// / stub instead of a real process-termination path.
type Terminator_i interface {
	Terminate(pid int, code defs.TermCode_t)
}

// / Dispatcher_t is the registered MMU interrupt handler (spec §4.F).
type Dispatcher_t struct {
	sub  *pager.Subsystem
	term Terminator_i
}

// / NewDispatcher builds a dispatcher over a running Subsystem.
func NewDispatcher(sub *pager.Subsystem, term Terminator_i) *Dispatcher_t {
	return &Dispatcher_t{sub: sub, term: term}
}

// / Fault runs spec §4.F's eight steps: it is invoked with the cause the
// / MMU already classified (step 1), builds and enqueues a Fault record,
// / blocks on that fault's wait semaphore, installs the PTE value the
// / pager prepared (step 8, resolving spec §9 Open Question #2 in favor
// / of doing this in the faulting process's own context rather than the
// / pager's), and terminates pid if the pager reports an unrecoverable
// / result. It returns once the faulting instruction is safe to
// / re-execute.
func (d *Dispatcher_t) Fault(pid int, offset uintptr, cause defs.Cause_t) {
	if cause != defs.CausePagefault && cause != defs.CauseAccessViolation { // step 2
		panic("dispatch: MMU reported an unrecognized fault cause")
	}

	var result defs.Err_t
	var pte faultq.PTE_t
	f := faultq.Fault_t{ // step 3
		Pid:    pid,
		Offset: offset,
		Cause:  cause,
		Wait:   sem.New("fault-wait", 0),
		Result: &result,
		PTE:    &pte,
	}

	d.sub.Queue().Enqueue(f) // steps 4-5: Enqueue posts the fault semaphore

	f.Wait.Down(context.Background()) // step 6
	// step 7: f.Wait is per-fault and unreferenced after this point; it
	// is reclaimed by the garbage collector rather than an explicit free.

	if result == defs.SUCCESS { // step 8 (spec §9 Open Question #2):
		// the PTE install/commit runs here, in the faulting process's own
		// context after wake, never inside the pager.
		if table, ok := d.sub.Registry().Table(pid); ok {
			page := util.Rounddown(int(offset), mmu.PageSize) / mmu.PageSize
			table.Install(page, pte.Frame, pte.Read, pte.Write)
			table.Commit()
			d.sub.Stats.PTECommits.Inc()
		}
		return
	}

	switch result {
	case defs.ACCESS_VIOLATION:
		d.term.Terminate(pid, defs.TermAccessViolation)
	case defs.OUT_OF_SWAP:
		d.term.Terminate(pid, defs.TermOutOfSwap)
	}
}

// / Bootstrap_t is the simpler handler used before pagers exist: it maps
// / page x of the faulting process directly to frame x (spec §4.F's
// / closing paragraph). It lives in this package's boundary but is never
// / active once a Dispatcher_t has taken over.
type Bootstrap_t struct {
	reg *proc.Registry_t
	mt  *mem.Table_t
}

// / NewBootstrap builds an identity-map fault handler over reg and mt.
func NewBootstrap(reg *proc.Registry_t, mt *mem.Table_t) *Bootstrap_t {
	return &Bootstrap_t{reg: reg, mt: mt}
}

// / Fault maps the page at offset directly to the identically-numbered
// / frame, skipping the fault queue, pager pool, and swap store entirely.
func (b *Bootstrap_t) Fault(pid int, offset uintptr) defs.Err_t {
	page := util.Rounddown(int(offset), mmu.PageSize) / mmu.PageSize

	table, ok := b.reg.Table(pid)
	if !ok {
		return defs.INVALID_PID
	}
	if page < 0 || page >= table.Pages() {
		return defs.OUT_OF_PAGES
	}

	if rc := b.mt.MarkBusy(page); rc != defs.SUCCESS {
		return rc
	}
	table.Install(page, page, true, true)
	table.Commit()
	return b.mt.MarkInUse(page)
}
