// Package pager implements the Pager Pool (spec §4.E) and owns the
// Subsystem value that threads the frame table, swap store, clock engine,
// fault queue, and process registry together in place of the original's
// process-wide statics (spec §9's "global mutable state" guidance).
// Grounded on original_source/phase3c.c/phase3d.c's pager worker loop
// pseudocode and biscuit/src/kernel/chentry.go's role as a small bring-up
// entry point, adapted here into a constructor rather than copied.
package pager

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"pager/caller"
	"pager/clock"
	"pager/defs"
	"pager/disk"
	"pager/faultq"
	"pager/limits"
	"pager/mem"
	"pager/mmu"
	"pager/proc"
	"pager/replock"
	"pager/sem"
	"pager/stats"
	"pager/swap"
	"pager/util"
)

// / Config configures a Subsystem at construction (spec §3's
// / "Configuration" list), queried once at init like the original's
// / geometry query.
type Config struct {
	Pages  int
	Frames int
	Pagers int
}

// / Subsystem is the single owned value holding every piece of paging
// / state: frame table, swap store, clock hand, fault queue, process
// / registry, and the replacement mutex serializing access to the first
// / three. Spec §9 calls for exactly this: "wrap these into a single owned
// / subsystem value created at init and threaded through operations."
type Subsystem struct {
	cfg Config

	mem   mem.Table_t
	swap  swap.Store_t
	clock *clock.Engine_t
	queue *faultq.Queue_t
	reg   *proc.Registry_t
	lock  replock.Lock_t
	disk  *disk.Disk_t

	Stats   stats.Counters_t
	Log     *stats.Logger_t
	Latency stats.LatencyProfile_t
	Thrash  *caller.Tracker_t

	shuttingDown atomic.Bool
	startupSem   *sem.Counting_t
	group        *errgroup.Group
}

// / NewSubsystem validates cfg, builds every collaborator, and forks
// / cfg.Pagers worker goroutines — waiting for each to reach its startup
// / rendezvous before returning, matching spec §4.E's init sequencing.
func NewSubsystem(cfg Config, d *disk.Disk_t, reg *proc.Registry_t) (*Subsystem, defs.Err_t) {
	if cfg.Pagers < 0 || cfg.Pagers > limits.KMax {
		return nil, defs.INVALID_NUM_PAGERS
	}

	s := &Subsystem{
		cfg:        cfg,
		reg:        reg,
		disk:       d,
		queue:      faultq.New(limits.MaxProc),
		startupSem: sem.New("pager-startup", 0),
		Thrash:     caller.NewTracker(8),
	}
	s.Log = stats.NewLogger(os.Stderr)
	if rc := s.mem.Init(cfg.Pages, cfg.Frames); rc != defs.SUCCESS {
		return nil, rc
	}
	if rc := s.swap.Init(d); rc != defs.SUCCESS {
		return nil, rc
	}
	s.clock = clock.NewEngine(&s.mem, &s.swap, reg)

	g, ctx := errgroup.WithContext(context.Background())
	s.group = g
	for i := 0; i < cfg.Pagers; i++ {
		g.Go(func() error {
			s.pagerLoop(ctx)
			return nil
		})
	}
	for i := 0; i < cfg.Pagers; i++ {
		// No timeout: a pager that never reaches its startup rendezvous
		// is a construction bug the caller should see as a hang, not a
		// silently-swallowed error.
		if err := s.startupSem.Down(context.Background()); err != nil {
			return nil, defs.NOT_INITIALIZED
		}
	}
	return s, defs.SUCCESS
}

// / MemTable exposes the subsystem's frame table for callers (the
// / dispatcher, tests) that need to allocate or inspect frames directly.
func (s *Subsystem) MemTable() *mem.Table_t { return &s.mem }

// / SwapStore exposes the subsystem's swap store.
func (s *Subsystem) SwapStore() *swap.Store_t { return &s.swap }

// / Registry exposes the subsystem's process registry.
func (s *Subsystem) Registry() *proc.Registry_t { return s.reg }

// / Queue exposes the fault queue the dispatcher enqueues onto.
func (s *Subsystem) Queue() *faultq.Queue_t { return s.queue }

// / Disk exposes the backing swap disk, e.g. for a caller that wants to
// / Close it once the subsystem has shut down.
func (s *Subsystem) Disk() *disk.Disk_t { return s.disk }

// / Shutdown sets the shutdown flag, posts the fault semaphore once per
// / pager so each observes the flag and exits, and joins them (spec
// / §4.E's shutdown sequencing).
func (s *Subsystem) Shutdown() defs.Err_t {
	s.shuttingDown.Store(true)
	for i := 0; i < s.cfg.Pagers; i++ {
		s.queue.Sem.Up()
	}
	s.group.Wait()
	if rc := s.swap.Shutdown(); rc != defs.SUCCESS {
		return rc
	}
	return s.mem.Shutdown()
}

// / pagerLoop is one pager worker: spec §4.E's lettered steps a–k.
func (s *Subsystem) pagerLoop(ctx context.Context) {
	s.startupSem.Up() // step 1: post startup rendezvous once

	for {
		if err := s.queue.Sem.Down(ctx); err != nil { // step a
			return
		}
		if s.shuttingDown.Load() { // step b
			return
		}
		start := time.Now()

		s.lock.Lock() // step c
		f := s.queue.Dequeue() // step d
		s.serviceFault(&f, start)
		s.lock.Unlock() // step k (release)
	}
}

// serviceFault runs steps e-h and j-k of the pager loop under the
// replacement mutex, which the caller already holds. Step i (PTE
// install/commit) is the dispatcher's job, not the pager's — see the
// comment below where f.PTE is set.
func (s *Subsystem) serviceFault(f *faultq.Fault_t, start time.Time) {
	s.lock.Assert()
	defer func() {
		f.Wait.Up() // step k: post the fault's wait semaphore
		s.Latency.Observe(time.Since(start))
	}()

	s.Stats.Faults.Inc()

	if f.Cause == defs.CauseAccessViolation { // step e
		s.Stats.AccessViolations.Inc()
		*f.Result = defs.ACCESS_VIOLATION
		return
	}

	frame, ok := s.mem.AllocFree() // step f
	if !ok {
		before := s.clock.WriteBacks()
		var rc defs.Err_t
		frame, rc = s.clock.Evict()
		if rc != defs.SUCCESS {
			*f.Result = rc
			return
		}
		s.Stats.SwapOuts.Inc()
		if s.clock.WriteBacks() > before {
			s.Stats.WriteBacks.Inc()
		}
	}

	page := util.Rounddown(int(f.Offset), mmu.PageSize) / mmu.PageSize // step g

	if thrashing, n := s.Thrash.Record(f.Pid, page); thrashing {
		s.Log.Debugf("pid %d page %d faulted %d times: possible thrashing", f.Pid, page, n)
	}

	rc := s.swap.SwapIn(&s.mem, frame, f.Pid, page) // step h
	s.Stats.SwapIns.Inc()
	switch rc {
	case defs.OUT_OF_SWAP:
		s.Stats.OutOfSwap.Inc()
		s.mem.MarkFree(frame)
		*f.Result = rc
		return
	case defs.EMPTY_PAGE:
		buf, mrc := s.mem.Map(frame)
		if mrc == defs.SUCCESS {
			for i := range buf {
				buf[i] = 0
			}
			s.mem.Unmap(frame)
		}
	case defs.SUCCESS:
		s.Stats.SwapInHits.Inc()
	default:
		*f.Result = rc
		return
	}

	if _, ok := s.reg.Table(f.Pid); !ok {
		*f.Result = defs.INVALID_PID
		return
	}

	// step i is deliberately NOT done here: spec §9 Open Question #2
	// requires the PTE install/commit to run in the faulting process's
	// own context after it wakes, not inside the pager. The pager only
	// prepares the value via f.PTE; the dispatcher installs and commits it.
	f.PTE.Frame = frame
	f.PTE.Read = true
	f.PTE.Write = true

	s.mem.MarkInUse(frame) // step j

	*f.Result = defs.SUCCESS
}
