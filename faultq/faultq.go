// Package faultq implements the Fault Queue (spec §4.D): a bounded
// circular buffer of Fault records with front/rear cursors, enqueued by
// the dispatcher and dequeued by a pager. Grounded on biscuit's
// circbuf.Circbuf_t (head/tail cursors over a fixed backing array) and
// original_source/phase3d.c's single "Mutex" guarding all shared state,
// generalized from circbuf's byte buffer to a queue of Fault records
// stored by value.
package faultq

import (
	"sync"

	"pager/defs"
	"pager/limits"
	"pager/sem"
	"pager/util"
)

// / Fault_t is one outstanding page fault, queued by value so its
// / lifetime needs no separate allocation/free discipline (spec §4.D).
type Fault_t struct {
	Pid    int
	Offset uintptr
	Cause  defs.Cause_t

	// Wait is the per-fault rendezvous semaphore the dispatcher blocks on
	// and the pager posts once the fault is serviced (spec §4.F).
	Wait *sem.Counting_t

	// Result points at a slot the dispatcher owns. The queue stores
	// Fault_t by value (spec §4.D), so the pager's dequeued copy and the
	// dispatcher's original share this pointer; the pager writes through
	// it before posting Wait, and the dispatcher reads it only after
	// acquiring Wait, so no additional synchronization is needed.
	Result *defs.Err_t

	// PTE points at a slot the dispatcher owns, same sharing discipline as
	// Result: the pager fills in the resolved frame and permissions before
	// posting Wait, and the dispatcher reads it only after acquiring Wait.
	// It is meaningful only when *Result == defs.SUCCESS. Per spec §9 Open
	// Question #2, the pager never installs this value itself — it hands
	// it back through this record, and the dispatcher performs the
	// mmu.Install/Commit in the faulting process's own context after Wait
	// wakes it. A pointer is required here, not a plain field: the queue
	// stores Fault_t by value, so a plain field written by the pager's
	// dequeued copy would never be visible on the dispatcher's original.
	PTE *PTE_t
}

// / PTE_t is the PTE value a pager resolves a fault to: a frame number plus
// / the read/write permission bits the dispatcher installs.
type PTE_t struct {
	Frame int
	Read  bool
	Write bool
}

// / Queue_t is the bounded circular buffer of outstanding faults plus the
// / fault semaphore pagers block on (spec §4.D's invariant Q1 ties the two
// / together: every enqueue is paired with one post of Sem).
type Queue_t struct {
	mu    sync.Mutex
	buf   []Fault_t
	front int
	rear  int
	count int

	// / Sem counts outstanding V-operations: enqueued-but-unserviced
	// / faults plus the shutdown count posted at teardown (invariant Q1).
	Sem *sem.Counting_t
}

// / New returns an empty queue with the given capacity and a fresh fault
// / semaphore initialized to zero. capacity is clamped to limits.MaxProc
// / (spec §4.D: at most one outstanding fault per process) regardless of
// / what the caller passes in.
func New(capacity int) *Queue_t {
	capacity = util.Min(capacity, limits.MaxProc)
	return &Queue_t{
		buf: make([]Fault_t, capacity),
		Sem: sem.New("fault", 0),
	}
}

// / Cap reports the queue's fixed capacity.
func (q *Queue_t) Cap() int { return len(q.buf) }

// / Len reports the number of currently enqueued faults.
func (q *Queue_t) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// / Enqueue appends f at the rear and posts the fault semaphore to wake
// / one pager (spec §4.F step 4-5). It is the dispatcher's responsibility
// / to ensure the queue never overflows; Enqueue panics on overflow since
// / MAX_PROC capacity with at most one outstanding fault per process
// / makes overflow a programming error, not a runtime condition.
func (q *Queue_t) Enqueue(f Fault_t) {
	q.mu.Lock()
	if q.count == len(q.buf) {
		q.mu.Unlock()
		panic("faultq: queue full")
	}
	q.buf[q.rear] = f
	q.rear = (q.rear + 1) % len(q.buf)
	q.count++
	q.mu.Unlock()

	q.Sem.Up()
}

// / Dequeue removes and returns the fault at the front. Callers acquire
// / the fault semaphore first (spec §4.E step a), so Dequeue itself never
// / blocks; it panics if called on an empty queue, which would indicate
// / Q1 has been violated.
func (q *Queue_t) Dequeue() Fault_t {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		panic("faultq: dequeue on empty queue (Q1 violated)")
	}
	f := q.buf[q.front]
	q.front = (q.front + 1) % len(q.buf)
	q.count--
	return f
}
