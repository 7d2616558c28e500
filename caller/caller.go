// Package caller tracks repeated (pid, page) fault sites to flag
// thrashing — a process bouncing the same page in and out of memory.
// Grounded on biscuit's caller.Distinct_caller_t, which hashes a call
// chain to detect whether it has been seen before; repurposed here from
// hashing runtime.Callers stacks to counting repeated fault keys, since
// thrashing is a property of which pages keep faulting, not of which Go
// call stack faulted them.
package caller

import "sync"

type key_t struct {
	pid  int
	page int
}

// / Tracker_t counts how many times each (pid, page) pair has faulted.
// / Fields are protected by the embedded mutex, mirroring
// / Distinct_caller_t's Lock/Unlock discipline around its map.
type Tracker_t struct {
	mu    sync.Mutex
	seen  map[key_t]int
	limit int
}

// / NewTracker returns a tracker that flags a (pid, page) pair as
// / thrashing once it has faulted more than limit times.
func NewTracker(limit int) *Tracker_t {
	return &Tracker_t{seen: make(map[key_t]int), limit: limit}
}

// / Record notes one fault for (pid, page) and reports whether this call
// / is the one that crosses the thrashing threshold. thrashing is true on
// / exactly one call per distinct storm — the call where the count first
// / exceeds limit — not on every subsequent call past it, so a caller that
// / logs on thrashing logs once per storm rather than once per fault.
func (t *Tracker_t) Record(pid, page int) (thrashing bool, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key_t{pid, page}
	t.seen[k]++
	n := t.seen[k]
	return n == t.limit+1, n
}

// / Forget drops all recorded fault counts for pid, so a later Record
// / for that pid starts counting from zero.
func (t *Tracker_t) Forget(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.seen {
		if k.pid == pid {
			delete(t.seen, k)
		}
	}
}

// / Len reports how many distinct (pid, page) pairs are currently
// / tracked.
func (t *Tracker_t) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
