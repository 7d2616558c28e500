// Package replock provides the single replacement mutex shared by the
// frame table, swap store, and clock hand (spec §5). Grounded on biscuit's
// Vm_t.Lock_pmap/Unlock_pmap/Lockassert_pmap trio — a named lock with an
// assertion callers use to document "this code must run with the lock
// held"; the assertion is checked in every build.
package replock

import "sync"

// / Lock_t is the replacement mutex. It is held across disk I/O by design
// / (spec §4.B's "deliberate simplification" note), so pagers serialize on
// / it for the duration of a fault, not just the frame-table bookkeeping.
type Lock_t struct {
	mu    sync.Mutex
	held  bool
	owner int64
}

// / Lock acquires the replacement mutex.
func (l *Lock_t) Lock() {
	l.mu.Lock()
	l.held = true
}

// / Unlock releases the replacement mutex.
func (l *Lock_t) Unlock() {
	l.held = false
	l.mu.Unlock()
}

// / Assert panics if the replacement mutex is not currently held. Callers
// / use it the way biscuit's Lockassert_pmap documents a locking
// / precondition: a cheap assertion, not a substitute for Lock.
func (l *Lock_t) Assert() {
	if !l.held {
		panic("replock: replacement mutex not held")
	}
}
