//go:build unix

package disk

import (
	"os"

	"golang.org/x/sys/unix"
)

// unixFlockAvailable lets tests skip flock-exclusivity assertions on
// platforms where lockExclusive is a no-op.
const unixFlockAvailable = true

// lockExclusive takes a non-blocking exclusive flock on f, so two Opens of
// the same swap-disk image never silently corrupt each other. Grounded on
// biscuit's fs block layer, which assumes sole ownership of its backing
// store; golang.org/x/sys/unix gives us the real syscall instead of a
// hand-rolled lockfile.
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
