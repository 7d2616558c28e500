//go:build !unix

package disk

import "os"

// unixFlockAvailable lets tests skip flock-exclusivity assertions on
// platforms where lockExclusive is a no-op.
const unixFlockAvailable = false

// lockExclusive is a no-op on non-unix platforms, which have no flock
// equivalent wired up here.
func lockExclusive(f *os.File) error {
	return nil
}
