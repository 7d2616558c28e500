// Package disk simulates the block-disk external collaborator (spec §6):
// geometry query plus synchronous page-sized read/write. Grounded on
// biscuit's fs.Disk_i interface (a synchronous (track, first-sector,
// sector-count, buffer) transfer contract) and pnathan-bufferpool's
// DiskPool, which backs each page with a real file rather than an
// in-memory stub.
package disk

import (
	"fmt"
	"os"
)

// / Geometry_t describes a disk's physical layout, queried once at init
// / per spec §3 Configuration.
type Geometry_t struct {
	SectorSize int
	TrackSize  int // sectors per track
	TrackCount int
}

// / Sectors returns the total sector count of a disk with this geometry.
func (g Geometry_t) Sectors() int { return g.TrackSize * g.TrackCount }

// / Addr_t is a (track, first-sector) disk address, as spec §3's SwapSlot
// / disk_addr field.
type Addr_t struct {
	Track  int
	Sector int
}

func (a Addr_t) offset(geom Geometry_t) int64 {
	sector := a.Track*geom.TrackSize + a.Sector
	return int64(sector) * int64(geom.SectorSize)
}

// / Disk_t is a block disk backed by a real file, so the swap store drives
// / genuine reads and writes through transient frame mappings rather than
// / an in-memory mock.
type Disk_t struct {
	f    *os.File
	geom Geometry_t
}

// / Open creates (if necessary) and opens the backing file at path, sized
// / to hold geom's full sector range, and locks it exclusively so a
// / second accidental Open of the same swap-disk image fails fast.
func Open(path string, geom Geometry_t) (*Disk_t, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}
	if err := lockExclusive(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("disk: lock %s: %w", path, err)
	}
	size := int64(geom.Sectors()) * int64(geom.SectorSize)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("disk: size %s: %w", path, err)
	}
	return &Disk_t{f: f, geom: geom}, nil
}

// / Geometry returns the disk's geometry.
func (d *Disk_t) Geometry() Geometry_t { return d.geom }

// / Read performs a synchronous read of len(buf) bytes starting at addr.
func (d *Disk_t) Read(addr Addr_t, buf []byte) error {
	_, err := d.f.ReadAt(buf, addr.offset(d.geom))
	return err
}

// / Write performs a synchronous write of buf starting at addr.
func (d *Disk_t) Write(addr Addr_t, buf []byte) error {
	_, err := d.f.WriteAt(buf, addr.offset(d.geom))
	return err
}

// / Close releases the backing file and its lock.
func (d *Disk_t) Close() error {
	return d.f.Close()
}
