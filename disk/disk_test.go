package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func testGeom() Geometry_t {
	return Geometry_t{SectorSize: 512, TrackSize: 32, TrackCount: 4}
}

func TestOpenSizesBackingFile(t *testing.T) {
	geom := testGeom()
	path := filepath.Join(t.TempDir(), "swap.img")
	d, err := Open(path, geom)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if got := d.Geometry(); got != geom {
		t.Fatalf("Geometry() = %+v, want %+v", got, geom)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if want := int64(geom.Sectors()) * int64(geom.SectorSize); fi.Size() != want {
		t.Fatalf("backing file size = %d, want %d", fi.Size(), want)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	geom := testGeom()
	path := filepath.Join(t.TempDir(), "swap.img")
	d, err := Open(path, geom)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	want := bytes.Repeat([]byte{0xAB}, geom.SectorSize)
	addr := Addr_t{Track: 1, Sector: 3}
	if err := d.Write(addr, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := make([]byte, geom.SectorSize)
	if err := d.Read(addr, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Read back %x, want %x", got, want)
	}
}

func TestDistinctAddressesDoNotOverlap(t *testing.T) {
	geom := testGeom()
	path := filepath.Join(t.TempDir(), "swap.img")
	d, err := Open(path, geom)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	a := Addr_t{Track: 0, Sector: 0}
	b := Addr_t{Track: 0, Sector: 1}

	if err := d.Write(a, bytes.Repeat([]byte{0x11}, geom.SectorSize)); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if err := d.Write(b, bytes.Repeat([]byte{0x22}, geom.SectorSize)); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	got := make([]byte, geom.SectorSize)
	if err := d.Read(a, got); err != nil {
		t.Fatalf("Read a: %v", err)
	}
	if !bytes.Equal(got, bytes.Repeat([]byte{0x11}, geom.SectorSize)) {
		t.Fatalf("addr a was clobbered by write to addr b")
	}
}

func TestSecondOpenOfSameFileFailsOnUnix(t *testing.T) {
	if !unixFlockAvailable {
		t.Skip("flock exclusion only enforced on unix")
	}
	geom := testGeom()
	path := filepath.Join(t.TempDir(), "swap.img")
	d1, err := Open(path, geom)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d1.Close()

	if _, err := Open(path, geom); err == nil {
		t.Fatalf("second Open of a locked disk image unexpectedly succeeded")
	}
}
