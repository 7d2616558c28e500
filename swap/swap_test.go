package swap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"pager/defs"
	"pager/disk"
	"pager/mem"
	"pager/mmu"
)

// pageFixtures holds a handful of named page contents as a txtar archive,
// the way a table of golden files would be stored on disk, without
// actually touching the filesystem for the fixture itself.
var pageFixtures = txtar.Parse([]byte(`
-- alpha --
the quick brown fox
-- beta --
jumps over the lazy dog
`))

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	for _, f := range pageFixtures.Files {
		if f.Name == name {
			page := make([]byte, mmu.PageSize)
			copy(page, f.Data)
			return page
		}
	}
	t.Fatalf("no fixture named %q", name)
	return nil
}

func newStore(t *testing.T) (*Store_t, *mem.Table_t) {
	t.Helper()
	geom := disk.Geometry_t{SectorSize: 512, TrackSize: 32, TrackCount: 2}
	d, err := disk.Open(filepath.Join(t.TempDir(), "swap.img"), geom)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	var s Store_t
	require.Equal(t, defs.SUCCESS, s.Init(d))

	var mt mem.Table_t
	require.Equal(t, defs.SUCCESS, mt.Init(16, 16))
	return &s, &mt
}

func TestSwapInOnNeverWrittenPageReturnsEmptyPage(t *testing.T) {
	s, mt := newStore(t)
	frame, _ := mt.AllocFree()
	mt.MarkBusy(frame)

	require.Equal(t, defs.EMPTY_PAGE, s.SwapIn(mt, frame, 1, 0))
}

func TestWriteBackThenSwapInRoundTrips(t *testing.T) {
	s, mt := newStore(t)

	outFrame, _ := mt.AllocFree()
	mt.MarkBusy(outFrame)
	buf, rc := mt.Map(outFrame)
	require.Equal(t, defs.SUCCESS, rc)
	copy(buf, fixture(t, "alpha"))
	mt.Unmap(outFrame)

	require.Equal(t, defs.SUCCESS, s.WriteBack(mt, outFrame, 7, 2))

	inFrame, _ := mt.AllocFree()
	mt.MarkBusy(inFrame)
	require.Equal(t, defs.SUCCESS, s.SwapIn(mt, inFrame, 7, 2))
	got, rc := mt.Map(inFrame)
	require.Equal(t, defs.SUCCESS, rc)
	defer mt.Unmap(inFrame)

	assert.Equal(t, fixture(t, "alpha"), got, "round trip mismatch")
}

func TestSwapInAllocatesSlotOnFirstMiss(t *testing.T) {
	s, mt := newStore(t)
	total := s.Len()

	f1, _ := mt.AllocFree()
	mt.MarkBusy(f1)
	require.Equal(t, defs.EMPTY_PAGE, s.SwapIn(mt, f1, 3, 0))
	assert.Equal(t, total-1, s.FreeCount(), "slot should be reserved immediately on first miss")
}

func TestSwapInHitLeavesSlotOwned(t *testing.T) {
	s, mt := newStore(t)

	f1, _ := mt.AllocFree()
	mt.MarkBusy(f1)
	require.Equal(t, defs.EMPTY_PAGE, s.SwapIn(mt, f1, 3, 0))

	require.Equal(t, defs.SUCCESS, s.SwapIn(mt, f1, 3, 0))
	_, ok := s.Lookup(3, 0)
	assert.True(t, ok, "slot for (3,0) was released after a hit; it should persist for the page's lifetime")
}

func TestWriteBackExhaustsSwapReturnsOutOfSwap(t *testing.T) {
	s, mt := newStore(t)
	total := s.Len()

	for i := 0; i < total; i++ {
		f, ok := mt.AllocFree()
		require.True(t, ok, "ran out of frames at slot %d", i)
		mt.MarkBusy(f)
		require.Equal(t, defs.SUCCESS, s.WriteBack(mt, f, 100+i, 0))
	}

	f, ok := mt.AllocFree()
	if !ok {
		t.Skip("frame table too small to exercise swap exhaustion independently")
	}
	mt.MarkBusy(f)
	assert.Equal(t, defs.OUT_OF_SWAP, s.WriteBack(mt, f, 999, 0))
}

func TestFreeAllReleasesOnlyThatProcessSlots(t *testing.T) {
	s, mt := newStore(t)

	fa, _ := mt.AllocFree()
	mt.MarkBusy(fa)
	s.WriteBack(mt, fa, 1, 0)

	fb, _ := mt.AllocFree()
	mt.MarkBusy(fb)
	s.WriteBack(mt, fb, 2, 0)

	before := s.FreeCount()
	require.Equal(t, defs.SUCCESS, s.FreeAll(1))
	assert.Equal(t, before+1, s.FreeCount())
	_, ok := s.Lookup(2, 0)
	assert.True(t, ok, "FreeAll(1) incorrectly released pid 2's slot")
}
