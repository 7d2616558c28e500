package dispatch

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pager/defs"
	"pager/disk"
	"pager/mem"
	"pager/pager"
	"pager/proc"
)

type recordingTerminator struct {
	mu    sync.Mutex
	calls []defs.TermCode_t
}

func (r *recordingTerminator) Terminate(pid int, code defs.TermCode_t) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, code)
}

func (r *recordingTerminator) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newSubsystem(t *testing.T, pages, frames, pagers int) (*pager.Subsystem, *proc.Registry_t) {
	t.Helper()
	geom := disk.Geometry_t{SectorSize: 512, TrackSize: 32, TrackCount: 4}
	d, err := disk.Open(filepath.Join(t.TempDir(), "swap.img"), geom)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	reg := proc.NewRegistry()
	s, rc := pager.NewSubsystem(pager.Config{Pages: pages, Frames: frames, Pagers: pagers}, d, reg)
	require.Equal(t, defs.SUCCESS, rc)
	t.Cleanup(func() { s.Shutdown() })
	return s, reg
}

func TestFaultResolvesAndInstallsPTE(t *testing.T) {
	s, reg := newSubsystem(t, 8, 2, 1)
	table := reg.Register(1, 8)
	term := &recordingTerminator{}
	d := NewDispatcher(s, term)

	d.Fault(1, 0, defs.CausePagefault)

	require.True(t, table.Entry(0).Incore(), "PTE not installed after Fault returned")
	require.EqualValues(t, 1, table.Commits(), "dispatcher commits, not the pager")
	require.EqualValues(t, 1, s.Stats.PTECommits.Value())
	require.Equal(t, 0, term.len(), "Terminate should not be called on a resolvable fault")
}

func TestAccessViolationTerminatesProcess(t *testing.T) {
	s, reg := newSubsystem(t, 8, 2, 1)
	reg.Register(1, 8)
	term := &recordingTerminator{}
	d := NewDispatcher(s, term)

	d.Fault(1, 0, defs.CauseAccessViolation)

	require.Equal(t, 1, term.len())
	require.Equal(t, defs.TermAccessViolation, term.calls[0])
}

func TestFaultWithUnrecognizedCausePanics(t *testing.T) {
	s, reg := newSubsystem(t, 8, 2, 1)
	reg.Register(1, 8)
	term := &recordingTerminator{}
	d := NewDispatcher(s, term)

	require.Panics(t, func() { d.Fault(1, 0, defs.CauseOther) })
}

func TestBootstrapIdentityMapsPageToSameFrame(t *testing.T) {
	var mt mem.Table_t
	require.Equal(t, defs.SUCCESS, mt.Init(8, 8))
	reg := proc.NewRegistry()
	table := reg.Register(1, 8)

	b := NewBootstrap(reg, &mt)
	require.Equal(t, defs.SUCCESS, b.Fault(1, 3*4096))
	require.Equal(t, 3, table.Entry(3).Frame(), "identity map should install frame 3 for page 3")
}
