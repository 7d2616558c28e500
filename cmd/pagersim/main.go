// Command pagersim drives the demand-paging subsystem through the
// end-to-end scenarios of its specification and prints the resulting
// statistics report. Grounded on biscuit's kernel/chentry.go shape: a
// small flag-driven entry point that validates its arguments, does one
// thing, and reports failure with log.Fatal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pager/defs"
	"pager/dispatch"
	"pager/disk"
	"pager/pager"
	"pager/proc"
)

type logTerminator struct{}

func (logTerminator) Terminate(pid int, code defs.TermCode_t) {
	switch code {
	case defs.TermAccessViolation:
		fmt.Printf("pid %d terminated: access violation\n", pid)
	case defs.TermOutOfSwap:
		fmt.Printf("pid %d terminated: out of swap\n", pid)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -scenario <cold-miss|hit-after-evict|access-violation|out-of-swap>\n", os.Args[0])
	os.Exit(1)
}

func main() {
	scenario := flag.String("scenario", "cold-miss", "which end-to-end scenario to run")
	flag.Parse()

	switch *scenario {
	case "cold-miss":
		runColdMiss()
	case "hit-after-evict":
		runHitAfterEvict()
	case "access-violation":
		runAccessViolation()
	case "out-of-swap":
		runOutOfSwap()
	default:
		usage()
	}
}

func openScratchDisk(geom disk.Geometry_t) *disk.Disk_t {
	path, err := os.CreateTemp("", "pagersim-swap-*.img")
	if err != nil {
		log.Fatalf("pagersim: %v", err)
	}
	path.Close()
	d, err := disk.Open(path.Name(), geom)
	if err != nil {
		log.Fatalf("pagersim: %v", err)
	}
	return d
}

// runColdMiss drives scenario 1: a cold fault zero-fills its frame.
func runColdMiss() {
	geom := disk.Geometry_t{SectorSize: 512, TrackSize: 32, TrackCount: 4}
	d := openScratchDisk(geom)
	defer d.Close()

	reg := proc.NewRegistry()
	sub, rc := pager.NewSubsystem(pager.Config{Pages: 4, Frames: 2, Pagers: 1}, d, reg)
	if rc != defs.SUCCESS {
		log.Fatalf("pagersim: NewSubsystem: %v", rc)
	}
	defer sub.Shutdown()

	reg.Register(2, 4)
	disp := dispatch.NewDispatcher(sub, logTerminator{})
	disp.Fault(2, 0, defs.CausePagefault)

	fmt.Println("scenario: cold-miss + zero-fill")
	sub.Stats.Report(os.Stdout)
}

// runHitAfterEvict drives scenario 2: writing a page, evicting it under
// clock pressure, then reading it back.
func runHitAfterEvict() {
	geom := disk.Geometry_t{SectorSize: 512, TrackSize: 32, TrackCount: 4}
	d := openScratchDisk(geom)
	defer d.Close()

	reg := proc.NewRegistry()
	sub, rc := pager.NewSubsystem(pager.Config{Pages: 4, Frames: 2, Pagers: 1}, d, reg)
	if rc != defs.SUCCESS {
		log.Fatalf("pagersim: NewSubsystem: %v", rc)
	}
	defer sub.Shutdown()

	table := reg.Register(2, 4)
	disp := dispatch.NewDispatcher(sub, logTerminator{})

	disp.Fault(2, 0, defs.CausePagefault)
	pte0 := table.Entry(0)
	buf, _ := sub.MemTable().Map(pte0.Frame())
	buf[0] = 0xAB
	sub.MemTable().Unmap(pte0.Frame())
	pte0.MarkDirty()

	disp.Fault(2, 4096, defs.CausePagefault)
	disp.Fault(2, 8192, defs.CausePagefault)
	disp.Fault(2, 0, defs.CausePagefault)

	pte0 = table.Entry(0)
	got, _ := sub.MemTable().Map(pte0.Frame())
	fmt.Printf("scenario: hit-after-evict, page 0 byte[0] = 0x%02x (want 0xab)\n", got[0])
	sub.MemTable().Unmap(pte0.Frame())
	sub.Stats.Report(os.Stdout)
}

// runAccessViolation drives scenario 3.
func runAccessViolation() {
	geom := disk.Geometry_t{SectorSize: 512, TrackSize: 32, TrackCount: 4}
	d := openScratchDisk(geom)
	defer d.Close()

	reg := proc.NewRegistry()
	sub, rc := pager.NewSubsystem(pager.Config{Pages: 4, Frames: 2, Pagers: 1}, d, reg)
	if rc != defs.SUCCESS {
		log.Fatalf("pagersim: NewSubsystem: %v", rc)
	}
	defer sub.Shutdown()

	reg.Register(3, 4)
	disp := dispatch.NewDispatcher(sub, logTerminator{})
	disp.Fault(3, 0, defs.CauseAccessViolation)

	fmt.Println("scenario: access-violation")
	sub.Stats.Report(os.Stdout)
}

// runOutOfSwap drives scenario 4: a swap store with a single slot serves
// exactly one process before the second is terminated.
func runOutOfSwap() {
	geom := disk.Geometry_t{SectorSize: 512, TrackSize: 8, TrackCount: 1}
	d := openScratchDisk(geom)
	defer d.Close()

	reg := proc.NewRegistry()
	sub, rc := pager.NewSubsystem(pager.Config{Pages: 4, Frames: 1, Pagers: 1}, d, reg)
	if rc != defs.SUCCESS {
		log.Fatalf("pagersim: NewSubsystem: %v", rc)
	}
	defer sub.Shutdown()

	reg.Register(4, 4)
	reg.Register(5, 4)
	disp := dispatch.NewDispatcher(sub, logTerminator{})

	disp.Fault(4, 0, defs.CausePagefault)
	disp.Fault(5, 0, defs.CausePagefault)

	fmt.Println("scenario: out-of-swap")
	sub.Stats.Report(os.Stdout)
}
