// Package stats holds the subsystem's observable counters, a pprof-format
// latency profile of fault service times, and a conditional debug logger.
// Grounded on biscuit's stats.Counter_t (const-gated atomic counters,
// zero-cost when disabled) and original_source/phase3d.c's
// debugging3/debug3 pair (a single compile-time flag gating all
// diagnostic output), merged into one runtime-toggled logger since this
// subsystem has no separate debug build.
package stats

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/pprof/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// / Counter_t is an atomic statistical counter, always live — unlike
// / biscuit's Stats-gated Counter_t, this subsystem's counters are cheap
// / enough, and useful enough for the end-to-end scenarios in §8, to keep
// / on unconditionally.
type Counter_t int64

// / Inc increments the counter by one.
func (c *Counter_t) Inc() { atomic.AddInt64((*int64)(c), 1) }

// / Value reads the counter.
func (c *Counter_t) Value() int64 { return atomic.LoadInt64((*int64)(c)) }

// / Counters_t is the full set of observable statistics the pager pool
// / publishes (spec §4.A "publishes the initial free-frame count" and the
// / general "observable statistics" language throughout §4).
type Counters_t struct {
	Faults           Counter_t
	AccessViolations Counter_t
	SwapIns          Counter_t
	SwapInHits       Counter_t
	SwapOuts         Counter_t
	WriteBacks       Counter_t
	OutOfSwap        Counter_t
	PTECommits       Counter_t
}

// / Report renders the counters as a human-readable table, using
// / golang.org/x/text/message for locale-aware thousands separators
// / instead of hand-rolled string formatting.
func (c *Counters_t) Report(w io.Writer) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "faults:            %d\n", c.Faults.Value())
	p.Fprintf(w, "access violations: %d\n", c.AccessViolations.Value())
	p.Fprintf(w, "swap-ins:          %d\n", c.SwapIns.Value())
	p.Fprintf(w, "swap-in hits:      %d\n", c.SwapInHits.Value())
	p.Fprintf(w, "swap-outs:         %d\n", c.SwapOuts.Value())
	p.Fprintf(w, "write-backs:       %d\n", c.WriteBacks.Value())
	p.Fprintf(w, "out-of-swap:       %d\n", c.OutOfSwap.Value())
	p.Fprintf(w, "PTE commits:       %d\n", c.PTECommits.Value())
}

// / Logger_t is a conditional debug logger: Debugf writes only when
// / Enabled is set, mirroring phase3d.c's debugging3 flag without paying
// / for a recompile to flip it.
type Logger_t struct {
	Enabled bool
	l       *log.Logger
}

// / NewLogger wraps w in a Logger_t, initially disabled.
func NewLogger(w io.Writer) *Logger_t {
	return &Logger_t{l: log.New(w, "pager: ", log.LstdFlags|log.Lmicroseconds)}
}

// / Debugf writes a formatted line when the logger is enabled.
func (lg *Logger_t) Debugf(format string, args ...interface{}) {
	if lg == nil || !lg.Enabled {
		return
	}
	lg.l.Printf(format, args...)
}

// / LatencyProfile_t accumulates fault service latencies as real pprof
// / samples, rather than a hand-rolled histogram, so the resulting profile
// / can be inspected with any pprof-compatible tool.
type LatencyProfile_t struct {
	samples []time.Duration
}

// / Observe records one fault's service latency.
func (lp *LatencyProfile_t) Observe(d time.Duration) {
	lp.samples = append(lp.samples, d)
}

// / WriteTo serializes the recorded latencies as a gzip-compressed pprof
// / profile with a single "fault-latency" sample type measured in
// / nanoseconds.
func (lp *LatencyProfile_t) WriteTo(w io.Writer) error {
	valType := &profile.ValueType{Type: "fault-latency", Unit: "nanoseconds"}
	loc := &profile.Location{ID: 1}
	fn := &profile.Function{ID: 1, Name: "pager.fault"}
	loc.Line = []profile.Line{{Function: fn, Line: 1}}

	p := &profile.Profile{
		SampleType: []*profile.ValueType{valType},
		Function:   []*profile.Function{fn},
		Location:   []*profile.Location{loc},
		TimeNanos:  time.Now().UnixNano(),
	}
	for _, d := range lp.samples {
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{d.Nanoseconds()},
		})
	}
	if err := p.CheckValid(); err != nil {
		return fmt.Errorf("stats: invalid profile: %w", err)
	}
	return p.Write(w)
}

// / Len reports how many samples have been recorded.
func (lp *LatencyProfile_t) Len() int { return len(lp.samples) }
