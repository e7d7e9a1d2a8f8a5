package common

import (
	"time"
)

// Timer slots used by the CG benchmark.
const (
	TimerInit = iota
	TimerBench
	TimerConjGrad
	NumTimers
)

// Timers is a set of accumulating stopwatches. Each benchmark run owns
// its own set; there is no package-level timer state.
type Timers struct {
	enabled bool
	start   [NumTimers]time.Time
	elapsed [NumTimers]time.Duration
	now     func() time.Time
}

// NewTimers returns a cleared set. Disabled timers still measure
// TimerBench, which the report always needs; enabled only controls
// whether the section table is printed.
func NewTimers(enabled bool) *Timers {
	return &Timers{enabled: enabled, now: time.Now}
}

// Enabled reports whether the section breakdown was requested.
func (t *Timers) Enabled() bool {
	return t.enabled
}

func (t *Timers) Clear(n int) {
	t.elapsed[n] = 0
}

func (t *Timers) Start(n int) {
	t.start[n] = t.now()
}

func (t *Timers) Stop(n int) {
	t.elapsed[n] += t.now().Sub(t.start[n])
}

// Read returns the accumulated time of slot n in seconds.
func (t *Timers) Read(n int) float64 {
	return t.elapsed[n].Seconds()
}

// ReadDuration returns the accumulated time of slot n.
func (t *Timers) ReadDuration(n int) time.Duration {
	return t.elapsed[n]
}

// Time runs fn with slot n started and stops it afterwards.
func (t *Timers) Time(n int, fn func()) {
	t.Start(n)
	defer t.Stop(n)
	fn()
}
