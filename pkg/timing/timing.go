// Package timing measures pipeline phases and renders the run summary.
package timing

import (
	"fmt"
	"time"
)

// ExecutionSummary is what a phase reports once it finishes.
type ExecutionSummary struct {
	Name    string
	Elapsed time.Duration
	// Text is a free form status line, formatted with the elapsed seconds.
	Text string
}

// String renders Text with the elapsed time filled in where the text asks
// for it (a single %.2f verb).
func (s ExecutionSummary) String() string {
	if s.Text == "" {
		return fmt.Sprintf("%s executed in %.2fs", s.Name, s.Elapsed.Seconds())
	}
	return fmt.Sprintf(s.Text, s.Elapsed.Seconds())
}

// Stopwatch accumulates time across separate stretches of work, which is
// how lazily pulled phases are measured.
type Stopwatch struct {
	total   time.Duration
	started time.Time
	running bool
	now     func() time.Time
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

// Start begins a stretch. Starting a running stopwatch does nothing.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.started = s.now()
	s.running = true
}

// Stop ends the current stretch.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	s.total += s.now().Sub(s.started)
	s.running = false
}

// Elapsed is the accumulated time, including a running stretch.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.total + s.now().Sub(s.started)
	}
	return s.total
}

// Time runs fn inside a stretch.
func (s *Stopwatch) Time(fn func() error) error {
	s.Start()
	defer s.Stop()
	return fn()
}

// EfficiencySentinel is reported when no wall time elapsed, so that an
// instantaneous run reads as 100% efficient rather than dividing by zero.
const EfficiencySentinel = 1.0

// Totals aggregates a whole run.
type Totals struct {
	Wall    time.Duration
	CPU     time.Duration
	Tracked time.Duration
}

// Efficiency is CPU over wall time.
func (t Totals) Efficiency() float64 {
	if t.Wall <= 0 {
		return EfficiencySentinel
	}
	return t.CPU.Seconds() / t.Wall.Seconds()
}

// Untracked is wall time not attributed to any measured phase.
func (t Totals) Untracked() time.Duration {
	return t.Wall - t.Tracked
}

func (t Totals) String() string {
	return fmt.Sprintf("Total wall time: %.2fs; CPU time: %.2fs; Efficiency: %.0f%%; Untracked: %.2fs",
		t.Wall.Seconds(), t.CPU.Seconds(), t.Efficiency()*100, t.Untracked().Seconds())
}

// Sum adds the elapsed times of summaries.
func Sum(summaries ...ExecutionSummary) time.Duration {
	var total time.Duration
	for _, s := range summaries {
		total += s.Elapsed
	}
	return total
}
