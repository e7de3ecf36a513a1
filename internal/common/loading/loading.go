// Package loading coordinates a single shared busy indicator across
// concurrently in-flight requests. The indicator is shown while at least one
// tracked request is outstanding and hidden when the last one completes.
package loading

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Indicator is the user-visible busy signal driven by the coordinator.
// Show is called when the in-flight count transitions 0→1, Hide when it
// returns to 0. Implementations must tolerate being driven from multiple
// goroutines; the coordinator serializes calls.
type Indicator interface {
	Show()
	Hide()
}

// NopIndicator discards Show/Hide calls. Useful for tests and for requests
// that should never surface a busy state.
type NopIndicator struct{}

func (NopIndicator) Show() {}
func (NopIndicator) Hide() {}

// Coordinator reference-counts in-flight requests and drives the indicator.
// Begin and End calls must be paired; the pipeline guarantees this on every
// exit path.
type Coordinator struct {
	mu        sync.Mutex
	count     int
	indicator Indicator
}

// NewCoordinator creates a coordinator driving the given indicator.
// A nil indicator is replaced with NopIndicator.
func NewCoordinator(indicator Indicator) *Coordinator {
	if indicator == nil {
		indicator = NopIndicator{}
	}
	return &Coordinator{indicator: indicator}
}

// Begin registers one in-flight request. Shows the indicator on the 0→1
// transition.
func (c *Coordinator) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.count == 1 {
		c.indicator.Show()
	}
}

// End retires one in-flight request. Hides the indicator on the 1→0
// transition. An unpaired End is a caller bug; the count is clamped at zero
// so the indicator state cannot drift.
func (c *Coordinator) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		log.Warn().Msg("loading coordinator: End without matching Begin")
		return
	}
	c.count--
	if c.count == 0 {
		c.indicator.Hide()
	}
}

// Count returns the current number of tracked in-flight requests.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Visible reports whether the indicator is currently shown.
func (c *Coordinator) Visible() bool {
	return c.Count() > 0
}
