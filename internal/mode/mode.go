// Package mode holds the shared render-mode cell. The HTTP server is the
// single writer, the render loop the single reader; atomic word access is
// the only synchronization the contract requires.
package mode

import "sync/atomic"

// Mode bounds. Values outside [Min, Max] render nothing.
const (
	Min = 1
	Max = 7
)

// Selector is the externally mutable render-mode flag.
type Selector struct {
	v atomic.Int32
}

// NewSelector returns a selector starting at the given mode.
func NewSelector(initial int) *Selector {
	s := &Selector{}
	s.v.Store(int32(initial))
	return s
}

// Set stores the mode. Out-of-range values are stored as-is; the
// renderer treats them as "leave the frame cleared".
func (s *Selector) Set(m int) {
	s.v.Store(int32(m))
}

// Current returns the mode. Polled once per render cycle.
func (s *Selector) Current() int {
	return int(s.v.Load())
}

// Valid reports whether m is a recognized render mode.
func Valid(m int) bool {
	return m >= Min && m <= Max
}
