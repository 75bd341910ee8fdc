// SPDX-License-Identifier: MIT
//
// Package render maps one cycle's band amplitudes, thresholds and energy
// to per-LED colors for the active mode. Aside from the sweep position,
// rendering is a pure function of the cycle's inputs and fixed tuning
// constants.
package render

import (
	"fmt"
	"time"

	"glow/internal/dsp"
	"glow/internal/led"
)

// Group names the renderer requires in the topology.
const (
	GroupCircleA = "circle-a"
	GroupCircleB = "circle-b"
	GroupSquareA = "square-a"
	GroupSquareB = "square-b"
)

// Fixed palette. Band colors follow the bass=red, mid=green,
// treble=blue convention of the fixture.
var (
	colorBass   = led.RGB{255, 0, 0}
	colorMid    = led.RGB{0, 255, 0}
	colorTreble = led.RGB{0, 0, 255}
	colorRaw    = led.RGB{255, 160, 0}
	colorBucket = led.RGB{255, 255, 0}
)

// Config holds the hand-calibrated render constants.
type Config struct {
	// WashCeiling is the total-amplitude input ceiling for the
	// single-group brightness wash (mode 3).
	WashCeiling float64
	// CombinedCeiling is the ceiling for the all-groups wash (mode 7).
	CombinedCeiling float64
	// RawCeiling is the mean-absolute-deviation ceiling for the
	// raw-signal mode (mode 4).
	RawCeiling float64
	// BucketWidth is the energy step per lit LED in mode 5.
	BucketWidth float64
	// MaxSweepDelay caps the sweep step delay. The energy-derived delay
	// is 1e6/energy microseconds; at zero energy the cap applies and the
	// sweep simply holds its position.
	MaxSweepDelay time.Duration
}

// DefaultConfig returns the constants calibrated for the reference
// microphone and fixture.
func DefaultConfig() Config {
	return Config{
		WashCeiling:     600,
		CombinedCeiling: 1500,
		RawCeiling:      500,
		BucketWidth:     250,
		MaxSweepDelay:   time.Second,
	}
}

// Input carries everything one render step consumes.
type Input struct {
	Mode       int
	Bands      dsp.BandAmplitudes
	RawBands   dsp.BandAmplitudes // second-path amplitudes, mode 6 only
	Thresholds dsp.Thresholds
	Energy     float64
	Raw        []float64 // unfiltered sample block, mode 4 only
	Now        time.Time
}

// tierSegment is a named sub-range of a group lit in proportion to one
// band's amplitude.
type tierSegment struct {
	start int
	size  int
	mults []float64
	color led.RGB
}

// Tier boundaries from the fixture: the bass segment has five
// boundaries (6 tiers), mid and treble four (5 tiers). Segment sizes
// tile a 16-LED group as 6+5+5.
var bandSegments = []tierSegment{
	{start: 0, size: 6, mults: []float64{1, 1.25, 1.5, 1.75, 2}, color: colorBass},
	{start: 6, size: 5, mults: []float64{1, 1.3, 1.6, 1.9}, color: colorMid},
	{start: 11, size: 5, mults: []float64{1, 1.3, 1.6, 1.9}, color: colorTreble},
}

// Renderer computes frames for the mode selected each cycle. The only
// cross-cycle state is the rotating sweep position.
type Renderer struct {
	cfg  Config
	topo led.Topology

	sweepPos  int
	lastSweep time.Time
}

// NewRenderer checks that the topology carries the four groups the mode
// table addresses and returns a renderer.
func NewRenderer(cfg Config, topo led.Topology) (*Renderer, error) {
	for _, name := range []string{GroupCircleA, GroupCircleB, GroupSquareA, GroupSquareB} {
		i := topo.Index(name)
		if i < 0 {
			return nil, fmt.Errorf("topology is missing group %q", name)
		}
		if name == GroupCircleA || name == GroupSquareA || name == GroupSquareB {
			if topo[i].Size < 16 {
				return nil, fmt.Errorf("group %q needs at least 16 LEDs, has %d", name, topo[i].Size)
			}
		}
	}
	return &Renderer{cfg: cfg, topo: topo}, nil
}

// Render clears the frame and draws the active mode into it. An
// unrecognized mode leaves the frame cleared; that is a silent no-op,
// not an error.
func (r *Renderer) Render(f *led.Frame, in Input) {
	f.Clear()

	switch in.Mode {
	case 1:
		r.renderTiered(f, in)
	case 2:
		r.renderSweep(f, in)
	case 3:
		r.renderWash(f, in)
	case 4:
		r.renderRawSignal(f, in)
	case 5:
		r.renderBuckets(f, in)
	case 6:
		r.renderDualPath(f, in)
	case 7:
		r.renderCombined(f, in)
	}
}

// Mode 1: tiered bars on circle A, one segment per band.
func (r *Renderer) renderTiered(f *led.Frame, in Input) {
	fillTiers(f.Group(GroupCircleA), in.Bands, in.Thresholds, false)
}

// Mode 2: energy-paced rotating sweep on circle B. Louder signal means
// a shorter step delay and a faster sweep; silence holds the position.
func (r *Renderer) renderSweep(f *led.Frame, in Input) {
	strip := f.Group(GroupCircleB)

	delay := r.cfg.MaxSweepDelay
	if in.Energy > 0 {
		d := time.Duration(1e6/in.Energy) * time.Microsecond
		if d < delay {
			delay = d
		}
	}
	if in.Now.Sub(r.lastSweep) >= delay {
		r.sweepPos = (r.sweepPos + 1) % len(strip)
		r.lastSweep = in.Now
	}

	b := scale(in.Bands.Mean(), r.cfg.WashCeiling, 255)
	if b > 0 {
		strip.Set(r.sweepPos, led.RGB{0, uint8(b), uint8(b)})
	}
}

// Mode 3: brightness wash over both circles.
func (r *Renderer) renderWash(f *led.Frame, in Input) {
	b := uint8(scale(in.Bands.Mean(), r.cfg.WashCeiling, 255))
	c := led.RGB{b, 0, b}
	f.Group(GroupCircleA).FillAll(c)
	f.Group(GroupCircleB).FillAll(c)
}

// Mode 4: raw-signal mode on square A. The mean absolute deviation of
// the unfiltered block maps to a lit count over three 4-LED columns, so
// the column boundaries fall at counts 4 and 8.
func (r *Renderer) renderRawSignal(f *led.Frame, in Input) {
	strip := f.Group(GroupSquareA)
	count := scale(dsp.MeanAbsDeviation(in.Raw), r.cfg.RawCeiling, 12)

	for col := 0; col < 3 && count > 0; col++ {
		lit := count
		if lit > 4 {
			lit = 4
		}
		strip.Fill(col*4, col*4+lit, colorRaw)
		count -= lit
	}
}

// Mode 5: energy-bucketed fill on square B. The bucket index selects
// the lit count, saturating at the group length.
func (r *Renderer) renderBuckets(f *led.Frame, in Input) {
	strip := f.Group(GroupSquareB)

	count := int(in.Energy / r.cfg.BucketWidth)
	if count > len(strip) {
		count = len(strip)
	}
	strip.Fill(0, count, colorBucket)
}

// Mode 6: dual-path mode. Square A shows the live-path bands low to
// high, square B the raw-path bands high to low, mirrored.
func (r *Renderer) renderDualPath(f *led.Frame, in Input) {
	fillTiers(f.Group(GroupSquareA), in.Bands, in.Thresholds, false)
	fillTiers(f.Group(GroupSquareB), in.RawBands, in.Thresholds, true)
}

// Mode 7: combined wash across every group, with the wider input range.
func (r *Renderer) renderCombined(f *led.Frame, in Input) {
	b := uint8(scale(in.Bands.Mean(), r.cfg.CombinedCeiling, 255))
	c := led.RGB{b, 0, b}
	for _, g := range f.Groups {
		g.FillAll(c)
	}
}

// fillTiers lights a prefix run of each band segment. The lit count is
// 1 plus the number of threshold multiples at or below the amplitude,
// saturating at the segment size. A silent band (or an unsettled zero
// threshold) lights nothing, keeping the all-dark invariant for silent
// input.
func fillTiers(strip led.Strip, bands dsp.BandAmplitudes, th dsp.Thresholds, mirrored bool) {
	amps := [3]float64{bands.Bass, bands.Mid, bands.Treble}
	gates := [3]float64{th.Bass, th.Mid, th.Treble}

	for i, seg := range bandSegments {
		n := tierCount(amps[i], gates[i], seg.mults)
		if n > seg.size {
			n = seg.size
		}
		for j := 0; j < n; j++ {
			idx := seg.start + j
			if mirrored {
				idx = len(strip) - 1 - idx
			}
			strip.Set(idx, seg.color)
		}
	}
}

// tierCount returns how many LEDs of a segment to light: 0 for silence,
// otherwise one LED plus one more per threshold multiple reached.
func tierCount(amp, threshold float64, mults []float64) int {
	if amp <= 0 || threshold <= 0 {
		return 0
	}
	n := 1
	for _, m := range mults {
		if amp >= threshold*m {
			n++
		}
	}
	return n
}

// scale implements the clamp-then-scale map from [0, inMax] to
// [0, outMax].
func scale(v, inMax float64, outMax int) int {
	if v <= 0 || inMax <= 0 {
		return 0
	}
	if v >= inMax {
		return outMax
	}
	return int(v / inMax * float64(outMax))
}

// ModeName returns a short label for a mode, used by the preview UI
// and diagnostics.
func ModeName(m int) string {
	switch m {
	case 1:
		return "tiered bars"
	case 2:
		return "rotating sweep"
	case 3:
		return "circle wash"
	case 4:
		return "raw signal"
	case 5:
		return "energy buckets"
	case 6:
		return "dual path"
	case 7:
		return "combined wash"
	default:
		return "off"
	}
}
