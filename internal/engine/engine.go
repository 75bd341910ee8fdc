// SPDX-License-Identifier: MIT
//
// Package engine runs the acquisition-analysis-render pipeline. One
// goroutine owns the whole chain; the only shared state it touches is
// the mode selector (atomic) and the sink it commits frames to.
package engine

import (
	"context"
	"fmt"
	"time"

	"glow/internal/dsp"
	"glow/internal/led"
	"glow/internal/log"
	"glow/internal/mode"
	"glow/internal/render"
	"glow/internal/source"
)

// Config wires the pipeline stages together.
type Config struct {
	Acquirer *source.Acquirer
	Analyzer *dsp.Analyzer
	Smoother *dsp.Smoother
	Renderer *render.Renderer
	Selector *mode.Selector
	Sink     led.Sink
	Topology led.Topology

	// CycleYield is the pause between render cycles, on top of the
	// block acquisition time. Zero means the 50ms default.
	CycleYield time.Duration
	// DiagInterval paces the periodic state dump to the debug log.
	// Zero means the 5s default.
	DiagInterval time.Duration
}

// Engine is the pipeline driver.
type Engine struct {
	cfg Config

	frame *led.Frame
	raw   []float64

	cycles   uint64
	lastDiag time.Time
}

// New validates the wiring and allocates the per-cycle buffers.
func New(cfg Config) (*Engine, error) {
	if cfg.Acquirer == nil || cfg.Analyzer == nil || cfg.Smoother == nil ||
		cfg.Renderer == nil || cfg.Selector == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("engine config is missing a pipeline stage")
	}
	if err := cfg.Topology.Validate(); err != nil {
		return nil, fmt.Errorf("engine topology: %w", err)
	}
	if cfg.CycleYield <= 0 {
		cfg.CycleYield = 50 * time.Millisecond
	}
	if cfg.DiagInterval <= 0 {
		cfg.DiagInterval = 5 * time.Second
	}

	return &Engine{
		cfg:   cfg,
		frame: led.NewFrame(cfg.Topology),
		raw:   make([]float64, cfg.Analyzer.BlockSize()),
	}, nil
}

// Run drives the pipeline until ctx is cancelled or a stage fails. The
// acquire stage dominates cycle time; everything after it is pure
// computation on pre-allocated buffers.
func (e *Engine) Run(ctx context.Context) error {
	log.Infof("engine: pipeline started, block latency %v + %v yield",
		e.cfg.Acquirer.BlockDuration(), e.cfg.CycleYield)

	for {
		if err := ctx.Err(); err != nil {
			log.Infof("engine: pipeline stopped after %d cycles", e.cycles)
			return err
		}

		block, err := e.cfg.Acquirer.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Infof("engine: pipeline stopped after %d cycles", e.cycles)
				return ctx.Err()
			}
			return fmt.Errorf("acquisition failed: %w", err)
		}
		// The acquirer reuses its block; the raw mode reads it after
		// analysis, so keep our own copy.
		copy(e.raw, block)

		result := e.cfg.Analyzer.Analyze(block)
		e.cfg.Smoother.Update(result.Bands)

		m := e.cfg.Selector.Current()
		in := render.Input{
			Mode:       m,
			Bands:      result.Bands,
			Thresholds: e.cfg.Smoother.Thresholds(),
			Energy:     result.Energy,
			Raw:        e.raw,
			Now:        time.Now(),
		}
		if m == 6 {
			// The dual-path mode compares the settled chain against a
			// fresh analysis of the same block.
			in.RawBands = e.cfg.Analyzer.Analyze(e.raw).Bands
		}

		e.cfg.Renderer.Render(e.frame, in)
		if err := e.cfg.Sink.Commit(e.frame); err != nil {
			return fmt.Errorf("frame commit failed: %w", err)
		}

		e.cycles++
		e.maybeDumpDiagnostics(in, result)

		select {
		case <-ctx.Done():
		case <-time.After(e.cfg.CycleYield):
		}
	}
}

// maybeDumpDiagnostics logs pipeline state at the configured pace. The
// checks run every cycle but the formatting only happens on the slow
// path.
func (e *Engine) maybeDumpDiagnostics(in render.Input, result dsp.Result) {
	if in.Now.Sub(e.lastDiag) < e.cfg.DiagInterval {
		return
	}
	e.lastDiag = in.Now

	rawMin, rawMax := e.raw[0], e.raw[0]
	for _, v := range e.raw[1:] {
		if v < rawMin {
			rawMin = v
		}
		if v > rawMax {
			rawMax = v
		}
	}

	avg := e.cfg.Smoother.Average()
	log.Debugf("engine: cycle=%d mode=%d (%s) raw=[%.0f,%.0f] mad=%.1f bands=%.1f/%.1f/%.1f avg=%.1f/%.1f/%.1f energy=%.1f window=%d",
		e.cycles, in.Mode, render.ModeName(in.Mode),
		rawMin, rawMax, dsp.MeanAbsDeviation(e.raw),
		result.Bands.Bass, result.Bands.Mid, result.Bands.Treble,
		avg.Bass, avg.Mid, avg.Treble,
		result.Energy, e.cfg.Smoother.Count())
}
