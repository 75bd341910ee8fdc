// SPDX-License-Identifier: MIT
//
// Package dsp implements the spectral analysis pipeline: DC removal, IIR
// smoothing, Hamming windowing, a full complex FFT, magnitude
// extraction, frequency-band aggregation and energy normalization.
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"glow/pkg/bitint"
)

// First-order IIR smoothing filter: y[i] = 0.7*y[i-1] + 0.3*x[i].
// The coefficients sum to 1, so the filter has unity DC gain.
const (
	iirFeedback = 0.7
	iirFeed     = 0.3
)

// Band partition of the transform indices. The split is structural:
// [0,bassEnd) is bass, [bassEnd,midEnd) is mid, [midEnd,N) is treble.
const (
	bassEnd = 20
	midEnd  = 80
)

// BandAmplitudes are the three per-band mean magnitudes for one block.
type BandAmplitudes struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Mean returns the average of the three bands, the "total amplitude"
// the brightness-wash render modes consume.
func (b BandAmplitudes) Mean() float64 {
	return (b.Bass + b.Mid + b.Treble) / 3
}

// Result is the output of one analysis cycle.
type Result struct {
	Bands BandAmplitudes
	// Energy is the RMS of all transform magnitudes for the block.
	Energy float64
}

// AnalyzerConfig holds the fixed analysis parameters. The gains are
// empirically tuned for the reference microphone and treated as plain
// configuration, not derived values.
type AnalyzerConfig struct {
	SampleRate float64
	BlockSize  int
	BassGain   float64
	MidGain    float64
	TrebleGain float64
}

// Analyzer runs the fixed-order spectral pipeline over sample blocks.
// All buffers are pre-allocated; Analyze performs no allocations.
type Analyzer struct {
	cfg AnalyzerConfig

	fft       *fourier.CmplxFFT
	window    []float64    // Hamming coefficients
	scratch   []float64    // working copy of the block
	timeBuf   []complex128 // complex input to the transform
	freqBuf   []complex128 // transform output
	magnitude []float64
}

// NewAnalyzer validates the configuration and pre-computes the window
// coefficients and FFT plan.
func NewAnalyzer(cfg AnalyzerConfig) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(cfg.BlockSize) {
		return nil, fmt.Errorf("block size must be a power of 2, got %d", cfg.BlockSize)
	}
	if cfg.BlockSize <= midEnd {
		return nil, fmt.Errorf("block size %d leaves no treble bins (need > %d)", cfg.BlockSize, midEnd)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", cfg.SampleRate)
	}

	// Pre-compute the Hamming coefficients once; the window functions
	// multiply in place, so seed with ones.
	coeffs := make([]float64, cfg.BlockSize)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	window.Hamming(coeffs)

	return &Analyzer{
		cfg:       cfg,
		fft:       fourier.NewCmplxFFT(cfg.BlockSize),
		window:    coeffs,
		scratch:   make([]float64, cfg.BlockSize),
		timeBuf:   make([]complex128, cfg.BlockSize),
		freqBuf:   make([]complex128, cfg.BlockSize),
		magnitude: make([]float64, cfg.BlockSize),
	}, nil
}

// BlockSize returns the configured transform size.
func (a *Analyzer) BlockSize() int {
	return a.cfg.BlockSize
}

// BinWidth returns the frequency resolution of one transform bin in Hz.
func (a *Analyzer) BinWidth() float64 {
	return a.cfg.SampleRate / float64(a.cfg.BlockSize)
}

// Analyze runs the full pipeline over one sample block. The input is not
// modified; its length must equal the configured block size.
//
// Steps, in fixed order with no early exit: DC removal, IIR smoothing,
// Hamming window, forward transform, magnitudes, band aggregation, RMS
// energy, energy normalization (skipped for a silent block so no
// division by zero can occur).
func (a *Analyzer) Analyze(block []float64) Result {
	n := a.cfg.BlockSize
	copy(a.scratch, block)

	removeDC(a.scratch)
	applyIIR(a.scratch)

	// Window, then transform. The full complex FFT keeps all N bins so
	// the treble range [midEnd, N) exists in the spectrum.
	for i := range a.scratch {
		a.timeBuf[i] = complex(a.scratch[i]*a.window[i], 0)
	}
	a.fft.Coefficients(a.freqBuf, a.timeBuf)

	for i, c := range a.freqBuf {
		a.magnitude[i] = cmplx.Abs(c)
	}

	// Band aggregation: mean magnitude per fixed index range.
	var bass, mid, treble float64
	for i, m := range a.magnitude {
		switch {
		case i < bassEnd:
			bass += m
		case i < midEnd:
			mid += m
		default:
			treble += m
		}
	}
	bass /= float64(bassEnd)
	mid /= float64(midEnd - bassEnd)
	treble /= float64(n - midEnd)

	// Energy: RMS over all N magnitudes.
	var sumSquares float64
	for _, m := range a.magnitude {
		sumSquares += m * m
	}
	energy := math.Sqrt(sumSquares / float64(n))

	// Normalization; a silent block leaves the bands untouched.
	if energy > 0 {
		bass = bass / energy * a.cfg.BassGain
		mid = mid / energy * a.cfg.MidGain
		treble = treble / energy * a.cfg.TrebleGain
	}

	return Result{
		Bands:  BandAmplitudes{Bass: bass, Mid: mid, Treble: treble},
		Energy: energy,
	}
}

// removeDC subtracts the block mean from every sample, eliminating the
// zero-frequency component.
func removeDC(buf []float64) {
	var mean float64
	for _, v := range buf {
		mean += v
	}
	mean /= float64(len(buf))
	for i := range buf {
		buf[i] -= mean
	}
}

// applyIIR runs the causal first-order recursive filter in place;
// y[0] = x[0].
func applyIIR(buf []float64) {
	prev := buf[0]
	for i := 1; i < len(buf); i++ {
		prev = iirFeedback*prev + iirFeed*buf[i]
		buf[i] = prev
	}
}

// MeanAbsDeviation returns the mean absolute deviation of a raw block
// from its own mean. The raw-signal render mode consumes this directly,
// bypassing the spectral path.
func MeanAbsDeviation(block []float64) float64 {
	if len(block) == 0 {
		return 0
	}

	var mean float64
	for _, v := range block {
		mean += v
	}
	mean /= float64(len(block))

	var dev float64
	for _, v := range block {
		dev += math.Abs(v - mean)
	}
	return dev / float64(len(block))
}
