// SPDX-License-Identifier: MIT
//
// Package source provides the sample acquisition stage: an abstract
// per-sample Source, concrete backends (portaudio, WAV file, synthetic)
// and the Acquirer that paces reads to the target sampling frequency and
// corrects out-of-range readings.
package source

import (
	"context"
	"fmt"
	"time"
)

// ADC range of one raw reading. Anything outside is treated as a
// transient fault and substituted.
const (
	ADCMin = 0
	ADCMax = 4095
	// ADCMid is the substitution value when the very first sample of a
	// block is out of range.
	ADCMid = 2048
)

// Source produces one instantaneous scalar sample per call, nominally in
// [ADCMin, ADCMax]. The caller paces the reads.
type Source interface {
	Next() (float64, error)
	Close() error
}

// Acquirer pulls fixed-size blocks from a Source at a fixed sampling
// interval. This is the only pipeline stage that blocks on real time:
// one block takes blockSize * interval to acquire.
type Acquirer struct {
	src      Source
	interval time.Duration
	block    []float64
}

// NewAcquirer builds an acquirer for the given source. The interval is
// 1e6/sampleRate microseconds per sample.
func NewAcquirer(src Source, sampleRate float64, blockSize int) (*Acquirer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	return &Acquirer{
		src:      src,
		interval: time.Duration(1e6/sampleRate) * time.Microsecond,
		block:    make([]float64, blockSize),
	}, nil
}

// BlockDuration returns the deterministic acquisition latency of one
// block.
func (a *Acquirer) BlockDuration() time.Duration {
	return a.interval * time.Duration(len(a.block))
}

// Acquire fills and returns one sample block. The returned slice is
// reused across calls; callers that retain samples across cycles must
// copy.
//
// Out-of-range readings are replaced by the previous sample's value, or
// mid-scale for the first sample of the block. Source errors abort the
// block; there is no retry.
func (a *Acquirer) Acquire(ctx context.Context) ([]float64, error) {
	for i := range a.block {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := a.src.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read sample %d: %w", i, err)
		}

		if v < ADCMin || v > ADCMax {
			if i > 0 {
				v = a.block[i-1]
			} else {
				v = ADCMid
			}
		}
		a.block[i] = v

		time.Sleep(a.interval)
	}
	return a.block, nil
}

// Close closes the underlying source.
func (a *Acquirer) Close() error {
	return a.src.Close()
}
