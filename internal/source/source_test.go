// SPDX-License-Identifier: MIT
package source

import (
	"context"
	"errors"
	"math"
	"testing"
)

// scriptedSource replays a fixed sequence of samples.
type scriptedSource struct {
	samples []float64
	pos     int
	err     error
}

func (s *scriptedSource) Next() (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.samples[s.pos%len(s.samples)]
	s.pos++
	return v, nil
}

func (s *scriptedSource) Close() error { return nil }

// acquire runs one block acquisition with a fast test clock. The test
// sample rate is high so pacing doesn't slow the suite down.
func acquire(t *testing.T, src Source, blockSize int) []float64 {
	t.Helper()
	acq, err := NewAcquirer(src, 1e6, blockSize)
	if err != nil {
		t.Fatalf("NewAcquirer failed: %v", err)
	}
	block, err := acq.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	return block
}

func TestAcquireBlockLength(t *testing.T) {
	src := &scriptedSource{samples: []float64{100}}
	block := acquire(t, src, 128)
	if len(block) != 128 {
		t.Errorf("block length = %d, expected 128", len(block))
	}
}

func TestAcquireSubstitutesFirstSample(t *testing.T) {
	src := &scriptedSource{samples: []float64{-5, 300, 400, 500}}
	block := acquire(t, src, 4)

	if block[0] != ADCMid {
		t.Errorf("first out-of-range sample = %g, expected mid-scale %d", block[0], ADCMid)
	}
}

func TestAcquireSubstitutesPreviousSample(t *testing.T) {
	src := &scriptedSource{samples: []float64{100, 5000, 200, -1}}
	block := acquire(t, src, 4)

	want := []float64{100, 100, 200, 200}
	for i := range want {
		if block[i] != want[i] {
			t.Errorf("block[%d] = %g, expected %g", i, block[i], want[i])
		}
	}
}

func TestAcquireSubstitutionChains(t *testing.T) {
	// Consecutive anomalies should all inherit the last good value.
	src := &scriptedSource{samples: []float64{300, 9999, -7, 4096}}
	block := acquire(t, src, 4)

	for i, v := range block {
		if v != 300 {
			t.Errorf("block[%d] = %g, expected 300", i, v)
		}
	}
}

func TestAcquireBoundaryValuesPass(t *testing.T) {
	src := &scriptedSource{samples: []float64{0, 4095, 0, 4095}}
	block := acquire(t, src, 4)

	want := []float64{0, 4095, 0, 4095}
	for i := range want {
		if block[i] != want[i] {
			t.Errorf("block[%d] = %g, expected %g (in-range boundaries must not be substituted)", i, block[i], want[i])
		}
	}
}

func TestAcquireSourceError(t *testing.T) {
	srcErr := errors.New("device gone")
	src := &scriptedSource{err: srcErr}
	acq, err := NewAcquirer(src, 1e6, 8)
	if err != nil {
		t.Fatalf("NewAcquirer failed: %v", err)
	}

	_, err = acq.Acquire(context.Background())
	if !errors.Is(err, srcErr) {
		t.Errorf("Acquire error = %v, expected wrapped source error", err)
	}
}

func TestAcquireHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{samples: []float64{100}}
	acq, err := NewAcquirer(src, 1e6, 8)
	if err != nil {
		t.Fatalf("NewAcquirer failed: %v", err)
	}

	if _, err := acq.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire error = %v, expected context.Canceled", err)
	}
}

func TestNewAcquirerValidation(t *testing.T) {
	src := &scriptedSource{samples: []float64{0}}

	if _, err := NewAcquirer(src, 0, 128); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := NewAcquirer(src, 10000, 0); err == nil {
		t.Error("expected error for zero block size")
	}
}

func TestBlockDuration(t *testing.T) {
	src := &scriptedSource{samples: []float64{0}}
	acq, err := NewAcquirer(src, 10000, 128)
	if err != nil {
		t.Fatalf("NewAcquirer failed: %v", err)
	}

	// 128 samples at 100µs each.
	if got := acq.BlockDuration().Milliseconds(); got != 12 {
		t.Errorf("BlockDuration = %v, expected 12.8ms", acq.BlockDuration())
	}
}

func TestSynthSourceStaysInRange(t *testing.T) {
	src := NewSynthSource(10000, 150, 5000) // amplitude clamps to mid-scale
	for i := 0; i < 1000; i++ {
		v, err := src.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if v < ADCMin || v > ADCMax {
			t.Fatalf("sample %d = %g outside ADC range", i, v)
		}
	}
}

func TestSynthSourceFrequency(t *testing.T) {
	const rate = 10000.0
	const freq = 100.0
	src := NewSynthSource(rate, freq, 1000)

	// One full period later the signal repeats.
	first, _ := src.Next()
	period := int(rate / freq)
	var again float64
	for i := 1; i <= period; i++ {
		again, _ = src.Next()
	}
	if math.Abs(first-again) > 1e-6 {
		t.Errorf("sample after one period = %g, expected %g", again, first)
	}
}
