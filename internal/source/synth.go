package source

import "math"

// SynthSource generates a pure sinusoid in ADC counts. Used for demos
// and tests where no microphone is available.
type SynthSource struct {
	sampleRate float64
	frequency  float64
	amplitude  float64
	n          int
}

// NewSynthSource returns a sinusoid generator centered on mid-scale.
// The amplitude is in ADC counts and is clamped so the output stays in
// range.
func NewSynthSource(sampleRate, frequency, amplitude float64) *SynthSource {
	if amplitude > ADCMid-1 {
		amplitude = ADCMid - 1
	}
	return &SynthSource{
		sampleRate: sampleRate,
		frequency:  frequency,
		amplitude:  amplitude,
	}
}

// Next returns the next sample of the sinusoid.
func (s *SynthSource) Next() (float64, error) {
	tm := float64(s.n) / s.sampleRate
	s.n++
	return ADCMid + s.amplitude*math.Sin(2*math.Pi*s.frequency*tm), nil
}

// Close is a no-op for the generator.
func (s *SynthSource) Close() error { return nil }

var _ Source = (*SynthSource)(nil)
