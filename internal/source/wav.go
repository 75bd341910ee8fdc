package source

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// WAVSource replays a WAV file as ADC-range samples, looping forever.
// The whole file is decoded up front; real-time pacing is the
// Acquirer's job.
type WAVSource struct {
	samples []float64
	pos     int
}

// NewWAVSource decodes the first channel of the given WAV file and
// rescales it to ADC counts centered on mid-scale.
func NewWAVSource(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV file %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || len(buf.Data) == 0 {
		return nil, fmt.Errorf("WAV file %s contains no usable audio", path)
	}

	// Full-scale PCM maps to the full ADC swing around mid-scale.
	fullScale := float64(int(1) << (buf.SourceBitDepth - 1))
	channels := buf.Format.NumChannels

	samples := make([]float64, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		v := float64(buf.Data[i]) / fullScale
		samples = append(samples, ADCMid+v*(ADCMid-1))
	}

	return &WAVSource{samples: samples}, nil
}

// Next returns the next sample, wrapping to the start at end of file.
func (s *WAVSource) Next() (float64, error) {
	v := s.samples[s.pos]
	s.pos++
	if s.pos >= len(s.samples) {
		s.pos = 0
	}
	return v, nil
}

// Close is a no-op; the file is fully decoded at construction.
func (s *WAVSource) Close() error { return nil }

var _ Source = (*WAVSource)(nil)
