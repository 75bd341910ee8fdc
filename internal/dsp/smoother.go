// SPDX-License-Identifier: MIT
package dsp

// SmootherConfig holds the temporal smoothing parameters. The threshold
// multipliers are hand-calibrated for the reference fixture.
type SmootherConfig struct {
	// WindowCap is the saturation point of the sample count. Until the
	// cap is reached the average is a true cumulative mean; afterwards
	// it behaves as an exponentially weighted average with an effective
	// window of WindowCap cycles.
	WindowCap int

	BassMult   float64
	MidMult    float64
	TrebleMult float64
}

// Thresholds are the per-band gate values derived from the smoothed
// amplitudes. Tiered render modes compare instantaneous amplitudes
// against ascending multiples of these.
type Thresholds struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Smoother maintains the saturating moving average of band amplitudes
// across analysis cycles. It is owned by the pipeline goroutine and is
// never reset except at process start.
type Smoother struct {
	cfg   SmootherConfig
	avg   BandAmplitudes
	count int
}

// NewSmoother returns a smoother with zeroed state.
func NewSmoother(cfg SmootherConfig) *Smoother {
	if cfg.WindowCap <= 0 {
		cfg.WindowCap = 50
	}
	if cfg.BassMult == 0 {
		cfg.BassMult = 0.8
	}
	if cfg.MidMult == 0 {
		cfg.MidMult = 1.2
	}
	if cfg.TrebleMult == 0 {
		cfg.TrebleMult = 0.8
	}
	return &Smoother{cfg: cfg}
}

// Update folds one cycle's band amplitudes into the moving average and
// returns the updated average. avg = (avg*count + v) / (count+1), with
// count saturating at the window cap.
func (s *Smoother) Update(b BandAmplitudes) BandAmplitudes {
	c := float64(s.count)
	s.avg.Bass = (s.avg.Bass*c + b.Bass) / (c + 1)
	s.avg.Mid = (s.avg.Mid*c + b.Mid) / (c + 1)
	s.avg.Treble = (s.avg.Treble*c + b.Treble) / (c + 1)

	if s.count < s.cfg.WindowCap {
		s.count++
	}
	return s.avg
}

// Thresholds derives the per-band gate values from the current average.
func (s *Smoother) Thresholds() Thresholds {
	return Thresholds{
		Bass:   s.avg.Bass * s.cfg.BassMult,
		Mid:    s.avg.Mid * s.cfg.MidMult,
		Treble: s.avg.Treble * s.cfg.TrebleMult,
	}
}

// Average returns the current smoothed amplitudes.
func (s *Smoother) Average() BandAmplitudes {
	return s.avg
}

// Count returns the saturating sample count, capped at the window cap.
func (s *Smoother) Count() int {
	return s.count
}

// Reset clears the average and the sample count.
func (s *Smoother) Reset() {
	s.avg = BandAmplitudes{}
	s.count = 0
}
