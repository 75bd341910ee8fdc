package led

import (
	"errors"

	applog "glow/internal/log"
)

// NullSink discards frames. Used headless and in tests.
type NullSink struct{}

func (NullSink) Commit(*Frame) error { return nil }
func (NullSink) Close() error        { return nil }

// MultiSink fans a frame out to several sinks. A failing sink is logged
// and skipped for the cycle; the pipeline never stops for sink errors.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink builds a fan-out over the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Commit delivers the frame to every sink.
func (m *MultiSink) Commit(f *Frame) error {
	for _, s := range m.sinks {
		if err := s.Commit(f); err != nil {
			applog.Warnf("sink commit failed: %v", err)
		}
	}
	return nil
}

// Close closes all sinks and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink = NullSink{}
	_ Sink = (*MultiSink)(nil)
)
