package led

import (
	"fmt"
	"net"
	"sync"

	applog "glow/internal/log"
)

// WLED realtime protocol constants. DRGB carries up to 490 pixels per
// datagram, far above the fixture's total, so one datagram per frame.
const (
	wledProtoDRGB   = 2
	wledHoldSeconds = 2 // seconds WLED keeps showing the frame after packets stop
)

// UDPSink sends frames as WLED DRGB realtime datagrams.
type UDPSink struct {
	conn *net.UDPConn

	mu     sync.Mutex
	closed bool
	buf    []byte
}

// NewUDPSink resolves the target address ("host:port") and dials it.
func NewUDPSink(target string, numLEDs int) (*UDPSink, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target '%s': %w", target, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target '%s': %w", target, err)
	}

	applog.Infof("UDP sink: sending DRGB frames to %s", conn.RemoteAddr())

	return &UDPSink{
		conn: conn,
		buf:  make([]byte, 0, 2+3*numLEDs),
	}, nil
}

// Commit packs the frame into one DRGB datagram and sends it.
func (s *UDPSink) Commit(f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("UDP sink is closed")
	}

	s.buf = s.buf[:0]
	s.buf = append(s.buf, wledProtoDRGB, wledHoldSeconds)
	s.buf = f.AppendPixels(s.buf)

	if _, err := s.conn.Write(s.buf); err != nil {
		return fmt.Errorf("failed to send DRGB datagram: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *UDPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

var _ Sink = (*UDPSink)(nil)
