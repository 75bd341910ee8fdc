package led

import (
	"encoding/binary"
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// Serial packet types understood by the WS2812 bridge firmware.
const (
	serialPacketInit  = 0x01 // payload: uint16 LED count
	serialPacketFrame = 0x02 // payload: uint16 byte count, then RGB triples
)

// SerialSink transmits frames to a WS2812 bridge over a serial port.
// The bridge owns the strip timing; the sink only ships pixel bytes.
type SerialSink struct {
	port serial.Port

	mu          sync.Mutex
	initialized bool
	numLEDs     int
	buf         []byte // reusable packet buffer
}

// NewSerialSink opens the serial device and prepares a sink for the
// given total LED count.
func NewSerialSink(device string, baud int, numLEDs int) (*SerialSink, error) {
	if numLEDs <= 0 {
		return nil, fmt.Errorf("serial sink needs a positive LED count, got %d", numLEDs)
	}

	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	return &SerialSink{
		port:    port,
		numLEDs: numLEDs,
		buf:     make([]byte, 0, 4+3*numLEDs),
	}, nil
}

// Commit sends the frame as one packet, preceded by an init packet on
// the first call so the bridge can size its buffers.
func (s *SerialSink) Commit(f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		if err := s.writeInit(); err != nil {
			return err
		}
		s.initialized = true
	}

	s.buf = s.buf[:0]
	s.buf = append(s.buf, serialPacketFrame, 0, 0)
	s.buf = f.AppendPixels(s.buf)
	binary.BigEndian.PutUint16(s.buf[1:3], uint16(len(s.buf)-3))

	if _, err := s.port.Write(s.buf); err != nil {
		return fmt.Errorf("failed to write frame packet: %w", err)
	}
	return nil
}

func (s *SerialSink) writeInit() error {
	var pkt [3]byte
	pkt[0] = serialPacketInit
	binary.BigEndian.PutUint16(pkt[1:3], uint16(s.numLEDs))

	if _, err := s.port.Write(pkt[:]); err != nil {
		return fmt.Errorf("failed to write init packet: %w", err)
	}
	return nil
}

// Close closes the serial port.
func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

var _ Sink = (*SerialSink)(nil)
