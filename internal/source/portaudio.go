package source

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DefaultDeviceID selects the system default input device.
const DefaultDeviceID = -1

// Chunk size for the blocking stream reads feeding Next.
const captureFrames = 256

// Initialize sets up the PortAudio subsystem. Must be called before any
// capture and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts the PortAudio subsystem down.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// PortAudioSource captures mono samples from an input device and
// rescales them to ADC counts.
type PortAudioSource struct {
	stream *portaudio.Stream
	buf    []float32
	pos    int
}

// NewPortAudioSource opens a mono input stream on the given device at
// the given rate. Initialize must have been called.
func NewPortAudioSource(deviceID int, sampleRate float64) (*PortAudioSource, error) {
	device, err := inputDevice(deviceID)
	if err != nil {
		return nil, err
	}

	src := &PortAudioSource{
		buf: make([]float32, captureFrames),
		pos: captureFrames, // force a read on the first Next
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  device.DefaultHighInputLatency,
		},
		FramesPerBuffer: captureFrames,
		SampleRate:      sampleRate,
	}

	stream, err := portaudio.OpenStream(params, src.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}

	src.stream = stream
	return src, nil
}

// Next returns one sample in ADC counts, refilling the capture buffer
// from the stream as needed.
func (s *PortAudioSource) Next() (float64, error) {
	if s.pos >= len(s.buf) {
		if err := s.stream.Read(); err != nil {
			return 0, fmt.Errorf("failed to read from input stream: %w", err)
		}
		s.pos = 0
	}

	v := float64(s.buf[s.pos])
	s.pos++

	sample := ADCMid + v*(ADCMid-1)
	if sample < ADCMin {
		sample = ADCMin
	} else if sample > ADCMax {
		sample = ADCMax
	}
	return sample, nil
}

// Close stops and closes the stream.
func (s *PortAudioSource) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}

var _ Source = (*PortAudioSource)(nil)

// inputDevice resolves a device ID to a PortAudio input device.
// DefaultDeviceID maps to the system default.
func inputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultDeviceID {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices prints every audio device with its type, channel counts,
// sample rate and latency range.
func ListDevices() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")

	for i, device := range devices {
		deviceType := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case device.MaxInputChannels > 0:
			deviceType = "Input"
		case device.MaxOutputChannels > 0:
			deviceType = "Output"
		}

		fmt.Printf("[%d] %s (%s)\n", i, device.Name, deviceType)
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
		fmt.Println()
	}

	return nil
}
