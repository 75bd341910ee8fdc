// SPDX-License-Identifier: MIT
//
// Package led models the physical LED topology as named groups of RGB
// pixels and defines the Sink contract used to push finished frames to
// hardware or preview surfaces.
package led

import "fmt"

// RGB is a single pixel color, one byte per channel.
type RGB [3]uint8

// Off is the cleared pixel value.
var Off = RGB{}

// Group describes one independently addressable run of LEDs.
type Group struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`
}

// Topology is the ordered list of LED groups driven by the renderer.
// Group order is also the wire order: sinks transmit group 0 first.
type Topology []Group

// DefaultTopology matches the reference fixture: two circles on one
// channel and two squares on the other.
func DefaultTopology() Topology {
	return Topology{
		{Name: "circle-a", Size: 16},
		{Name: "circle-b", Size: 12},
		{Name: "square-a", Size: 16},
		{Name: "square-b", Size: 16},
	}
}

// Validate checks that every group has a name and a positive size.
func (t Topology) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("topology has no LED groups")
	}
	for i, g := range t {
		if g.Name == "" {
			return fmt.Errorf("group %d has no name", i)
		}
		if g.Size <= 0 {
			return fmt.Errorf("group %q has invalid size %d", g.Name, g.Size)
		}
	}
	return nil
}

// TotalLEDs returns the number of pixels across all groups.
func (t Topology) TotalLEDs() int {
	var n int
	for _, g := range t {
		n += g.Size
	}
	return n
}

// Index returns the position of the named group, or -1 if absent.
func (t Topology) Index(name string) int {
	for i, g := range t {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// Strip is the color buffer for one group.
type Strip []RGB

// Set sets the color of the pixel at the given index.
func (s Strip) Set(i int, c RGB) {
	s[i] = c
}

// Fill sets pixels in [start, end) to the given color. The range is
// clamped to the strip bounds.
func (s Strip) Fill(start, end int, c RGB) {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	for i := start; i < end; i++ {
		s[i] = c
	}
}

// FillAll sets every pixel to the given color.
func (s Strip) FillAll(c RGB) {
	s.Fill(0, len(s), c)
}

// IsDark reports whether every pixel is off.
func (s Strip) IsDark() bool {
	for _, c := range s {
		if c != Off {
			return false
		}
	}
	return true
}

// Frame holds one color buffer per group. Buffer lengths are fixed at
// construction and never resized.
type Frame struct {
	topo   Topology
	Groups []Strip
}

// NewFrame allocates a cleared frame for the given topology.
func NewFrame(topo Topology) *Frame {
	groups := make([]Strip, len(topo))
	for i, g := range topo {
		groups[i] = make(Strip, g.Size)
	}
	return &Frame{topo: topo, Groups: groups}
}

// Topology returns the topology the frame was built for.
func (f *Frame) Topology() Topology {
	return f.topo
}

// Group returns the buffer for the named group, or nil if absent.
func (f *Frame) Group(name string) Strip {
	if i := f.topo.Index(name); i >= 0 {
		return f.Groups[i]
	}
	return nil
}

// Clear turns every pixel in every group off.
func (f *Frame) Clear() {
	for _, g := range f.Groups {
		for i := range g {
			g[i] = Off
		}
	}
}

// IsDark reports whether every group is entirely off.
func (f *Frame) IsDark() bool {
	for _, g := range f.Groups {
		if !g.IsDark() {
			return false
		}
	}
	return true
}

// AppendPixels appends the frame's pixels in wire order (group order,
// then pixel order, three bytes per pixel) to dst and returns it.
func (f *Frame) AppendPixels(dst []byte) []byte {
	for _, g := range f.Groups {
		for _, c := range g {
			dst = append(dst, c[0], c[1], c[2])
		}
	}
	return dst
}

// Sink accepts a finished frame once per render cycle and transmits it.
// Implementations must tolerate being called from the pipeline goroutine
// at ~20 Hz without blocking it for long.
type Sink interface {
	Commit(f *Frame) error
	Close() error
}
