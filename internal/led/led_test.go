// SPDX-License-Identifier: MIT
package led

import "testing"

func TestTopologyValidate(t *testing.T) {
	tests := []struct {
		name    string
		topo    Topology
		wantErr bool
	}{
		{"default", DefaultTopology(), false},
		{"empty", Topology{}, true},
		{"unnamed group", Topology{{Name: "", Size: 8}}, true},
		{"zero size", Topology{{Name: "strip", Size: 0}}, true},
		{"negative size", Topology{{Name: "strip", Size: -4}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.topo.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultTopologyTotals(t *testing.T) {
	topo := DefaultTopology()
	if got := topo.TotalLEDs(); got != 60 {
		t.Errorf("TotalLEDs() = %d, expected 60", got)
	}
	if i := topo.Index("circle-b"); i != 1 {
		t.Errorf("Index(circle-b) = %d, expected 1", i)
	}
	if i := topo.Index("missing"); i != -1 {
		t.Errorf("Index(missing) = %d, expected -1", i)
	}
}

func TestStripFillClamps(t *testing.T) {
	s := make(Strip, 8)
	red := RGB{255, 0, 0}

	s.Fill(-2, 3, red)
	for i := 0; i < 3; i++ {
		if s[i] != red {
			t.Errorf("pixel %d = %v, expected red", i, s[i])
		}
	}
	for i := 3; i < 8; i++ {
		if s[i] != Off {
			t.Errorf("pixel %d = %v, expected off", i, s[i])
		}
	}

	s.Fill(6, 20, red)
	if s[7] != red {
		t.Error("Fill past end should clamp to strip length")
	}
}

func TestFrameClearAndDark(t *testing.T) {
	f := NewFrame(DefaultTopology())
	if !f.IsDark() {
		t.Error("new frame should be dark")
	}

	f.Group("square-a").Set(3, RGB{0, 255, 0})
	if f.IsDark() {
		t.Error("frame with a lit pixel should not be dark")
	}

	f.Clear()
	if !f.IsDark() {
		t.Error("cleared frame should be dark")
	}
}

func TestFrameGroupLookup(t *testing.T) {
	f := NewFrame(DefaultTopology())
	if g := f.Group("circle-a"); len(g) != 16 {
		t.Errorf("circle-a length = %d, expected 16", len(g))
	}
	if g := f.Group("nonexistent"); g != nil {
		t.Error("unknown group should return nil")
	}
}

func TestAppendPixelsWireOrder(t *testing.T) {
	topo := Topology{{Name: "a", Size: 2}, {Name: "b", Size: 1}}
	f := NewFrame(topo)
	f.Group("a").Set(1, RGB{1, 2, 3})
	f.Group("b").Set(0, RGB{4, 5, 6})

	got := f.AppendPixels(nil)
	want := []byte{0, 0, 0, 1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("pixel byte count = %d, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %d, expected %d", i, got[i], want[i])
		}
	}
}

func TestAppendPixelsZeroAllocs(t *testing.T) {
	f := NewFrame(DefaultTopology())
	buf := make([]byte, 0, 3*f.Topology().TotalLEDs())

	allocs := testing.AllocsPerRun(100, func() {
		buf = f.AppendPixels(buf[:0])
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in AppendPixels, got %.1f", allocs)
	}
}
