// SPDX-License-Identifier: MIT
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"glow/internal/led"
	"glow/internal/mode"
)

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestNumberKeysSwitchMode(t *testing.T) {
	sel := mode.NewSelector(1)
	m := NewModel(sel)

	for _, r := range "1234567" {
		if _, _ = m.Update(keyPress(r)); sel.Current() != int(r-'0') {
			t.Errorf("key %q: selector = %d", r, sel.Current())
		}
	}

	// Out-of-range digits leave the selector alone.
	sel.Set(3)
	m.Update(keyPress('9'))
	if sel.Current() != 3 {
		t.Errorf("key 9 changed selector to %d", sel.Current())
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(mode.NewSelector(1))
	_, cmd := m.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
}

func TestFrameSnapshotAppearsInView(t *testing.T) {
	sel := mode.NewSelector(2)
	m := NewModel(sel)

	f := led.NewFrame(led.DefaultTopology())
	f.Group("circle-a").Set(0, led.RGB{255, 0, 0})

	// Route a snapshot through the sink's copy logic.
	snap := frameMsg{}
	topo := f.Topology()
	for i, g := range f.Groups {
		pixels := make([]led.RGB, len(g))
		copy(pixels, g)
		snap.groups = append(snap.groups, groupSnapshot{name: topo[i].Name, pixels: pixels})
	}
	updated, _ := m.Update(snap)
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "circle-a") {
		t.Error("view missing group name")
	}
	if !strings.Contains(view, "rotating sweep") {
		t.Error("view missing mode name")
	}
}
