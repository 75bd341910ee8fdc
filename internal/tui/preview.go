// SPDX-License-Identifier: MIT
//
// Package tui renders a live terminal preview of the LED fixture and
// maps the number keys to the render modes, so the controller can be
// driven without any hardware attached.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"glow/internal/led"
	"glow/internal/mode"
	"glow/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	groupNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Width(10)

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#333333"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

var keyQuit = key.NewBinding(key.WithKeys("q", "ctrl+c"))

// frameMsg carries one committed frame snapshot into the model.
type frameMsg struct {
	groups []groupSnapshot
}

type groupSnapshot struct {
	name   string
	pixels []led.RGB
}

// Model is the Bubble Tea model for the fixture preview.
type Model struct {
	selector *mode.Selector
	groups   []groupSnapshot
	frames   int
}

// NewModel returns a preview bound to the shared mode selector.
func NewModel(selector *mode.Selector) Model {
	return Model{selector: selector}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and frame snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.groups = msg.groups
		m.frames++

	case tea.KeyMsg:
		if key.Matches(msg, keyQuit) {
			return m, tea.Quit
		}
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '0'); mode.Valid(n) {
				m.selector.Set(n)
			}
		}
	}
	return m, nil
}

// View draws the fixture as rows of colored blocks, one row per group.
func (m Model) View() string {
	var b strings.Builder

	cur := m.selector.Current()
	b.WriteString(titleStyle.Render(fmt.Sprintf(" glow — mode %d: %s ", cur, render.ModeName(cur))))
	b.WriteString("\n\n")

	for _, g := range m.groups {
		b.WriteString(groupNameStyle.Render(g.name))
		for _, c := range g.pixels {
			if c == led.Off {
				b.WriteString(offStyle.Render("··"))
				continue
			}
			color := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2]))
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render("██"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("1-7: mode • q: quit • %d frames", m.frames)))
	b.WriteString("\n")
	return b.String()
}

// Preview is the led.Sink end of the terminal preview. Commit forwards a
// frame snapshot to the running Bubble Tea program.
type Preview struct {
	prog *tea.Program
}

// NewPreview wraps a running program as a frame sink.
func NewPreview(prog *tea.Program) *Preview {
	return &Preview{prog: prog}
}

// Commit snapshots the frame and hands it to the UI goroutine. The frame
// buffer is reused by the pipeline, so the pixels are copied here.
func (p *Preview) Commit(f *led.Frame) error {
	topo := f.Topology()
	groups := make([]groupSnapshot, len(f.Groups))
	for i, g := range f.Groups {
		pixels := make([]led.RGB, len(g))
		copy(pixels, g)
		groups[i] = groupSnapshot{name: topo[i].Name, pixels: pixels}
	}
	p.prog.Send(frameMsg{groups: groups})
	return nil
}

// Close is a no-op; the program's lifecycle belongs to the caller.
func (p *Preview) Close() error { return nil }

var _ led.Sink = (*Preview)(nil)
