package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrdg/hexpiano/audio"
	"github.com/mrdg/hexpiano/pattern"
)

var (
	rowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f87ff"))
	beatStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#af5fff"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	playheadStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

const (
	cellOn       = "■"
	cellOff      = "·"
	spacePerStep = 2
	labelWidth   = 8
)

func renderGrid(state audio.GridState, w io.Writer) {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for step := 0; step < state.Steps; step++ {
		label := " "
		if step%4 == 0 {
			label = strconv.Itoa((step/4 + 1) % 10)
		}
		b.WriteString(beatStyle.Render(label) + strings.Repeat(" ", spacePerStep-1))
	}
	b.WriteString("\n")

	for r, pitch := range state.Pitches {
		label := fmt.Sprintf("%2d %-4s", r+1, pattern.NoteName(pitch))
		b.WriteString(rowStyle.Render(label) + " ")
		for step, on := range state.Cells[r] {
			cell := dimStyle.Render(cellOff)
			if on {
				cell = activeStyle.Render(cellOn)
			}
			if step == state.Playhead {
				cell = playheadStyle.Render(cell)
			}
			b.WriteString(cell + strings.Repeat(" ", spacePerStep-1))
		}
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}

func renderStatus(e *env, w io.Writer) {
	transport := "stopped"
	if e.inst.Playing() {
		transport = "playing"
	}
	bpm, _ := e.inst.Get("bpm")
	status := fmt.Sprintf("%s  bpm %v  octave %d  voices %d/%d",
		transport, bpm, e.inst.Grid().Octave, e.inst.ActiveVoices(), e.inst.Polyphony())
	if e.midi != nil {
		status += "  midi " + e.midi.Status().String()
		if port := e.midi.Port(); port != "" {
			status += " (" + port + ")"
		}
	}
	fmt.Fprintln(w, statusStyle.Render(status))
}
