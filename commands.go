package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/mrdg/hexpiano/audio"
	"github.com/mrdg/hexpiano/dub"
	"github.com/mrdg/hexpiano/pattern"
)

type command struct {
	name    string
	usage   string
	run     func(*env, []dub.Node) (string, error)
	minArgs int
	maxArgs int // -1 for no limit
}

var commands = []command{
	{"play", "play", playCommand, 0, 0},
	{"stop", "stop", stopCommand, 0, 0},
	{"toggle", "toggle", toggleCommand, 0, 0},
	{"cell", "cell <row> <step>...", cellCommand, 2, -1},
	{"fill", "fill <row> '<match expression>", fillCommand, 2, 2},
	{"clear", "clear [row]...", clearCommand, 0, -1},
	{"resize", "resize <rows> <steps>", resizeCommand, 2, 2},
	{"notes", "notes <note>...", notesCommand, 1, -1},
	{"scale", "scale [name]", scaleCommand, 0, 1},
	{"octave", "octave [n|up|down]", octaveCommand, 0, 1},
	{"set", "set <param> <value>", setCommand, 2, 2},
	{"get", "get <param>", getCommand, 1, 1},
	{"params", "params", paramsCommand, 0, 0},
	{"preset", "preset [name]", presetCommand, 0, 1},
	{"pedal", "pedal on|off", pedalCommand, 1, 1},
	{"on", "on <note> [velocity]", noteOnCommand, 1, 2},
	{"off", "off <note>", noteOffCommand, 1, 1},
	{"panic", "panic", panicCommand, 0, 0},
	{"show", "show", showCommand, 0, 0},
	{"bounce", "bounce <file> [bars]", bounceCommand, 1, 2},
}

func usage() string {
	lines := make([]string, 0, len(commands)+1)
	for _, cmd := range commands {
		lines = append(lines, "  "+cmd.usage)
	}
	lines = append(lines, "  help")
	return strings.Join(lines, "\n")
}

func playCommand(e *env, args []dub.Node) (string, error) {
	e.inst.Play()
	return "", nil
}

func stopCommand(e *env, args []dub.Node) (string, error) {
	e.inst.Stop()
	return "", nil
}

func toggleCommand(e *env, args []dub.Node) (string, error) {
	if e.inst.Toggle() {
		return "playing", nil
	}
	return "stopped", nil
}

// Rows and steps are numbered from 1 in commands.
func readRow(e *env, arg dub.Node) (int, error) {
	var row int
	if err := readArgs([]dub.Node{arg}, &row); err != nil {
		return 0, err
	}
	if rows := len(e.inst.Grid().Pitches); row < 1 || row > rows {
		return 0, fmt.Errorf("row out of range 1 - %d: %d", rows, row)
	}
	return row - 1, nil
}

func cellCommand(e *env, args []dub.Node) (string, error) {
	row, err := readRow(e, args[0])
	if err != nil {
		return "", err
	}
	steps := e.inst.Grid().Steps
	var toggle []int
	for _, arg := range args[1:] {
		var step int
		if err := readArgs([]dub.Node{arg}, &step); err != nil {
			return "", err
		}
		if step < 1 || step > steps {
			return "", fmt.Errorf("step out of range 1 - %d: %d", steps, step)
		}
		toggle = append(toggle, step-1)
	}
	for _, step := range toggle {
		e.inst.ToggleCell(row, step)
	}
	return "", nil
}

func fillCommand(e *env, args []dub.Node) (string, error) {
	row, err := readRow(e, args[0])
	if err != nil {
		return "", err
	}
	var expr dub.MatchExpr
	if err := readArgs(args[1:], &expr); err != nil {
		return "", err
	}
	seq, err := fillPattern(expr, e.inst.Grid().Steps)
	if err != nil {
		return "", err
	}
	cells := make([]bool, len(seq))
	for i, v := range seq {
		cells[i] = v > 0
	}
	return "", e.inst.SetRow(row, cells)
}

// fillPattern expands expr over the grid. Step counts that make whole beats
// are read as quarter notes of sixteenth steps, anything else as a single
// sixteenth per beat.
func fillPattern(expr dub.MatchExpr, steps int) ([]int, error) {
	const stepSize = 16
	if steps%4 == 0 {
		return dub.EvalMatchExpr(expr, steps/4, 4, stepSize)
	}
	return dub.EvalMatchExpr(expr, steps, stepSize, stepSize)
}

func clearCommand(e *env, args []dub.Node) (string, error) {
	if len(args) == 0 {
		e.inst.ClearGrid()
		return "", nil
	}
	var rows []int
	for _, arg := range args {
		row, err := readRow(e, arg)
		if err != nil {
			return "", err
		}
		rows = append(rows, row)
	}
	for _, row := range rows {
		if err := e.inst.SetRow(row, nil); err != nil {
			return "", err
		}
	}
	return "", nil
}

func resizeCommand(e *env, args []dub.Node) (string, error) {
	var rows, steps int
	if err := readArgs(args, &rows, &steps); err != nil {
		return "", err
	}
	return "", e.inst.ResizeGrid(rows, steps)
}

func notesCommand(e *env, args []dub.Node) (string, error) {
	names, err := words(args)
	if err != nil {
		return "", err
	}
	n := e.inst.ApplyNotes(names)
	if n == 0 {
		return "", fmt.Errorf("no valid note names in %v", names)
	}
	return fmt.Sprintf("applied %d of %d notes", n, len(names)), nil
}

func scaleCommand(e *env, args []dub.Node) (string, error) {
	if len(args) == 0 {
		names := make([]string, 0, len(pattern.Scales))
		for name := range pattern.Scales {
			names = append(names, name)
		}
		sort.Strings(names)
		return strings.Join(names, "\n"), nil
	}
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", e.inst.ApplyScale(strings.ToUpper(name))
}

func octaveCommand(e *env, args []dub.Node) (string, error) {
	octave := e.inst.Grid().Octave
	if len(args) == 1 {
		switch arg := args[0].(type) {
		case dub.Int:
			octave = int(arg)
		case dub.Identifier:
			switch arg {
			case "up":
				octave++
			case "down":
				octave--
			default:
				return "", fmt.Errorf("expected up, down or a number: %s", arg)
			}
		default:
			return "", fmt.Errorf("expected up, down or a number")
		}
		octave = e.inst.SetOctave(octave)
	}
	return fmt.Sprintf("octave %d", octave), nil
}

func setCommand(e *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args[:1], &key); err != nil {
		return "", err
	}
	v, err := value(args[1])
	if err != nil {
		return "", err
	}
	return "", e.inst.Set(key, v)
}

func getCommand(e *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args, &key); err != nil {
		return "", err
	}
	v, err := e.inst.Get(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func paramsCommand(e *env, args []dub.Node) (string, error) {
	var lines []string
	for _, key := range e.inst.Keys() {
		v, err := e.inst.Get(key)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%-16s %v", key, v))
	}
	return strings.Join(lines, "\n"), nil
}

func presetCommand(e *env, args []dub.Node) (string, error) {
	if len(args) == 0 {
		return strings.Join(audio.PresetNames(), "\n"), nil
	}
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", audio.LoadPreset(name, e.inst)
}

func pedalCommand(e *env, args []dub.Node) (string, error) {
	var state string
	if err := readArgs(args, &state); err != nil {
		return "", err
	}
	switch state {
	case "on":
		e.inst.SetSustainPedal(true)
	case "off":
		e.inst.SetSustainPedal(false)
	default:
		return "", fmt.Errorf("expected on or off: %s", state)
	}
	return "", nil
}

// readPitch accepts a pitch number or a note name.
func readPitch(arg dub.Node) (int, error) {
	switch v := arg.(type) {
	case dub.Int:
		if v < 0 || v > 127 {
			return 0, fmt.Errorf("pitch out of range 0 - 127: %d", v)
		}
		return int(v), nil
	case dub.Identifier, dub.String:
		var name string
		if err := readArgs([]dub.Node{arg}, &name); err != nil {
			return 0, err
		}
		p, ok := pattern.ParseNote(name)
		if !ok {
			return 0, fmt.Errorf("not a note name: %s", name)
		}
		return p, nil
	default:
		return 0, fmt.Errorf("expected a pitch or note name")
	}
}

const defaultVelocity = 0.8

func noteOnCommand(e *env, args []dub.Node) (string, error) {
	pitch, err := readPitch(args[0])
	if err != nil {
		return "", err
	}
	velocity := defaultVelocity
	if err := readArgs(args[1:], &velocity); err != nil {
		return "", err
	}
	if velocity <= 0 || velocity > 1 {
		return "", fmt.Errorf("velocity out of range (0, 1]: %v", velocity)
	}
	e.inst.NoteOn(pitch, velocity)
	return "", nil
}

func noteOffCommand(e *env, args []dub.Node) (string, error) {
	pitch, err := readPitch(args[0])
	if err != nil {
		return "", err
	}
	e.inst.NoteOff(pitch)
	return "", nil
}

func panicCommand(e *env, args []dub.Node) (string, error) {
	e.inst.AllNotesOff()
	return "", nil
}

func showCommand(e *env, args []dub.Node) (string, error) {
	var b strings.Builder
	renderGrid(e.inst.Grid(), &b)
	renderStatus(e, &b)
	return strings.TrimRight(b.String(), "\n"), nil
}

func bounceCommand(e *env, args []dub.Node) (string, error) {
	var file string
	bars := 2
	if err := readArgs(args, &file, &bars); err != nil {
		return "", err
	}
	if bars < 1 {
		return "", fmt.Errorf("need at least one bar: %d", bars)
	}
	if err := bounce(e.inst, file, bars, e.seed); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bars to %s", bars, file), nil
}

// tail is rendered after the last bar so released notes can ring out.
const tail = 1.5

// bounce renders bars of the current pattern to a WAV file. It plays a copy
// of inst so a running sink is not disturbed.
func bounce(inst *audio.Instrument, file string, bars int, seed int64) error {
	cp, err := snapshot(inst, seed)
	if err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	cp.Play()
	seconds := float64(bars)*cp.BarDuration() + tail
	if err := audio.Bounce(cp, cp.SampleRate(), f, seconds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// snapshot returns a stopped instrument with the parameters and pattern of
// inst.
func snapshot(inst *audio.Instrument, seed int64) (*audio.Instrument, error) {
	state := inst.Grid()
	cp := audio.NewInstrument(audio.Options{
		SampleRate: inst.SampleRate(),
		Voices:     inst.Polyphony(),
		Rows:       len(state.Pitches),
		Rand:       rand.New(rand.NewSource(seed)),
	})
	for _, key := range inst.Keys() {
		v, err := inst.Get(key)
		if err != nil {
			return nil, err
		}
		if err := cp.Set(key, v); err != nil {
			return nil, fmt.Errorf("copy %s: %w", key, err)
		}
	}
	names := make([]string, len(state.Pitches))
	for r, p := range state.Pitches {
		names[r] = pattern.NoteName(p)
	}
	cp.ApplyNotes(names)
	for r, cells := range state.Cells {
		if err := cp.SetRow(r, cells); err != nil {
			return nil, err
		}
	}
	return cp, nil
}
