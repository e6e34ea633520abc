// Package pattern holds the step sequencer's pattern model: a grid of
// pitch rows by time steps, independent of playback.
package pattern

const (
	MinOctave     = 1
	MaxOctave     = 7
	DefaultOctave = 4
)

// diatonic holds the semitone offsets of one major scale octave, root to root.
// Rows take them from the top down so that row 0 is the highest pitch.
var diatonic = [...]int{0, 2, 4, 5, 7, 9, 11, 12}

// Grid maps (row, step) to on/off. Each row is assigned a pitch, either from
// the diatonic layout above the base octave or from an explicit note list.
type Grid struct {
	steps   int
	cells   [][]bool
	pitches []int
	octave  int
	notes   []int // explicit row pitches, cycled over rows; nil for diatonic rows
}

func NewGrid(rows, steps int) *Grid {
	g := &Grid{octave: DefaultOctave}
	g.Resize(rows, steps)
	return g
}

func (g *Grid) Rows() int   { return len(g.cells) }
func (g *Grid) Steps() int  { return g.steps }
func (g *Grid) Octave() int { return g.octave }

// Resize changes the grid dimensions. Cells inside both the old and the new
// bounds keep their state, new cells are off.
func (g *Grid) Resize(rows, steps int) {
	if rows < 0 {
		rows = 0
	}
	if steps < 0 {
		steps = 0
	}
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, steps)
		if r < len(g.cells) {
			copy(cells[r], g.cells[r])
		}
	}
	g.cells = cells
	g.steps = steps
	g.assignPitches()
}

func (g *Grid) inBounds(row, step int) bool {
	return row >= 0 && row < len(g.cells) && step >= 0 && step < g.steps
}

// Toggle flips a cell and returns its new state. Out of range cells are
// ignored and report false.
func (g *Grid) Toggle(row, step int) bool {
	if !g.inBounds(row, step) {
		return false
	}
	g.cells[row][step] = !g.cells[row][step]
	return g.cells[row][step]
}

func (g *Grid) Set(row, step int, on bool) {
	if g.inBounds(row, step) {
		g.cells[row][step] = on
	}
}

func (g *Grid) Active(row, step int) bool {
	return g.inBounds(row, step) && g.cells[row][step]
}

// SetRow replaces the cells of a row. Missing steps are turned off and extra
// values are ignored.
func (g *Grid) SetRow(row int, on []bool) {
	if row < 0 || row >= len(g.cells) {
		return
	}
	for step := range g.cells[row] {
		g.cells[row][step] = step < len(on) && on[step]
	}
}

func (g *Grid) Clear() {
	for _, row := range g.cells {
		for step := range row {
			row[step] = false
		}
	}
}

// Column returns the pitches of the active rows at step, top row first.
func (g *Grid) Column(step int) []int {
	if step < 0 || step >= g.steps {
		return nil
	}
	var pitches []int
	for r, row := range g.cells {
		if row[step] {
			pitches = append(pitches, g.pitches[r])
		}
	}
	return pitches
}

func (g *Grid) Pitch(row int) int {
	if row < 0 || row >= len(g.pitches) {
		return 0
	}
	return g.pitches[row]
}

func (g *Grid) Pitches() []int {
	return append([]int(nil), g.pitches...)
}

// Cells returns a copy of the cell matrix.
func (g *Grid) Cells() [][]bool {
	cells := make([][]bool, len(g.cells))
	for r, row := range g.cells {
		cells[r] = append([]bool(nil), row...)
	}
	return cells
}

// SetOctave moves the diatonic layout to a new base octave, clamped to
// [MinOctave, MaxOctave], and drops any explicit note list. It returns the
// octave in effect.
func (g *Grid) SetOctave(octave int) int {
	if octave < MinOctave {
		octave = MinOctave
	} else if octave > MaxOctave {
		octave = MaxOctave
	}
	g.octave = octave
	g.notes = nil
	g.assignPitches()
	return octave
}

// SetNotes assigns explicit pitches to the rows top to bottom, repeating the
// list when there are more rows than notes. Cell state is untouched. An empty
// list leaves the assignment as it is and returns false.
func (g *Grid) SetNotes(pitches []int) bool {
	if len(pitches) == 0 {
		return false
	}
	g.notes = append([]int(nil), pitches...)
	g.assignPitches()
	return true
}

// ApplyNotes parses names and assigns the valid ones with SetNotes. It returns
// the number of names that parsed.
func (g *Grid) ApplyNotes(names []string) int {
	pitches := parseNames(names)
	g.SetNotes(pitches)
	return len(pitches)
}

func (g *Grid) assignPitches() {
	g.pitches = make([]int, len(g.cells))
	root := 12 * (g.octave + 1)
	for r := range g.pitches {
		if len(g.notes) > 0 {
			g.pitches[r] = g.notes[r%len(g.notes)]
			continue
		}
		g.pitches[r] = root + diatonic[len(diatonic)-1-r%len(diatonic)]
	}
}
