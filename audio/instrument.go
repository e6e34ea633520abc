package audio

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/mrdg/hexpiano/pattern"
)

const (
	blockSize         = 16 // this gives about 0.35ms accuracy for sequenced events
	DefaultSampleRate = 44100
	DefaultBufferSize = 512
	DefaultRows       = 8
	inputBufferSize   = 256
)

type Options struct {
	SampleRate float64
	Voices     int
	Rows       int
	Rand       *rand.Rand
}

// Instrument is the render source: it owns the signal context, the voice
// pool, the sequencer and the pattern grid. Process is called from the audio
// goroutine; the other methods can be called from anywhere.
type Instrument struct {
	*Props
	params *params

	mu       sync.Mutex
	ctx      *Context
	pool     *VoicePool
	seq      *Sequencer
	grid     *pattern.Grid
	playhead int

	inputMu sync.Mutex
	input   *eventBuffer

	left, right []float64
}

func NewInstrument(opts Options) *Instrument {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Voices <= 0 {
		opts.Voices = DefaultCapacity
	}
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	props := NewProps()
	p := registerParams(props)
	ctx := NewContext(opts.SampleRate, opts.Rand)
	grid := pattern.NewGrid(opts.Rows, loadInt(p.steps))
	grid.SetOctave(loadInt(p.octave))

	i := &Instrument{
		Props:    props,
		params:   p,
		ctx:      ctx,
		grid:     grid,
		playhead: -1,
		input:    newEventBuffer(inputBufferSize),
		left:     make([]float64, DefaultBufferSize),
		right:    make([]float64, DefaultBufferSize),
	}
	i.pool = NewVoicePool(ctx, opts.Voices, p.voice)
	i.seq = newSequencer(p, grid, poolScheduler{ctx: ctx, pool: i.pool}, ctx.rand)
	i.seq.OnStep = func(step int, at float64) {
		ctx.At(at, func(float64) {
			if i.seq.Playing() {
				i.playhead = step
			}
		})
	}
	return i
}

// poolScheduler turns sequenced notes into pool calls on the context queue.
type poolScheduler struct {
	ctx  *Context
	pool *VoicePool
}

func (s poolScheduler) ScheduleNoteOn(at float64, pitch int, velocity float64) {
	s.ctx.At(at, func(at float64) { s.pool.NoteOn(at, pitch, velocity) })
}

func (s poolScheduler) ScheduleNoteOff(at float64, pitch int) {
	s.ctx.At(at, func(at float64) { s.pool.NoteOff(at, pitch) })
}

// Process renders len(samples[0]) frames and adds them to samples.
func (i *Instrument) Process(samples [][]float32) {
	i.mu.Lock()
	defer i.mu.Unlock()

	frames := len(samples[0])
	if len(i.left) < frames {
		i.left = make([]float64, frames)
		i.right = make([]float64, frames)
	}
	for n := 0; n < frames; n += blockSize {
		end := n + blockSize
		if end > frames {
			end = frames
		}
		i.input.iter(i.handle)
		now := i.ctx.Now()
		i.seq.Tick(now)
		i.ctx.runUntil(now + float64(end-n)/i.ctx.sampleRate)
		i.ctx.render(i.left[n:end], i.right[n:end])
		i.ctx.advance(end - n)
	}

	db := loadFloat(i.params.level)
	gain := math.Pow(10, db/20.0)
	for n := 0; n < frames; n++ {
		if len(samples) > 1 {
			samples[0][n] += float32(gain * i.left[n])
			samples[1][n] += float32(gain * i.right[n])
		} else {
			samples[0][n] += float32(gain * (i.left[n] + i.right[n]) / 2)
		}
		i.left[n] = 0
		i.right[n] = 0
	}
}

func (i *Instrument) handle(ev event) {
	now := i.ctx.Now()
	switch ev.kind {
	case eventNoteOn:
		i.pool.NoteOn(now, ev.pitch, ev.velocity)
	case eventNoteOff:
		i.pool.NoteOff(now, ev.pitch)
	case eventPedal:
		i.pool.SetSustainPedal(now, ev.on)
	}
}

func (i *Instrument) push(ev event) {
	i.inputMu.Lock()
	i.input.push(ev)
	i.inputMu.Unlock()
}

// NoteOn plays pitch at the start of the next rendered block.
func (i *Instrument) NoteOn(pitch int, velocity float64) {
	i.push(event{kind: eventNoteOn, pitch: pitch, velocity: velocity})
}

func (i *Instrument) NoteOff(pitch int) {
	i.push(event{kind: eventNoteOff, pitch: pitch})
}

func (i *Instrument) SetSustainPedal(on bool) {
	i.push(event{kind: eventPedal, on: on})
}

func (i *Instrument) update(f func()) {
	i.mu.Lock()
	f()
	i.mu.Unlock()
}

// Set updates a property and applies it to the running state: a tone change
// retargets every active voice, steps resizes the grid and octave re-pitches
// its rows.
func (i *Instrument) Set(key string, value interface{}) error {
	var err error
	i.update(func() {
		if err = i.Props.Set(key, value); err != nil {
			return
		}
		switch key {
		case propTone:
			tone := loadFloat(i.params.tone)
			now := i.ctx.Now()
			for _, v := range i.pool.Voices() {
				v.SetTone(now, tone)
			}
		case propSteps:
			i.grid.Resize(i.grid.Rows(), loadInt(i.params.steps))
		case propOctave:
			i.grid.SetOctave(loadInt(i.params.octave))
		}
	})
	return err
}

func (i *Instrument) Play() {
	i.update(func() { i.seq.Play(i.ctx.Now()) })
}

func (i *Instrument) Stop() {
	i.update(func() {
		i.seq.Stop()
		i.playhead = -1
	})
}

// Toggle starts or stops playback and reports whether it is now playing.
func (i *Instrument) Toggle() bool {
	var playing bool
	i.update(func() {
		if i.seq.Playing() {
			i.seq.Stop()
			i.playhead = -1
		} else {
			i.seq.Play(i.ctx.Now())
		}
		playing = i.seq.Playing()
	})
	return playing
}

func (i *Instrument) Playing() bool {
	var playing bool
	i.update(func() { playing = i.seq.Playing() })
	return playing
}

// ToggleCell flips a grid cell and returns its new state.
func (i *Instrument) ToggleCell(row, step int) bool {
	var on bool
	i.update(func() { on = i.grid.Toggle(row, step) })
	return on
}

func (i *Instrument) SetCell(row, step int, on bool) {
	i.update(func() { i.grid.Set(row, step, on) })
}

func (i *Instrument) SetRow(row int, cells []bool) error {
	var err error
	i.update(func() {
		if row < 0 || row >= i.grid.Rows() {
			err = fmt.Errorf("row out of range 0 - %d: %d", i.grid.Rows()-1, row)
			return
		}
		i.grid.SetRow(row, cells)
	})
	return err
}

func (i *Instrument) ClearGrid() {
	i.update(i.grid.Clear)
}

// ResizeGrid changes the row and step count, keeping overlapping cells.
func (i *Instrument) ResizeGrid(rows, steps int) error {
	if rows < 1 {
		return fmt.Errorf("grid needs at least one row: %d", rows)
	}
	var err error
	i.update(func() {
		if err = i.Props.Set(propSteps, steps); err != nil {
			return
		}
		i.grid.Resize(rows, steps)
	})
	return err
}

// ApplyNotes assigns note names to the grid rows. Invalid names are skipped;
// it returns how many were applied.
func (i *Instrument) ApplyNotes(names []string) int {
	var n int
	i.update(func() { n = i.grid.ApplyNotes(names) })
	return n
}

func (i *Instrument) ApplyScale(name string) error {
	notes, ok := pattern.Scales[name]
	if !ok {
		return fmt.Errorf("unknown scale: %s", name)
	}
	i.ApplyNotes(notes)
	return nil
}

// SetOctave moves the rows to octave, clamped to the valid range, and returns
// the octave in effect.
func (i *Instrument) SetOctave(octave int) int {
	i.update(func() {
		octave = i.grid.SetOctave(octave)
		i.params.octave.Store(octave)
	})
	return octave
}

func (i *Instrument) AllNotesOff() {
	i.update(func() { i.pool.AllNotesOff(i.ctx.Now()) })
}

func (i *Instrument) Now() float64 {
	var now float64
	i.update(func() { now = i.ctx.Now() })
	return now
}

func (i *Instrument) ActiveVoices() int {
	var n int
	i.update(func() { n = i.pool.Len() })
	return n
}

func (i *Instrument) SampleRate() float64 { return i.ctx.sampleRate }

// Polyphony is the voice limit of the pool.
func (i *Instrument) Polyphony() int { return i.pool.Capacity() }

// BarDuration is the length of one 4/4 bar at the current tempo.
func (i *Instrument) BarDuration() float64 {
	return 4 * 60 / loadFloat(i.params.bpm)
}

// GridState is a snapshot of the pattern and the playback position.
type GridState struct {
	Pitches  []int
	Cells    [][]bool
	Steps    int
	Octave   int
	Playhead int // -1 when stopped
	Playing  bool
}

func (i *Instrument) Grid() GridState {
	var s GridState
	i.update(func() {
		s = GridState{
			Pitches:  i.grid.Pitches(),
			Cells:    i.grid.Cells(),
			Steps:    i.grid.Steps(),
			Octave:   i.grid.Octave(),
			Playhead: i.playhead,
			Playing:  i.seq.Playing(),
		}
	})
	return s
}
