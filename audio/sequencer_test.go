package audio

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/mrdg/hexpiano/pattern"
)

type scheduledNote struct {
	on    bool
	at    float64
	pitch int
}

type testScheduler struct {
	notes []scheduledNote
}

func (s *testScheduler) ScheduleNoteOn(at float64, pitch int, velocity float64) {
	s.notes = append(s.notes, scheduledNote{on: true, at: at, pitch: pitch})
}

func (s *testScheduler) ScheduleNoteOff(at float64, pitch int) {
	s.notes = append(s.notes, scheduledNote{on: false, at: at, pitch: pitch})
}

func (s *testScheduler) noteOns() []scheduledNote {
	var ons []scheduledNote
	for _, n := range s.notes {
		if n.on {
			ons = append(ons, n)
		}
	}
	return ons
}

type sequencerFixture struct {
	seq    *Sequencer
	props  *Props
	grid   *pattern.Grid
	target *testScheduler
}

func newSequencerFixture(rows, steps int) *sequencerFixture {
	props := NewProps()
	p := registerParams(props)
	grid := pattern.NewGrid(rows, steps)
	target := &testScheduler{}
	return &sequencerFixture{
		seq:    newSequencer(p, grid, target, rand.New(rand.NewSource(42))),
		props:  props,
		grid:   grid,
		target: target,
	}
}

func (f *sequencerFixture) set(t *testing.T, key string, value interface{}) {
	t.Helper()
	if err := f.props.Set(key, value); err != nil {
		t.Fatal(err)
	}
}

// tickUntil drives the sequencer the way the render loop does, once per block.
func (f *sequencerFixture) tickUntil(end float64) {
	for n := 0; ; n++ {
		now := float64(n*blockSize) / testSampleRate
		if now >= end {
			return
		}
		f.seq.Tick(now)
	}
}

func TestSequencerStepDuration(t *testing.T) {
	f := newSequencerFixture(8, 16)
	if want, got := 0.125, f.seq.StepDuration(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	f.set(t, "bpm", 90.0)
	f.grid.Resize(8, 12)
	if want, got := (4*60/90.0)/12, f.seq.StepDuration(); !approx(want, got, 1e-12) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestSequencerOneBar(t *testing.T) {
	f := newSequencerFixture(8, 16)
	f.grid.ApplyNotes(pattern.Scales["C_MAJOR"])
	f.grid.Toggle(0, 0)

	f.seq.Play(0)
	f.tickUntil(1.9)

	want := []scheduledNote{
		{on: true, at: 0.1, pitch: 60},
		{on: false, at: 0.1 + 0.9*0.125, pitch: 60},
	}
	got := f.target.notes
	if len(want) != len(got) {
		t.Fatalf("wrong notes:\nwant: %+v\ngot:  %+v", want, got)
	}
	for i := range want {
		if want[i].on != got[i].on || want[i].pitch != got[i].pitch || !approx(want[i].at, got[i].at, 1e-12) {
			t.Errorf("note %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSequencerStraightTiming(t *testing.T) {
	f := newSequencerFixture(1, 16)
	f.grid.ApplyNotes(pattern.Scales["C_MAJOR"])
	for step := 0; step < 16; step++ {
		f.grid.Toggle(0, step)
	}

	f.seq.Play(0)
	f.tickUntil(1.9)

	pitch := f.grid.Pitch(0)
	ons := f.target.noteOns()
	if len(ons) < 16 {
		t.Fatalf("want at least 16 note-ons, got %v", len(ons))
	}
	for i, note := range ons[:16] {
		if want, got := 0.1+0.125*float64(i), note.at; !approx(want, got, 1e-12) {
			t.Errorf("step %d: want %v, got %v", i, want, got)
		}
		if want, got := pitch, note.pitch; want != got {
			t.Errorf("step %d: want pitch %v, got %v", i, want, got)
		}
	}
}

func TestSequencerLookaheadBound(t *testing.T) {
	f := newSequencerFixture(1, 16)
	f.grid.SetRow(0, []bool{true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true})
	f.seq.Play(0)

	for n := 0; n < 3000; n++ {
		now := float64(n*blockSize) / testSampleRate
		f.seq.Tick(now)
		for _, note := range f.target.noteOns() {
			if note.at >= now+lookahead {
				t.Fatalf("note at %v scheduled beyond the lookahead at %v", note.at, now)
			}
		}
	}
	if len(f.target.notes) == 0 {
		t.Fatal("no notes scheduled")
	}
}

func TestSequencerDropAll(t *testing.T) {
	f := newSequencerFixture(8, 16)
	for r := 0; r < 8; r++ {
		f.grid.SetRow(r, []bool{true, false, true, false, true, true})
	}
	f.set(t, "drop.prob", 1.0)

	var steps int
	f.seq.OnStep = func(step int, at float64) { steps++ }
	f.seq.Play(0)
	f.tickUntil(4)

	if want, got := 0, len(f.target.notes); want != got {
		t.Errorf("want no notes, got %v", f.target.notes)
	}
	if steps == 0 {
		t.Error("dropped steps should still advance the playhead")
	}
}

func TestSequencerStutter(t *testing.T) {
	f := newSequencerFixture(8, 16)
	f.grid.Toggle(3, 0)
	f.set(t, "stutter.prob", 1.0)
	f.set(t, "stutter.repeats", 2)

	f.seq.Play(0)
	f.seq.Tick(0)

	slot := 0.125 / 3
	pitch := f.grid.Pitch(3)
	var want []scheduledNote
	for k := 0; k < 3; k++ {
		at := 0.1 + slot*float64(k)
		want = append(want,
			scheduledNote{on: true, at: at, pitch: pitch},
			scheduledNote{on: false, at: at + 0.9*slot, pitch: pitch},
		)
	}
	got := f.target.notes
	if len(want) != len(got) {
		t.Fatalf("wrong notes:\nwant: %+v\ngot:  %+v", want, got)
	}
	for i := range want {
		if want[i].on != got[i].on || want[i].pitch != got[i].pitch || !approx(want[i].at, got[i].at, 1e-12) {
			t.Errorf("note %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSequencerShortStutterSlots(t *testing.T) {
	f := newSequencerFixture(1, 64)
	f.grid.Toggle(0, 0)
	f.set(t, "bpm", 300.0)
	f.set(t, "stutter.prob", 1.0)
	f.set(t, "stutter.repeats", 8)

	f.seq.Play(0)
	f.seq.Tick(0)

	notes := f.target.notes
	if want, got := 18, len(notes); want != got {
		t.Fatalf("want %v scheduled notes, got %v", want, got)
	}
	for i := 0; i+2 < len(notes); i += 2 {
		on, off, next := notes[i], notes[i+1], notes[i+2]
		if !on.on || off.on || !next.on {
			t.Fatalf("notes out of order at %d: %+v", i, notes[i:i+3])
		}
		if off.at <= on.at {
			t.Errorf("trigger %d: note-off at %v not after note-on at %v", i/2, off.at, on.at)
		}
		if off.at > next.at {
			t.Errorf("trigger %d: note-off at %v after next note-on at %v", i/2, off.at, next.at)
		}
	}
}

func TestSequencerSwing(t *testing.T) {
	f := newSequencerFixture(8, 16)
	f.grid.Toggle(0, 0)
	f.grid.Toggle(0, 1)
	f.set(t, "swing", 1.0)

	f.seq.Play(0)
	f.tickUntil(0.3)

	ons := f.target.noteOns()
	if want, got := 2, len(ons); want != got {
		t.Fatalf("want %v note-ons, got %v", want, got)
	}
	if want, got := 0.1, ons[0].at; want != got {
		t.Errorf("even step should not swing: want %v, got %v", want, got)
	}
	if want, got := 0.1+0.125+0.0625, ons[1].at; !approx(want, got, 1e-12) {
		t.Errorf("odd step: want %v, got %v", want, got)
	}
}

func TestSequencerJitterBounds(t *testing.T) {
	f := newSequencerFixture(1, 16)
	f.grid.SetRow(0, []bool{true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true})
	f.set(t, "jitter", 20.0)

	f.seq.Play(0)
	f.tickUntil(2)

	ons := f.target.noteOns()
	if len(ons) < 15 {
		t.Fatalf("want at least 15 note-ons, got %v", len(ons))
	}
	var moved bool
	for i, note := range ons {
		nominal := 0.1 + float64(i)*0.125
		offset := note.at - nominal
		if math.Abs(offset) > 0.020 {
			t.Errorf("step %d jittered by %v", i, offset)
		}
		if offset != 0 {
			moved = true
		}
	}
	if !moved {
		t.Error("jitter had no effect")
	}
}

func TestSequencerDropIsPerStep(t *testing.T) {
	f := newSequencerFixture(4, 16)
	all := make([]bool, 16)
	for i := range all {
		all[i] = true
	}
	for r := 0; r < 4; r++ {
		f.grid.SetRow(r, all)
	}
	f.set(t, "drop.prob", 0.5)

	var steps int
	f.seq.OnStep = func(step int, at float64) { steps++ }
	f.seq.Play(0)
	f.tickUntil(4)

	perStep := make(map[float64]int)
	for _, note := range f.target.noteOns() {
		perStep[note.at]++
	}
	for at, n := range perStep {
		if n != 4 {
			t.Errorf("step at %v fired %d of 4 rows", at, n)
		}
	}
	if len(perStep) == 0 || len(perStep) >= steps {
		t.Errorf("expected some but not all steps to drop, %d of %d fired", len(perStep), steps)
	}
}

func TestSequencerSkipsLateSteps(t *testing.T) {
	f := newSequencerFixture(1, 16)
	f.grid.SetRow(0, []bool{true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true})
	var played []int
	f.seq.OnStep = func(step int, at float64) { played = append(played, step) }

	f.seq.Play(0)
	f.seq.poll(1.0)

	for _, note := range f.target.noteOns() {
		if note.at < 1.0 {
			t.Errorf("late note scheduled at %v", note.at)
		}
	}
	if want, got := []int{8}, played; !reflect.DeepEqual(want, got) {
		t.Errorf("want steps %v, got %v", want, got)
	}
}

func TestSequencerStop(t *testing.T) {
	f := newSequencerFixture(1, 16)
	f.grid.SetRow(0, []bool{true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true})
	f.seq.Play(0)
	f.tickUntil(0.5)
	n := len(f.target.notes)

	f.seq.Stop()
	for now := 0.5; now < 2; now += 0.025 {
		f.seq.Tick(now)
	}
	if want, got := n, len(f.target.notes); want != got {
		t.Errorf("notes scheduled after stop: want %v, got %v", want, got)
	}
	if f.seq.Playing() {
		t.Error("sequencer should be stopped")
	}
}
