package audio

import (
	"log"
	"math"
	"math/rand"

	"github.com/mrdg/hexpiano/pattern"
)

const (
	lookahead    = 0.15  // how far ahead of now steps are scheduled
	pollInterval = 0.025 // time between scheduling passes
	startDelay   = 0.1   // from Play to the first step
	noteFraction = 0.9   // note length relative to its slot
	minNoteLen   = 0.01
	stepVelocity = 0.95
)

// NoteScheduler receives the notes the sequencer decides to play, at absolute
// context times.
type NoteScheduler interface {
	ScheduleNoteOn(at float64, pitch int, velocity float64)
	ScheduleNoteOff(at float64, pitch int)
}

// Sequencer walks the grid one step at a time, scheduling each step's notes
// a short while before they are due. Swing, jitter, drop and stutter are
// applied per step.
type Sequencer struct {
	params *params
	grid   *pattern.Grid
	target NoteScheduler
	rand   *rand.Rand

	playing      bool
	step         int
	nextStepTime float64
	lastPoll     float64

	// OnStep is called when a step is scheduled, with its time after swing
	// and jitter.
	OnStep func(step int, at float64)
}

func newSequencer(p *params, grid *pattern.Grid, target NoteScheduler, rng *rand.Rand) *Sequencer {
	return &Sequencer{
		params: p,
		grid:   grid,
		target: target,
		rand:   rng,
	}
}

// Play starts from step 0, startDelay after now. It has no effect while
// playing.
func (s *Sequencer) Play(now float64) {
	if s.playing {
		return
	}
	s.playing = true
	s.step = 0
	s.nextStepTime = now + startDelay
	s.lastPoll = math.Inf(-1)
}

// Stop halts scheduling. Notes already scheduled still play.
func (s *Sequencer) Stop() {
	s.playing = false
}

func (s *Sequencer) Playing() bool { return s.playing }

// StepDuration is the length of one step: a 4/4 bar divided by the step count.
func (s *Sequencer) StepDuration() float64 {
	steps := s.grid.Steps()
	if steps < 1 {
		steps = 1
	}
	bar := 4 * 60 / loadFloat(s.params.bpm)
	return bar / float64(steps)
}

// Tick runs a scheduling pass if pollInterval has passed since the last one.
func (s *Sequencer) Tick(now float64) {
	if !s.playing || now-s.lastPoll < pollInterval {
		return
	}
	s.lastPoll = now
	s.poll(now)
}

func (s *Sequencer) poll(now float64) {
	steps := s.grid.Steps()
	if steps == 0 {
		return
	}
	if s.step >= steps {
		s.step = 0
	}
	if s.nextStepTime < now {
		dur := s.StepDuration()
		late := int(math.Ceil((now - s.nextStepTime) / dur))
		log.Printf("sequencer: skipped %d late steps", late)
		s.nextStepTime += float64(late) * dur
		s.step = (s.step + late) % steps
	}
	for s.nextStepTime < now+lookahead {
		s.scheduleStep(s.step, s.nextStepTime)
		s.nextStepTime += s.StepDuration()
		s.step = (s.step + 1) % steps
	}
}

func (s *Sequencer) scheduleStep(step int, when float64) {
	dur := s.StepDuration()
	t := when
	if step%2 == 1 {
		t += loadFloat(s.params.swing) * dur * 0.5
	}
	if jitter := loadFloat(s.params.jitter); jitter > 0 {
		t += (s.rand.Float64()*2 - 1) * jitter / 1000
	}
	drop := s.rand.Float64() < loadFloat(s.params.dropProb)
	stutter := s.rand.Float64() < loadFloat(s.params.stutterProb)

	if s.OnStep != nil {
		s.OnStep(step, t)
	}
	if drop {
		return
	}

	triggers := 1
	if stutter {
		triggers = loadInt(s.params.stutterRepeats) + 1
	}
	slot := dur / float64(triggers)
	length := math.Max(minNoteLen, noteFraction*slot)
	for _, pitch := range s.grid.Column(step) {
		for k := 0; k < triggers; k++ {
			at := t + slot*float64(k)
			// Note-offs match by pitch, so a trigger must end by the
			// time the next one starts.
			off := math.Min(at+length, t+slot*float64(k+1))
			s.target.ScheduleNoteOn(at, pitch, stepVelocity)
			s.target.ScheduleNoteOff(off, pitch)
		}
	}
}
