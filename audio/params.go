package audio

import (
	"sync/atomic"

	"github.com/mrdg/hexpiano/pattern"
)

const (
	propAttack         = "env.attack"
	propDecay          = "env.decay"
	propSustain        = "env.sustain"
	propRelease        = "env.release"
	propTone           = "tone"
	propDetune         = "detune"
	propHardness       = "hardness"
	propKeyNoise       = "keynoise"
	propLevel          = "level"
	propBPM            = "bpm"
	propSwing          = "swing"
	propJitter         = "jitter"
	propStutterProb    = "stutter.prob"
	propStutterRepeats = "stutter.repeats"
	propDropProb       = "drop.prob"
	propSteps          = "steps"
	propOctave         = "octave"
)

const (
	DefaultSteps = 16
	MaxSteps     = 64
)

// params holds the registered instrument properties.
type params struct {
	attack   *atomic.Value
	decay    *atomic.Value
	sustain  *atomic.Value
	release  *atomic.Value
	tone     *atomic.Value
	detune   *atomic.Value
	hardness *atomic.Value
	keyNoise *atomic.Value
	level    *atomic.Value

	bpm            *atomic.Value
	swing          *atomic.Value
	jitter         *atomic.Value // milliseconds
	stutterProb    *atomic.Value
	stutterRepeats *atomic.Value
	dropProb       *atomic.Value
	steps          *atomic.Value
	octave         *atomic.Value
}

var (
	setEnvTime = setFloat64(0.001, 10)
	setUnit    = setFloat64(0, 1)
	setLevel   = setFloat64(-40, 10)
)

func registerParams(props *Props) *params {
	return &params{
		attack:   props.MustRegister(propAttack, setEnvTime, 0.005),
		decay:    props.MustRegister(propDecay, setEnvTime, 1.8),
		sustain:  props.MustRegister(propSustain, setUnit, 0.25),
		release:  props.MustRegister(propRelease, setEnvTime, 0.6),
		tone:     props.MustRegister(propTone, setFloat64(200, 20_000), 6000.0),
		detune:   props.MustRegister(propDetune, setFloat64(-50, 50), 2.0),
		hardness: props.MustRegister(propHardness, setUnit, 0.5),
		keyNoise: props.MustRegister(propKeyNoise, setUnit, 0.3),
		level:    props.MustRegister(propLevel, setLevel, -20.0),

		bpm:            props.MustRegister(propBPM, setFloat64(20, 300), 120.0),
		swing:          props.MustRegister(propSwing, setUnit, 0.0),
		jitter:         props.MustRegister(propJitter, setFloat64(0, 50), 0.0),
		stutterProb:    props.MustRegister(propStutterProb, setUnit, 0.0),
		stutterRepeats: props.MustRegister(propStutterRepeats, setInt(1, 8), 1),
		dropProb:       props.MustRegister(propDropProb, setUnit, 0.0),
		steps:          props.MustRegister(propSteps, setInt(1, MaxSteps), DefaultSteps),
		octave:         props.MustRegister(propOctave, clampInt(pattern.MinOctave, pattern.MaxOctave), pattern.DefaultOctave),
	}
}

func loadFloat(v *atomic.Value) float64 { return v.Load().(float64) }
func loadInt(v *atomic.Value) int       { return v.Load().(int) }

func (p *params) voice() VoiceParams {
	return VoiceParams{
		Attack:   loadFloat(p.attack),
		Decay:    loadFloat(p.decay),
		Sustain:  loadFloat(p.sustain),
		Release:  loadFloat(p.release),
		Tone:     loadFloat(p.tone),
		Detune:   loadFloat(p.detune),
		Hardness: loadFloat(p.hardness),
		KeyNoise: loadFloat(p.keyNoise),
	}
}
