package audio

import (
	"math"
)

// VoiceParams are the envelope and timbre settings a voice reads when it
// starts or is released. Times are in seconds, detune in cents.
type VoiceParams struct {
	Attack   float64
	Decay    float64
	Sustain  float64
	Release  float64
	Tone     float64
	Detune   float64
	Hardness float64
	KeyNoise float64
}

const (
	hammerNoiseLength = 0.02
	hammerNoiseFreq   = 3200
	keyNoiseFreq      = 2500
	clickFreq         = 2000
	clickLength       = 0.01
	filterSweepTime   = 0.9
	minFilterCutoff   = 1200
	releaseTail       = 0.05 // between the end of the release and the oscillator stop
	disposeDelay      = 0.1  // between the oscillator stop and the disconnect
)

// Voice is a single sounding note: pairs of detuned sine oscillators per
// partial, hammer noise and a click, a darkening low-pass filter and an
// amplitude envelope, panned by pitch class.
//
// A voice is started by StartVoice and connects itself to the master bus.
// After Release it disconnects itself once its tail has finished.
type Voice struct {
	ctx       *Context
	pitch     int
	velocity  float64
	start     float64
	released  bool
	sustained bool
	releaseAt float64
	stopTime  float64

	oscs      [2 * len(partials)]osc
	gains     [len(partials)]Param
	click     *osc
	clickGain Param
	noise     []*noiseBurst
	filter    filter
	cutoff    Param
	amp       Param
	panL      float64
	panR      float64
}

// StartVoice creates a voice for pitch that starts sounding at time at.
// velocity is in (0, 1].
func StartVoice(ctx *Context, at float64, pitch int, velocity float64, p VoiceParams) *Voice {
	v := &Voice{
		ctx:      ctx,
		pitch:    pitch,
		velocity: velocity,
		start:    at,
		filter:   newFilter(lowpass, 0.7),
	}

	freq := MidiToFreq(pitch)
	b := inharmonicity(freq)
	detune := math.Pow(2, p.Detune/1200)
	attack := math.Max(0.002, p.Attack)
	bright := 0.6 + 0.4*velocity
	for i, part := range partials {
		base := freq * part.mult * (1 + b*float64(part.n*part.n))
		v.oscs[2*i] = newOsc(waveSine, base, at)
		v.oscs[2*i+1] = newOsc(waveSine, base*detune, at)

		peak := part.gain * bright * velocity
		g := &v.gains[i]
		g.SetValueAtTime(0.0001, at)
		g.ExponentialRampTo(math.Max(0.0002, peak), at+attack)
		g.ExponentialRampTo(math.Max(0.0002, peak*p.Sustain*(0.6+0.4/part.mult)), at+p.Decay*part.decay)
	}

	hammer := newFilter(bandpass, 1)
	hammer.calculateCoefficients(hammerNoiseFreq, ctx.sampleRate)
	gain := 0.18 * (0.3 + 0.7*p.Hardness) * velocity
	v.noise = append(v.noise, newNoiseBurst(ctx.rand, ctx.sampleRate, at, hammerNoiseLength, gain, hammer))

	if gain := 0.002 * p.Hardness * velocity; gain > 0 {
		click := newOsc(waveSquare, clickFreq, at)
		click.stop = at + clickLength
		v.click = &click
		v.clickGain = newParam(gain)
		v.clickGain.SetValueAtTime(gain, at)
		v.clickGain.ExponentialRampTo(minRampValue, at+clickLength)
	}

	peak := 0.9 * velocity
	v.amp.SetValueAtTime(0.0001, at)
	v.amp.ExponentialRampTo(math.Max(0.0002, peak), at+attack)
	v.amp.ExponentialRampTo(math.Max(0.0002, peak*p.Sustain), at+p.Attack+p.Decay)

	v.cutoff = newParam(p.Tone)
	v.cutoff.SetValueAtTime(p.Tone*(0.9+0.7*velocity), at)
	v.cutoff.ExponentialRampTo(math.Max(minFilterCutoff, p.Tone*0.28), at+filterSweepTime)

	pan := float64(((pitch%12)+12)%12-6) / 22
	x := (pan + 1) / 2
	v.panL = math.Cos(x * math.Pi / 2)
	v.panR = math.Sin(x * math.Pi / 2)

	ctx.connect(v)
	return v
}

// Release starts the release tail at time at. Calling it again has no effect.
func (v *Voice) Release(at, release, keyNoise float64) {
	if v.released {
		return
	}
	v.released = true
	v.releaseAt = at

	if gain := keyNoise * 0.15; gain > 0 {
		hp := newFilter(highpass, 0.7)
		hp.calculateCoefficients(keyNoiseFreq, v.ctx.sampleRate)
		v.noise = append(v.noise, newNoiseBurst(v.ctx.rand, v.ctx.sampleRate, at, hammerNoiseLength, gain, hp))
	}

	v.amp.CancelAndHold(at)
	v.amp.DecayTowards(0.0001, at, release*0.4)

	v.stopTime = at + release + releaseTail
	for i := range v.oscs {
		v.oscs[i].stop = math.Min(v.oscs[i].stop, v.stopTime)
	}
	v.ctx.At(v.stopTime+disposeDelay, func(float64) { v.Dispose() })
}

// Dispose disconnects the voice from the master bus. It is safe to call more
// than once, and on a voice that was never connected.
func (v *Voice) Dispose() {
	v.ctx.disconnect(v)
}

// SetTone moves the filter cutoff to tone at time at. A pending sweep
// continues from the new value.
func (v *Voice) SetTone(at, tone float64) {
	v.cutoff.SetValueAtTime(tone, at)
}

func (v *Voice) Pitch() int           { return v.pitch }
func (v *Voice) Velocity() float64    { return v.velocity }
func (v *Voice) StartTime() float64   { return v.start }
func (v *Voice) Released() bool       { return v.released }
func (v *Voice) Sustained() bool      { return v.sustained }
func (v *Voice) Connected() bool      { return v.ctx.connected(v) }
func (v *Voice) ReleaseTime() float64 { return v.releaseAt }

// StopTime returns the time the oscillators stop. It is only known once the
// voice is released.
func (v *Voice) StopTime() (float64, bool) {
	return v.stopTime, v.released
}

func (v *Voice) render(t0 float64, left, right []float64) {
	n := len(left)
	if n == 0 {
		return
	}
	dt := 1 / v.ctx.sampleRate
	t1 := t0 + float64(n)*dt

	var g0, g1 [len(partials)]float64
	for k := range v.gains {
		g0[k] = v.gains[k].At(t0)
		g1[k] = v.gains[k].At(t1)
	}
	a0, a1 := v.amp.At(t0), v.amp.At(t1)
	var c0, c1 float64
	if v.click != nil {
		c0, c1 = v.clickGain.At(t0), v.clickGain.At(t1)
	}
	v.filter.calculateCoefficients(v.cutoff.At(t0), v.ctx.sampleRate)

	for i := 0; i < n; i++ {
		t := t0 + float64(i)*dt
		frac := float64(i) / float64(n)
		var x float64
		for k := range partials {
			s := v.oscs[2*k].sample(t, dt) + v.oscs[2*k+1].sample(t, dt)
			x += s * (g0[k] + (g1[k]-g0[k])*frac)
		}
		if v.click != nil {
			x += v.click.sample(t, dt) * (c0 + (c1-c0)*frac)
		}
		for _, b := range v.noise {
			x += b.sample(t)
		}
		y := v.filter.tick(x) * (a0 + (a1-a0)*frac)
		left[i] += y * v.panL
		right[i] += y * v.panR
	}
}
