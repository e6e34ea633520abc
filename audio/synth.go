package audio

import (
	"math"
)

const twoPi = 2 * math.Pi

type waveform int

const (
	waveSine waveform = iota
	waveSquare
)

// osc is a scheduled oscillator: silent outside [start, stop).
type osc struct {
	wave  waveform
	freq  float64
	phase float64 // in cycles, [0, 1)
	start float64
	stop  float64
}

func newOsc(wave waveform, freq, start float64) osc {
	return osc{wave: wave, freq: freq, start: start, stop: math.Inf(1)}
}

func (o *osc) sample(t, dt float64) float64 {
	if t < o.start || t >= o.stop {
		return 0
	}
	var out float64
	switch o.wave {
	case waveSine:
		out = math.Sin(twoPi * o.phase)
	case waveSquare:
		if o.phase < 0.5 {
			out = 1
		} else {
			out = -1
		}
	}
	o.phase += o.freq * dt
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
	return out
}

type filterType int

const (
	lowpass filterType = iota
	bandpass
	highpass
)

// filter is a biquad in transposed direct form II. Coefficients are
// recalculated once per block.
type filter struct {
	kind filterType
	q    float64

	c0, c1, c2, c3, c4 float64

	// state
	y1, y2 float64
}

func newFilter(kind filterType, q float64) filter {
	return filter{kind: kind, q: q}
}

func (f *filter) tick(in float64) float64 {
	out := f.c0*in + f.y1
	f.y1 = f.c1*in - f.c3*out + f.y2
	f.y2 = f.c2*in - f.c4*out
	return out
}

// Coefficients from https://www.w3.org/2011/audio/audio-eq-cookbook.html
func (f *filter) calculateCoefficients(freq, sampleRate float64) {
	nyquist := sampleRate / 2
	if freq > nyquist*0.99 {
		freq = nyquist * 0.99
	} else if freq < 10 {
		freq = 10
	}
	omega := twoPi * freq / sampleRate
	cos := math.Cos(omega)
	sin := math.Sin(omega)
	alpha := sin / (2 * f.q)

	var b0, b1, b2 float64
	switch f.kind {
	case lowpass:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = b0
	case bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	case highpass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = b0
	}
	a0 := 1 + alpha
	a1 := -2 * cos
	a2 := 1 - alpha

	f.c0 = b0 / a0
	f.c1 = b1 / a0
	f.c2 = b2 / a0
	f.c3 = a1 / a0
	f.c4 = a2 / a0
}

// MidiToFreq returns the frequency of a pitch in equal temperament, A4 = 440Hz.
func MidiToFreq(pitch int) float64 {
	return math.Pow(2, float64(pitch-69)/12.0) * 440
}

type partial struct {
	n     int
	mult  float64
	gain  float64
	decay float64 // fraction of the decay time
}

var partials = [...]partial{
	{1, 1.0, 1.00, 1.2},
	{2, 2.0, 0.60, 0.9},
	{3, 3.0, 0.38, 0.65},
	{4, 4.0, 0.20, 0.5},
	{5, 5.0, 0.12, 0.42},
	{6, 6.0, 0.08, 0.35},
}

// inharmonicity is the stretch coefficient B of 1 + B*n².
func inharmonicity(freq float64) float64 {
	return 0.00002 * math.Min(1.5, freq/220)
}
