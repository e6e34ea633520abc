package audio

import "math/rand"

// noiseBurst plays a short buffer of white noise through its own filter.
type noiseBurst struct {
	buf    []float64
	start  float64
	gain   float64
	pos    int
	filter filter
}

func newNoiseBurst(rng *rand.Rand, sampleRate, start, seconds, gain float64, f filter) *noiseBurst {
	n := int(seconds * sampleRate)
	if n < 1 {
		n = 1
	}
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = rng.Float64()*2 - 1
	}
	return &noiseBurst{buf: buf, start: start, gain: gain, filter: f}
}

// sample returns the filtered burst at t. The filter keeps running after the
// buffer is exhausted so its tail rings out.
func (b *noiseBurst) sample(t float64) float64 {
	var in float64
	if t >= b.start && b.pos < len(b.buf) {
		in = b.gain * b.buf[b.pos]
		b.pos++
	}
	return b.filter.tick(in)
}
