package audio

import (
	"fmt"
	"io"
	"math"

	wav "github.com/youpy/go-wav"
)

// Bounce renders seconds of audio from src faster than real time and writes
// it to w as a 16 bit stereo WAV file.
func Bounce(src Source, sampleRate float64, w io.Writer, seconds float64) error {
	frames := int(math.Ceil(seconds * sampleRate))
	out := wav.NewWriter(w, uint32(frames), 2, uint32(sampleRate), 16)

	buf := [][]float32{make([]float32, DefaultBufferSize), make([]float32, DefaultBufferSize)}
	samples := make([]wav.Sample, DefaultBufferSize)
	for written := 0; written < frames; {
		mix([]Source{src}, buf)
		n := frames - written
		if n > DefaultBufferSize {
			n = DefaultBufferSize
		}
		for i := 0; i < n; i++ {
			samples[i] = wav.Sample{Values: [2]int{toInt16(buf[0][i]), toInt16(buf[1][i])}}
		}
		if err := out.WriteSamples(samples[:n]); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}
		written += n
	}
	return nil
}

func toInt16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * math.MaxInt16)
}
