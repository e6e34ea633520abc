package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays its sources through oto, for systems without PortAudio.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewOtoSink(sampleRate float64, bufferSize int, sources ...Source) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(bufferSize) / sampleRate * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	player := ctx.NewPlayer(newStreamReader(bufferSize, sources))
	return &OtoSink{ctx: ctx, player: player}, nil
}

func (s *OtoSink) Start() error {
	s.player.Play()
	return nil
}

func (s *OtoSink) Stop() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return s.ctx.Suspend()
}

// streamReader pulls frames from the sources and encodes them as interleaved
// little endian float32.
type streamReader struct {
	sources []Source
	buf     [][]float32
}

func newStreamReader(bufferSize int, sources []Source) *streamReader {
	return &streamReader{
		sources: sources,
		buf:     [][]float32{make([]float32, bufferSize), make([]float32, bufferSize)},
	}
}

const bytesPerFrame = 2 * 4

func (r *streamReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if max := len(r.buf[0]); frames > max {
		frames = max
	}
	if frames == 0 {
		return 0, nil
	}
	samples := [][]float32{r.buf[0][:frames], r.buf[1][:frames]}
	mix(r.sources, samples)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame:], math.Float32bits(samples[0][i]))
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame+4:], math.Float32bits(samples[1][i]))
	}
	return frames * bytesPerFrame, nil
}
