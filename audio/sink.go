package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Source renders audio into a buffer per channel. Sources add to the buffer.
type Source interface {
	Process([][]float32)
}

// Output is a running audio device.
type Output interface {
	Start() error
	Stop() error
}

// Sink plays its sources on the default PortAudio output device.
type Sink struct {
	sources []Source
	stream  *portaudio.Stream
}

func NewSink(sampleRate float64, bufferSize int) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	var s Sink
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, bufferSize, s.Process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open default stream: %w", err)
	}
	s.stream = stream
	return &s, nil
}

func (s *Sink) Start() error {
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	s.stream.Close()
	portaudio.Terminate()
	return nil
}

// AddSources must be called before Start.
func (s *Sink) AddSources(sources ...Source) {
	s.sources = append(s.sources, sources...)
}

func (s *Sink) Process(samples [][]float32) {
	mix(s.sources, samples)
}

func mix(sources []Source, samples [][]float32) {
	for i := range samples {
		for j := range samples[i] {
			samples[i][j] = 0.
		}
	}
	for _, source := range sources {
		source.Process(samples)
	}
}
