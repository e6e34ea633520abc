package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mrdg/hexpiano/audio"
	"github.com/mrdg/hexpiano/config"
	"github.com/mrdg/hexpiano/midi"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

func main() {
	var (
		configFile = flag.String("config", "hexpiano.yaml", "YAML config file")
		backend    = flag.String("backend", "", "audio output: portaudio or oto")
		midiPort   = flag.String("midi", "", "MIDI input ports to open, matched on part of their name, empty opens all")
		run        = flag.String("run", "", "file with commands to run at startup")
		render     = flag.String("render", "", "write the pattern to this WAV file and exit")
		bars       = flag.Int("bars", 2, "number of bars written by -render")
		seed       = flag.Int64("seed", 0, "random seed for humanization, 0 picks one")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *midiPort != "" {
		cfg.MIDIPort = *midiPort
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	inst, err := newInstrument(cfg)
	if err != nil {
		log.Fatal(err)
	}
	session := &env{inst: inst, seed: cfg.Seed}

	script, err := readScript(*run)
	if err != nil {
		log.Fatal(err)
	}
	for _, line := range script {
		if _, err := session.eval(line); err != nil {
			log.Fatal(err)
		}
	}

	if *render != "" {
		if err := bounce(inst, *render, *bars, cfg.Seed); err != nil {
			log.Fatal(err)
		}
		return
	}

	out, err := openOutput(cfg, inst)
	if err != nil {
		log.Fatal(err)
	}
	if err := out.Start(); err != nil {
		log.Fatal(err)
	}

	in, err := midi.Listen(cfg.MIDIPort, inst)
	if err != nil {
		log.Printf("midi: %v, continuing without MIDI input", err)
	}
	session.midi = in

	err = repl(session)
	in.Close()
	out.Stop()
	if err != nil && err != io.EOF {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newInstrument(cfg config.Config) (*audio.Instrument, error) {
	inst := audio.NewInstrument(audio.Options{
		SampleRate: cfg.SampleRate,
		Voices:     cfg.Voices,
		Rows:       cfg.Grid.Rows,
		Rand:       rand.New(rand.NewSource(cfg.Seed)),
	})
	if cfg.Preset != "" {
		if err := audio.LoadPreset(cfg.Preset, inst); err != nil {
			return nil, err
		}
	}
	if err := inst.Set("steps", cfg.Grid.Steps); err != nil {
		return nil, err
	}
	inst.SetOctave(cfg.Grid.Octave)
	if cfg.Grid.Scale != "" {
		if err := inst.ApplyScale(cfg.Grid.Scale); err != nil {
			return nil, err
		}
	}
	if len(cfg.Grid.Notes) > 0 {
		if n := inst.ApplyNotes(cfg.Grid.Notes); n < len(cfg.Grid.Notes) {
			log.Printf("config: skipped %d invalid note names", len(cfg.Grid.Notes)-n)
		}
	}

	keys := make([]string, 0, len(cfg.Params))
	for k := range cfg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := inst.Set(k, cfg.Params[k]); err != nil {
			return nil, fmt.Errorf("config param %s: %w", k, err)
		}
	}
	return inst, nil
}

func openOutput(cfg config.Config, inst *audio.Instrument) (audio.Output, error) {
	switch cfg.Backend {
	case config.BackendOto:
		return audio.NewOtoSink(cfg.SampleRate, cfg.BufferSize, inst)
	default:
		sink, err := audio.NewSink(cfg.SampleRate, cfg.BufferSize)
		if err != nil {
			return nil, err
		}
		sink.AddSources(inst)
		return sink, nil
	}
}

// readScript returns the commands in file, skipping blank lines and lines
// starting with #.
func readScript(file string) ([]string, error) {
	if file == "" {
		return nil, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	return commands, scanner.Err()
}
