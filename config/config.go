// Package config loads the startup settings of hexpiano from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendPortAudio = "portaudio"
	BackendOto       = "oto"
)

type Config struct {
	SampleRate float64                `yaml:"sample_rate"`
	BufferSize int                    `yaml:"buffer_size"`
	Backend    string                 `yaml:"backend"`
	MIDIPort   string                 `yaml:"midi_port"`
	Seed       int64                  `yaml:"seed"`
	Voices     int                    `yaml:"voices"`
	Preset     string                 `yaml:"preset"`
	Params     map[string]interface{} `yaml:"params"`
	Grid       Grid                   `yaml:"grid"`
}

type Grid struct {
	Rows   int      `yaml:"rows"`
	Steps  int      `yaml:"steps"`
	Octave int      `yaml:"octave"`
	Scale  string   `yaml:"scale"`
	Notes  []string `yaml:"notes"`
}

func Default() Config {
	return Config{
		SampleRate: 44100,
		BufferSize: 512,
		Backend:    BackendPortAudio,
		Voices:     32,
		Grid: Grid{
			Rows:   8,
			Steps:  16,
			Octave: 4,
		},
	}
}

// Load reads the file at path over the defaults. An empty path or a missing
// file gives the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate: %v", c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer_size: %v", c.BufferSize)
	}
	switch c.Backend {
	case BackendPortAudio, BackendOto:
	default:
		return fmt.Errorf("unknown backend %q, want %s or %s", c.Backend, BackendPortAudio, BackendOto)
	}
	if c.Voices < 1 {
		return fmt.Errorf("need at least one voice: %v", c.Voices)
	}
	if c.Grid.Rows < 1 {
		return fmt.Errorf("grid needs at least one row: %v", c.Grid.Rows)
	}
	if c.Grid.Steps < 1 || c.Grid.Steps > 64 {
		return fmt.Errorf("grid steps out of range 1 - 64: %v", c.Grid.Steps)
	}
	return nil
}
