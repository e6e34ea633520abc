package audio

import (
	"fmt"
	"sort"
)

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

type preset map[string]interface{}

var presets = map[string]preset{
	"grand": {
		"env.attack":  0.005,
		"env.decay":   1.8,
		"env.sustain": 0.25,
		"env.release": 0.6,
		"tone":        6000.0,
		"detune":      2.0,
		"hardness":    0.5,
		"keynoise":    0.3,
	},
	"felt": {
		"env.attack":  0.012,
		"env.decay":   1.2,
		"env.sustain": 0.2,
		"env.release": 0.35,
		"tone":        2200.0,
		"detune":      1.0,
		"hardness":    0.15,
		"keynoise":    0.6,
	},
	"glass": {
		"env.attack":  0.002,
		"env.decay":   3.5,
		"env.sustain": 0.4,
		"env.release": 1.5,
		"tone":        12000.0,
		"detune":      7.0,
		"hardness":    0.8,
		"keynoise":    0.1,
	},
	"glitch": {
		"swing":           0.3,
		"jitter":          12.0,
		"stutter.prob":    0.25,
		"stutter.repeats": 2,
		"drop.prob":       0.15,
	},
}

// PresetNames returns the names accepted by LoadPreset.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %v", name)
	}
	for k, v := range p {
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
