// Package midi connects a hardware MIDI input to the instrument.
package midi

import (
	"errors"
	"fmt"
	"log"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const (
	sustainController = 64
	minVelocity       = 0.2
)

// Handler receives decoded MIDI input. *audio.Instrument implements it.
type Handler interface {
	NoteOn(pitch int, velocity float64)
	NoteOff(pitch int)
	SetSustainPedal(on bool)
}

// Dispatch decodes msg and calls the matching method on h. Note on with
// velocity 0 counts as a note off. It returns false for messages it ignores.
func Dispatch(msg gomidi.Message, h Handler) bool {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		h.NoteOn(int(key), Velocity(vel))
	case msg.GetNoteEnd(&ch, &key):
		h.NoteOff(int(key))
	case msg.GetControlChange(&ch, &cc, &val) && cc == sustainController:
		h.SetSustainPedal(val >= 64)
	default:
		return false
	}
	return true
}

// Velocity maps a MIDI velocity to [0.2, 1] so soft keys stay audible.
func Velocity(v uint8) float64 {
	f := float64(v) / 127
	if f < minVelocity {
		return minVelocity
	}
	if f > 1 {
		return 1
	}
	return f
}

type Status int

const (
	NoAccess Status = iota
	Connected
)

func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "no access"
	}
}

var ErrNoPorts = errors.New("no MIDI input ports")

// Input is a set of open MIDI input ports.
type Input struct {
	ports  []drivers.In
	stops  []func()
	status Status
}

// Listen forwards messages to h from every input port whose name contains
// match (case insensitive). An empty match listens on all ports. When no port
// can be opened it returns an Input with status NoAccess together with the
// error, so callers can keep running without MIDI.
func Listen(match string, h Handler) (*Input, error) {
	in := &Input{status: NoAccess}
	ports := gomidi.GetInPorts()
	if len(ports) == 0 {
		return in, ErrNoPorts
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	selected := matchPorts(names, match)
	if len(selected) == 0 {
		return in, fmt.Errorf("no MIDI input port matching %q", match)
	}

	var errs []error
	for _, i := range selected {
		port := ports[i]
		stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
			Dispatch(msg, h)
		}, gomidi.HandleError(func(err error) {
			log.Printf("midi: %v", err)
		}))
		if err != nil {
			errs = append(errs, fmt.Errorf("listen to %s: %w", names[i], err))
			continue
		}
		in.ports = append(in.ports, port)
		in.stops = append(in.stops, stop)
	}
	if len(in.ports) == 0 {
		return in, errors.Join(errs...)
	}
	for _, err := range errs {
		log.Printf("midi: %v", err)
	}
	in.status = Connected
	return in, nil
}

// matchPorts returns the indexes of the names containing match, ignoring
// case. An empty match selects every name.
func matchPorts(names []string, match string) []int {
	match = strings.ToLower(match)
	var selected []int
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), match) {
			selected = append(selected, i)
		}
	}
	return selected
}

// Ports lists the names of the available input ports.
func Ports() []string {
	var names []string
	for _, p := range gomidi.GetInPorts() {
		names = append(names, p.String())
	}
	return names
}

func (in *Input) Status() Status { return in.status }

// Port returns the names of the connected ports, or "" without access.
func (in *Input) Port() string {
	names := make([]string, len(in.ports))
	for i, p := range in.ports {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

func (in *Input) Close() error {
	for _, stop := range in.stops {
		stop()
	}
	in.stops = nil
	in.ports = nil
	in.status = NoAccess
	gomidi.CloseDriver()
	return nil
}
