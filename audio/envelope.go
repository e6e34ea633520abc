package audio

import (
	"math"
	"sort"
)

// minRampValue is the floor for exponential ramp endpoints, which cannot
// reach or cross zero.
const minRampValue = 1e-5

type paramKind int

const (
	paramSet paramKind = iota
	paramExpRamp
	paramTarget
)

type paramEvent struct {
	kind  paramKind
	time  float64
	value float64
	tc    float64 // time constant, paramTarget only
}

// Param is a value automated against the context clock. Changes are scheduled
// at absolute times and evaluated lazily by At, which expects non-decreasing
// times.
type Param struct {
	value  float64 // value at time
	time   float64 // end of the last completed segment
	events []paramEvent
}

func newParam(value float64) Param {
	return Param{value: value}
}

// SetValueAtTime jumps to value at t.
func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(paramEvent{kind: paramSet, time: t, value: value})
}

// ExponentialRampTo ramps exponentially from the previous event's value so that
// value is reached at t.
func (p *Param) ExponentialRampTo(value, t float64) {
	p.insert(paramEvent{kind: paramExpRamp, time: t, value: math.Max(minRampValue, value)})
}

// DecayTowards starts an exponential approach to target at t with time
// constant tc. It lasts until the next scheduled event.
func (p *Param) DecayTowards(target, t, tc float64) {
	p.insert(paramEvent{kind: paramTarget, time: t, value: target, tc: tc})
}

// CancelAndHold drops every scheduled event and holds the value the
// automation has at t.
func (p *Param) CancelAndHold(t float64) {
	v := p.At(t)
	p.events = p.events[:0]
	p.value = v
	p.time = t
}

func (p *Param) insert(ev paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].time > ev.time
	})
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func (p *Param) complete(value, t float64) {
	p.value = value
	p.time = t
	p.events = p.events[1:]
}

// At returns the value at t. Events that end at or before t are consumed.
func (p *Param) At(t float64) float64 {
	for len(p.events) > 0 {
		ev := p.events[0]
		switch ev.kind {
		case paramExpRamp:
			if t < ev.time {
				return expRamp(p.value, p.time, ev.value, ev.time, t)
			}
			p.complete(ev.value, ev.time)
		case paramSet:
			if t < ev.time {
				return p.value
			}
			p.complete(ev.value, ev.time)
		case paramTarget:
			if t < ev.time {
				return p.value
			}
			if len(p.events) == 1 {
				return ev.targetAt(p.value, t)
			}
			next := p.events[1]
			switch {
			case next.kind == paramExpRamp:
				// a ramp after a target starts where the target started
				p.complete(p.value, ev.time)
			case next.time <= t:
				p.complete(ev.targetAt(p.value, next.time), next.time)
			default:
				return ev.targetAt(p.value, t)
			}
		}
	}
	return p.value
}

func (ev paramEvent) targetAt(from, t float64) float64 {
	if ev.tc <= 0 {
		return ev.value
	}
	return ev.value + (from-ev.value)*math.Exp(-(t-ev.time)/ev.tc)
}

func expRamp(v0, t0, v1, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	if v0 <= 0 || v1 <= 0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}
