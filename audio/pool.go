package audio

import (
	"sort"
)

const DefaultCapacity = 32

// Token identifies one note-on. Notes of the same pitch get distinct tokens
// and sound independently.
type Token uint64

// VoicePool tracks the active voices under a polyphony cap and applies sustain
// pedal semantics. Released voices leave the pool immediately and finish their
// tails on the master bus.
type VoicePool struct {
	ctx      *Context
	capacity int
	params   func() VoiceParams
	active   map[Token]*Voice
	next     Token
	pedal    bool
}

// NewVoicePool returns a pool that starts voices on ctx. params is called for
// every note-on and note-off to read the current envelope settings.
func NewVoicePool(ctx *Context, capacity int, params func() VoiceParams) *VoicePool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &VoicePool{
		ctx:      ctx,
		capacity: capacity,
		params:   params,
		active:   make(map[Token]*Voice),
	}
}

// NoteOn starts a voice at time at, evicting the oldest voice first if the
// pool is full.
func (p *VoicePool) NoteOn(at float64, pitch int, velocity float64) Token {
	if velocity > 1 {
		velocity = 1
	} else if velocity < 0 {
		velocity = 0
	}
	p.enforceLimit(at)
	p.next++
	p.active[p.next] = StartVoice(p.ctx, at, pitch, velocity, p.params())
	return p.next
}

// NoteOff releases every active voice playing pitch, or marks them sustained
// while the pedal is down.
func (p *VoicePool) NoteOff(at float64, pitch int) {
	params := p.params()
	for _, id := range p.tokens() {
		v := p.active[id]
		if v.pitch != pitch {
			continue
		}
		if p.pedal {
			v.sustained = true
			continue
		}
		v.Release(at, params.Release, params.KeyNoise)
		delete(p.active, id)
	}
}

// ReleaseAllSustained releases the voices held by the pedal.
func (p *VoicePool) ReleaseAllSustained(at float64) {
	params := p.params()
	for _, id := range p.tokens() {
		v := p.active[id]
		if v.sustained {
			v.Release(at, params.Release, params.KeyNoise)
			delete(p.active, id)
		}
	}
}

// SetSustainPedal engages or lifts the pedal. Lifting it releases the
// sustained voices.
func (p *VoicePool) SetSustainPedal(at float64, on bool) {
	p.pedal = on
	if !on {
		p.ReleaseAllSustained(at)
	}
}

func (p *VoicePool) SustainPedal() bool { return p.pedal }

// AllNotesOff releases every active voice and lifts the pedal.
func (p *VoicePool) AllNotesOff(at float64) {
	p.pedal = false
	params := p.params()
	for _, id := range p.tokens() {
		v := p.active[id]
		v.Release(at, params.Release, params.KeyNoise)
		delete(p.active, id)
	}
}

func (p *VoicePool) Len() int { return len(p.active) }

func (p *VoicePool) Capacity() int { return p.capacity }

// Voice returns the active voice for id, or nil if it has been released.
func (p *VoicePool) Voice(id Token) *Voice { return p.active[id] }

// Voices returns the active voices in note-on order.
func (p *VoicePool) Voices() []*Voice {
	ids := p.tokens()
	voices := make([]*Voice, len(ids))
	for i, id := range ids {
		voices[i] = p.active[id]
	}
	return voices
}

func (p *VoicePool) tokens() []Token {
	ids := make([]Token, 0, len(p.active))
	for id := range p.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// enforceLimit makes room for one more voice. The oldest voice by start time
// is evicted, tokens breaking ties. Sustained voices are only evicted when
// every voice is sustained.
func (p *VoicePool) enforceLimit(at float64) {
	if len(p.active) < p.capacity {
		return
	}
	var victim Token
	for _, sustained := range []bool{false, true} {
		for _, id := range p.tokens() {
			v := p.active[id]
			if v.sustained != sustained {
				continue
			}
			if victim == 0 || v.start < p.active[victim].start {
				victim = id
			}
		}
		if victim != 0 {
			break
		}
	}
	params := p.params()
	p.active[victim].Release(at, params.Release, params.KeyNoise)
	delete(p.active, victim)
}
