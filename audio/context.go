package audio

import (
	"math"
	"math/rand"
)

// Context is the shared signal graph: a sample clock, the master bus that
// voices connect to and a queue of callbacks scheduled at absolute times.
// It is owned by the render goroutine.
type Context struct {
	sampleRate float64
	frames     int64
	voices     []*Voice
	queue      eventQueue
	rand       *rand.Rand
}

func NewContext(sampleRate float64, rng *rand.Rand) *Context {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Context{sampleRate: sampleRate, rand: rng}
}

// Now returns the time of the next frame to be rendered, in seconds.
func (c *Context) Now() float64 {
	return float64(c.frames) / c.sampleRate
}

func (c *Context) SampleRate() float64 { return c.sampleRate }

// At schedules fn to run during the block containing t. Times in the past run
// at the start of the next block. fn receives t clamped to the current time.
func (c *Context) At(t float64, fn func(at float64)) {
	c.queue.schedule(t, fn)
}

// Pending returns the number of scheduled callbacks.
func (c *Context) Pending() int { return c.queue.Len() }

func (c *Context) runUntil(end float64) {
	now := c.Now()
	for {
		ev, ok := c.queue.next(end)
		if !ok {
			return
		}
		ev.fn(math.Max(ev.at, now))
	}
}

func (c *Context) connect(v *Voice) {
	if !c.connected(v) {
		c.voices = append(c.voices, v)
	}
}

// disconnect removes v from the master bus. It reports whether v was connected.
func (c *Context) disconnect(v *Voice) bool {
	for i, other := range c.voices {
		if other == v {
			copy(c.voices[i:], c.voices[i+1:])
			c.voices[len(c.voices)-1] = nil
			c.voices = c.voices[:len(c.voices)-1]
			return true
		}
	}
	return false
}

func (c *Context) connected(v *Voice) bool {
	for _, other := range c.voices {
		if other == v {
			return true
		}
	}
	return false
}

// Connected returns the number of voices on the master bus, including
// released voices whose tail is still sounding.
func (c *Context) Connected() int { return len(c.voices) }

// render mixes every connected voice into left and right, starting at Now.
func (c *Context) render(left, right []float64) {
	t := c.Now()
	for _, v := range c.voices {
		v.render(t, left, right)
	}
}

func (c *Context) advance(frames int) {
	c.frames += int64(frames)
}
