package audio

import (
	"context"
	"testing"
)

func TestEventBufferOrder(t *testing.T) {
	buf := newEventBuffer(8)
	buf.push(event{kind: eventNoteOn, pitch: 60, velocity: 0.5})
	buf.push(event{kind: eventPedal, on: true})
	buf.push(event{kind: eventNoteOff, pitch: 60})

	var kinds []eventKind
	buf.iter(func(ev event) {
		kinds = append(kinds, ev.kind)
	})
	if want, got := 3, len(kinds); want != got {
		t.Fatalf("expected %v events, got %v", want, got)
	}
	if kinds[0] != eventNoteOn || kinds[1] != eventPedal || kinds[2] != eventNoteOff {
		t.Errorf("events out of order: %v", kinds)
	}

	buf.iter(func(ev event) {
		t.Errorf("buffer should be drained, got %+v", ev)
	})
}

func TestEventBuffer(t *testing.T) {
	buf := newEventBuffer(256)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var events []event
	go func() {
		for {
			select {
			case <-ctx.Done():
				buf.iter(func(ev event) {
					events = append(events, ev)
				})
				done <- struct{}{}
				return
			default:
				buf.iter(func(ev event) {
					events = append(events, ev)
				})
			}
		}
	}()

	const numEvents = 20_000
	for n := 0; n < numEvents; n++ {
		buf.push(event{pitch: n})
	}

	cancel()
	<-done

	if len(events) != numEvents {
		t.Errorf("wrong number of events: want %v, got %v", numEvents, len(events))
	}

	prev := -1
	for _, ev := range events {
		if want, got := prev+1, ev.pitch; want != got {
			t.Errorf("discontinuous event pitch: want: %v, got %v", want, ev.pitch)
		}
		prev++
	}
}
