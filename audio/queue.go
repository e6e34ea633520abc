package audio

import "container/heap"

type timedEvent struct {
	at  float64
	seq uint64
	fn  func(at float64)
}

// eventQueue is a min-heap of timed events ordered by time, then by
// scheduling order.
type eventQueue struct {
	events []timedEvent
	seq    uint64
}

func (q *eventQueue) Len() int { return len(q.events) }

func (q *eventQueue) Less(i, j int) bool {
	a, b := q.events[i], q.events[j]
	if a.at != b.at {
		return a.at < b.at
	}
	return a.seq < b.seq
}

func (q *eventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

func (q *eventQueue) Push(x interface{}) { q.events = append(q.events, x.(timedEvent)) }

func (q *eventQueue) Pop() interface{} {
	n := len(q.events)
	ev := q.events[n-1]
	q.events[n-1] = timedEvent{}
	q.events = q.events[:n-1]
	return ev
}

func (q *eventQueue) schedule(at float64, fn func(at float64)) {
	q.seq++
	heap.Push(q, timedEvent{at: at, seq: q.seq, fn: fn})
}

// next pops the earliest event if it is due before end.
func (q *eventQueue) next(end float64) (timedEvent, bool) {
	if len(q.events) == 0 || q.events[0].at >= end {
		return timedEvent{}, false
	}
	return heap.Pop(q).(timedEvent), true
}
