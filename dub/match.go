package dub

import (
	"fmt"
)

type matchItem struct {
	level   int
	matcher matcher
}

// matcher reports whether note number n, counted from 1, is selected.
type matcher interface {
	match(n int) bool
}

// rangeMatch is inclusive. -1 leaves a side open.
type rangeMatch struct {
	start, end int
}

func (r rangeMatch) match(n int) bool {
	return (r.start == -1 || n >= r.start) && (r.end == -1 || n <= r.end)
}

var matchAll = rangeMatch{-1, -1}

type listMatch []int

func (l listMatch) match(n int) bool {
	for _, k := range l {
		if k == n {
			return true
		}
	}
	return false
}

// EvalMatchExpr expands expr over one bar of numerator/denominator time with
// stepSize steps per whole note. The result has one entry per step, 1 where
// the expression matches.
//
// The first item of expr numbers the beats of the bar. Every slash halves the
// division and numbers notes within the enclosing beat, so with 4/4 and
// sixteenth steps '2//3 selects the third sixteenth of beat two. A step
// is set when the last item matches it and no coarser item excluded the note
// that contains it.
func EvalMatchExpr(expr MatchExpr, numerator, denominator, stepSize int) ([]int, error) {
	if numerator < 1 || denominator < 1 || stepSize%denominator != 0 {
		return nil, fmt.Errorf("can't divide %d/%d into %d steps", numerator, denominator, stepSize)
	}
	seq := make([]int, (stepSize/denominator)*numerator)
	last := len(expr.matchers) - 1

	for i := last; i >= 0; i-- {
		item := expr.matchers[i]
		division := denominator << uint(item.level)
		if division > stepSize || stepSize%division != 0 {
			return nil, fmt.Errorf("can't match on %d notes with step size %d", division, stepSize)
		}
		stride := stepSize / division
		perBeat := division / denominator

		for note, pos := 0, 0; pos < len(seq); note, pos = note+1, pos+stride {
			n := note
			if perBeat > 1 {
				n = note % perBeat
			}
			if item.matcher.match(n + 1) {
				if i == last {
					seq[pos] = 1
				}
				continue
			}
			end := pos + stride
			if end > len(seq) {
				end = len(seq)
			}
			for j := pos; j < end; j++ {
				seq[j] = 0
			}
		}
	}
	return seq, nil
}
