package audio

import (
	"math"
	"testing"
)

func approx(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestParamSetValue(t *testing.T) {
	p := newParam(1)
	p.SetValueAtTime(3, 0.5)
	if want, got := 1.0, p.At(0.25); want != got {
		t.Errorf("before set: want %v, got %v", want, got)
	}
	if want, got := 3.0, p.At(0.5); want != got {
		t.Errorf("at set: want %v, got %v", want, got)
	}
}

func TestParamExponentialRamp(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0.01, 0)
	p.ExponentialRampTo(1, 1)

	if want, got := 0.1, p.At(0.5); !approx(want, got, 1e-12) {
		t.Errorf("midpoint: want %v, got %v", want, got)
	}
	if want, got := 1.0, p.At(1); want != got {
		t.Errorf("end: want %v, got %v", want, got)
	}
	if want, got := 1.0, p.At(5); want != got {
		t.Errorf("after end: want %v, got %v", want, got)
	}
}

func TestParamRampFloor(t *testing.T) {
	p := newParam(1)
	p.SetValueAtTime(1, 0)
	p.ExponentialRampTo(0, 1)
	if want, got := minRampValue, p.At(2); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestParamChainedRamps(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0.0001, 0)
	p.ExponentialRampTo(0.9, 0.005)
	p.ExponentialRampTo(0.225, 1.805)

	if want, got := 0.9, p.At(0.005); !approx(want, got, 1e-12) {
		t.Errorf("attack peak: want %v, got %v", want, got)
	}
	mid := math.Sqrt(0.9 * 0.225)
	if want, got := mid, p.At(0.905); !approx(want, got, 1e-9) {
		t.Errorf("decay midpoint: want %v, got %v", want, got)
	}
}

func TestParamCancelAndHoldThenDecay(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0.01, 0)
	p.ExponentialRampTo(1, 1)

	p.CancelAndHold(0.5)
	if want, got := 0.1, p.At(0.75); !approx(want, got, 1e-12) {
		t.Errorf("held value: want %v, got %v", want, got)
	}

	const tc = 0.2
	p.DecayTowards(0, 1, tc)
	if want, got := 0.1, p.At(1); !approx(want, got, 1e-12) {
		t.Errorf("decay start: want %v, got %v", want, got)
	}
	if want, got := 0.1*math.Exp(-1), p.At(1+tc); !approx(want, got, 1e-12) {
		t.Errorf("after one time constant: want %v, got %v", want, got)
	}
}

func TestParamTargetEndsAtNextEvent(t *testing.T) {
	p := newParam(1)
	p.DecayTowards(0, 0, 1)
	p.SetValueAtTime(5, 2)

	if want, got := math.Exp(-1), p.At(1); !approx(want, got, 1e-12) {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := 5.0, p.At(3); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestParamInsertKeepsOrder(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(2, 2)
	p.SetValueAtTime(1, 1)
	p.SetValueAtTime(3, 2)
	if want, got := 1.0, p.At(1.5); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	// equal times apply in insertion order
	if want, got := 3.0, p.At(2); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}
