package audio

import (
	"math"
	"math/rand"
	"testing"
)

const testSampleRate = 44100

func testVoiceParams() VoiceParams {
	return VoiceParams{
		Attack:   0.005,
		Decay:    1.8,
		Sustain:  0.25,
		Release:  0.6,
		Tone:     6000,
		Detune:   2,
		Hardness: 0.5,
		KeyNoise: 0.3,
	}
}

func newTestContext() *Context {
	return NewContext(testSampleRate, rand.New(rand.NewSource(7)))
}

// runFor renders the context block by block and returns the peak sample.
func runFor(ctx *Context, seconds float64) float64 {
	left := make([]float64, blockSize)
	right := make([]float64, blockSize)
	end := ctx.Now() + seconds
	var peak float64
	for ctx.Now() < end {
		ctx.runUntil(ctx.Now() + float64(blockSize)/ctx.SampleRate())
		ctx.render(left, right)
		ctx.advance(blockSize)
		for i := range left {
			peak = math.Max(peak, math.Max(math.Abs(left[i]), math.Abs(right[i])))
			left[i], right[i] = 0, 0
		}
	}
	return peak
}

func TestVoiceLifecycle(t *testing.T) {
	ctx := newTestContext()
	v := StartVoice(ctx, 0, 60, 0.8, testVoiceParams())
	if !v.Connected() {
		t.Fatal("started voice should be connected")
	}
	if peak := runFor(ctx, 0.2); peak == 0 {
		t.Fatal("voice rendered silence")
	}

	at := ctx.Now()
	v.Release(at, 0.6, 0.3)
	stop, ok := v.StopTime()
	if !ok {
		t.Fatal("stop time should be known after release")
	}
	if want, got := at+0.65, stop; !approx(want, got, 1e-12) {
		t.Errorf("stop time: want %v, got %v", want, got)
	}

	runFor(ctx, stop-at+0.01)
	if !v.Connected() {
		t.Error("voice disposed before its dispose delay")
	}
	if peak := runFor(ctx, 0.05); peak > 1e-4 {
		t.Errorf("voice still sounding after stop time: peak %v", peak)
	}
	runFor(ctx, 0.1)
	if v.Connected() {
		t.Error("voice should be disconnected after its tail")
	}
	if want, got := 0, ctx.Connected(); want != got {
		t.Errorf("master bus: want %v voices, got %v", want, got)
	}
}

func TestVoiceReleaseIdempotent(t *testing.T) {
	ctx := newTestContext()
	v := StartVoice(ctx, 0, 64, 1, testVoiceParams())
	v.Release(0.1, 0.6, 0)
	v.Release(0.3, 2, 0)

	stop, _ := v.StopTime()
	if want, got := 0.75, stop; !approx(want, got, 1e-12) {
		t.Errorf("second release changed stop time: want %v, got %v", want, got)
	}
	if want, got := 1, ctx.Pending(); want != got {
		t.Errorf("want %v scheduled disposal, got %v", want, got)
	}
	if want, got := 0.1, v.ReleaseTime(); want != got {
		t.Errorf("release time: want %v, got %v", want, got)
	}
}

func TestVoiceDisposeIdempotent(t *testing.T) {
	ctx := newTestContext()
	v := StartVoice(ctx, 0, 64, 1, testVoiceParams())
	v.Dispose()
	v.Dispose()
	if v.Connected() {
		t.Error("voice still connected")
	}

	never := &Voice{ctx: newTestContext()}
	never.Dispose()
}

func TestVoicePartials(t *testing.T) {
	ctx := newTestContext()
	v := StartVoice(ctx, 0, 69, 0.5, testVoiceParams())

	const b = 0.00002 * 1.5
	if want, got := 440*(1+b), v.oscs[0].freq; !approx(want, got, 1e-9) {
		t.Errorf("fundamental: want %v, got %v", want, got)
	}
	if want, got := 880*(1+4*b), v.oscs[2].freq; !approx(want, got, 1e-9) {
		t.Errorf("second partial: want %v, got %v", want, got)
	}
	if want, got := math.Pow(2, 2.0/1200), v.oscs[1].freq/v.oscs[0].freq; !approx(want, got, 1e-12) {
		t.Errorf("detune ratio: want %v, got %v", want, got)
	}

	// brightness (0.6 + 0.4*0.5) times velocity
	for i, want := range []float64{0.4, 0.24, 0.152, 0.08, 0.048, 0.032} {
		if got := v.gains[i].At(0.005); !approx(want, got, 1e-12) {
			t.Errorf("partial %d peak: want %v, got %v", i+1, want, got)
		}
	}
	if want, got := 0.45, v.amp.At(0.005); !approx(want, got, 1e-12) {
		t.Errorf("amp peak: want %v, got %v", want, got)
	}
}

func TestVoicePan(t *testing.T) {
	ctx := newTestContext()
	center := StartVoice(ctx, 0, 66, 1, testVoiceParams())
	if !approx(center.panL, center.panR, 1e-12) {
		t.Errorf("F# should be centered: %v / %v", center.panL, center.panR)
	}
	low := StartVoice(ctx, 0, 60, 1, testVoiceParams())
	if low.panL <= low.panR {
		t.Errorf("C should lean left: %v / %v", low.panL, low.panR)
	}
	if power := low.panL*low.panL + low.panR*low.panR; !approx(1, power, 1e-12) {
		t.Errorf("pan should be equal power, got %v", power)
	}
}

func TestVoiceClickNeedsHardness(t *testing.T) {
	ctx := newTestContext()
	params := testVoiceParams()
	params.Hardness = 0
	if v := StartVoice(ctx, 0, 60, 1, params); v.click != nil {
		t.Error("click should be skipped without hardness")
	}
}

func TestVoiceSetTone(t *testing.T) {
	ctx := newTestContext()
	v := StartVoice(ctx, 0, 60, 1, testVoiceParams())
	if want, got := 6000*1.6, v.cutoff.At(0); !approx(want, got, 1e-9) {
		t.Errorf("initial cutoff: want %v, got %v", want, got)
	}
	v.SetTone(0.95, 2500)
	if want, got := 2500.0, v.cutoff.At(0.95); want != got {
		t.Errorf("retargeted cutoff: want %v, got %v", want, got)
	}
}
