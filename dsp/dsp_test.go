package dsp

import (
	"math"
	"testing"
)

func TestPeakingZeroGainIsIdentity(t *testing.T) {
	f := NewPeaking(0, 1000, 4.31, 48000)
	for i := 0; i < 256; i++ {
		in := math.Sin(float64(i) * 0.13)
		out := f.Process(in)
		if math.Abs(out-in) > 1e-12 {
			t.Fatalf("sample %d: got %g want %g", i, out, in)
		}
	}
}

func TestPeakingBoostRaisesBandEnergy(t *testing.T) {
	const sr = 48000.0
	const freq = 1000.0
	n := 4800
	in := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}

	boosted := append([]float64(nil), in...)
	NewPeaking(12, freq, 4.31, sr).ProcessBuffer(boosted)

	// Skip the transient at the start.
	if rms(boosted[n/2:]) <= rms(in[n/2:])*1.5 {
		t.Fatalf("expected +12 dB boost at center frequency: in=%g out=%g",
			rms(in[n/2:]), rms(boosted[n/2:]))
	}
}

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	const sr = 48000.0
	n := 4800
	in := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 15000 * float64(i) / sr)
	}
	out := append([]float64(nil), in...)
	NewLowpass(500, sr, 0.707).ProcessBuffer(out)

	if rms(out[n/2:]) > rms(in[n/2:])*0.05 {
		t.Fatalf("expected strong attenuation above cutoff: in=%g out=%g",
			rms(in[n/2:]), rms(out[n/2:]))
	}
}

func TestBiquadResetClearsState(t *testing.T) {
	f := NewLowpass(500, 48000, 0.707)
	f.Process(1)
	f.Process(1)
	f.Reset()
	if out := f.Process(0); out != 0 {
		t.Fatalf("expected silence after reset, got %g", out)
	}
}

func TestCombImpulseResponse(t *testing.T) {
	c := NewComb(4, 0.5)
	var got []float64
	in := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0}
	for _, x := range in {
		got = append(got, c.Process(x))
	}
	// y[n] = x[n] + 0.5*y[n-4]: echoes at 0, 4, 8 with halving gain.
	want := []float64{1, 0, 0, 0, 0.5, 0, 0, 0, 0.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: got %g want %g", i, got[i], want[i])
		}
	}
}

func TestAllpassImpulseResponse(t *testing.T) {
	a := NewAllpass(3, 0.1)
	var got []float64
	in := []float64{1, 0, 0, 0, 0, 0, 0}
	for _, x := range in {
		got = append(got, a.Process(x))
	}
	// y[n] = -g*x[n] + x[n-3] + g*y[n-3]
	want := []float64{-0.1, 0, 0, 1 - 0.1*0.1, 0, 0, 0.1 * (1 - 0.1*0.1)}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: got %g want %g", i, got[i], want[i])
		}
	}
}

func TestDelayLineReadBeforeWrite(t *testing.T) {
	d := NewDelayLine(8)
	d.Write(1)
	d.Write(2)
	d.Write(3)
	if v := d.Read(1); v != 3 {
		t.Fatalf("Read(1): got %g want 3", v)
	}
	if v := d.Read(3); v != 1 {
		t.Fatalf("Read(3): got %g want 1", v)
	}
	d.Reset()
	if v := d.Read(1); v != 0 {
		t.Fatalf("Read after reset: got %g want 0", v)
	}
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
