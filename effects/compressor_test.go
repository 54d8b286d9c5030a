package effects

import (
	"errors"
	"math"
	"testing"
)

func validCompParams() []float64 {
	// threshold dB, ratio, attack ms, release ms, knee dB
	return []float64{-20, 4, 5, 50, 6}
}

func TestNewCompressorValidatesParams(t *testing.T) {
	cases := [][]float64{
		{},
		{-20, 4, 5, 50},             // too short
		{-20, 0.5, 5, 50, 6},        // ratio < 1
		{-20, 4, 0, 50, 6},          // zero attack
		{-20, 4, 5, 50, -1},         // negative knee
	}
	for i, params := range cases {
		_, err := NewCompressor(params)
		if err == nil {
			t.Fatalf("case %d: expected error for %v", i, params)
		}
		var perr *ParameterError
		if !errors.As(err, &perr) {
			t.Fatalf("case %d: expected ParameterError, got %T", i, err)
		}
	}
	if _, err := NewCompressor(validCompParams()); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
}

func TestCompressorAttenuatesLoudSignal(t *testing.T) {
	c, err := NewCompressor(validCompParams())
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	const sr = 16000
	in := [][]float64{make([]float64, sr)}
	for i := range in[0] {
		in[0][i] = 0.9 * math.Sin(2*math.Pi*440*float64(i)/sr) // ~-1 dBFS, far above -20 dB threshold
	}
	out, err := c.Apply(in, sr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// Compare steady-state energy after the attack settles.
	if sigRMS(out[0][sr/2:]) >= sigRMS(in[0][sr/2:]) {
		t.Fatalf("expected attenuation above threshold: in=%g out=%g",
			sigRMS(in[0][sr/2:]), sigRMS(out[0][sr/2:]))
	}
}

func TestCompressorPassesQuietSignal(t *testing.T) {
	c, err := NewCompressor(validCompParams())
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	const sr = 16000
	in := [][]float64{make([]float64, sr)}
	for i := range in[0] {
		in[0][i] = 0.001 * math.Sin(2*math.Pi*440*float64(i)/sr) // ~-60 dBFS, far below threshold
	}
	out, err := c.Apply(in, sr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	inRMS := sigRMS(in[0][sr/2:])
	outRMS := sigRMS(out[0][sr/2:])
	if math.Abs(outRMS-inRMS)/inRMS > 0.05 {
		t.Fatalf("quiet signal altered too much: in=%g out=%g", inRMS, outRMS)
	}
}

func TestCompressorMakeupGainRaisesLevel(t *testing.T) {
	base, err := NewCompressor(validCompParams())
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	withMakeup, err := NewCompressor(append(validCompParams(), 6))
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	const sr = 16000
	in := [][]float64{make([]float64, sr)}
	for i := range in[0] {
		in[0][i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}
	outBase, err := base.Apply(in, sr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	outMakeup, err := withMakeup.Apply(in, sr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sigRMS(outMakeup[0][sr/2:]) <= sigRMS(outBase[0][sr/2:]) {
		t.Fatalf("expected makeup gain to raise level")
	}
}

func TestCompressorSharedGainAcrossChannels(t *testing.T) {
	c, err := NewCompressor(validCompParams())
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	const sr = 16000
	in := [][]float64{make([]float64, 1000), make([]float64, 1000)}
	for i := range in[0] {
		in[0][i] = 0.8 * math.Sin(2*math.Pi*200*float64(i)/sr)
		in[1][i] = 0.8 * math.Sin(2*math.Pi*200*float64(i)/sr)
	}
	out, err := c.Apply(in, sr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range out[0] {
		if out[0][i] != out[1][i] {
			t.Fatalf("identical channels diverged at frame %d (gain not shared)", i)
		}
	}
}
