package effects

import (
	"fmt"

	"github.com/socialfx/fxrender/dsp"
)

// NumBands is the fixed band count of the graphic equalizer.
const NumBands = 40

// bandQ is the Q factor shared by every peaking section.
const bandQ = 4.31

// centerFreqs are the fixed band center frequencies in Hz, spaced
// logarithmically from 20 Hz to ~19.7 kHz.
var centerFreqs = [NumBands]float64{
	20, 50, 83, 120, 161, 208, 259, 318, 383, 455,
	537, 628, 729, 843, 971, 1114, 1273, 1452, 1652, 1875,
	2126, 2406, 2719, 3070, 3462, 3901, 4392, 4941, 5556, 6244,
	7014, 7875, 8839, 9917, 11124, 12474, 13984, 15675, 17566, 19682,
}

// Equalizer is a cascade of 40 peaking filters whose gains derive from a
// normalized preset curve and an independent range scale.
type Equalizer struct {
	normalized [NumBands]float64
	gains      [NumBands]float64 // dB
	rangeScale float64
	hasCurve   bool
}

// NewEqualizer creates an equalizer with a flat (all zero dB) response
// and a range scale of 1.
func NewEqualizer() *Equalizer {
	return &Equalizer{rangeScale: 1}
}

// SetCurve normalizes and stores a 40-value gain curve. A curve of any
// other length is rejected and leaves the current curve and gains
// untouched.
//
// A curve whose values are all equal carries no shape: the normalized
// curve is all zeros, so every band gain is exactly 0 dB regardless of
// range. Any other curve is normalized over a span that always includes
// zero.
func (e *Equalizer) SetCurve(curve []float64) error {
	if len(curve) != NumBands {
		return &ParameterError{
			Effect: TypeEQ,
			Reason: fmt.Sprintf("curve length %d, want %d", len(curve), NumBands),
		}
	}

	rawMin, rawMax := curve[0], curve[0]
	for _, v := range curve {
		if v < rawMin {
			rawMin = v
		}
		if v > rawMax {
			rawMax = v
		}
	}

	var normalized [NumBands]float64
	if rawMax != rawMin {
		minEl, maxEl := rawMin, rawMax
		if minEl > 0 {
			minEl = 0
		}
		if maxEl < 0 {
			maxEl = 0
		}
		for i, v := range curve {
			normalized[i] = (v-minEl)/(maxEl-minEl)*2 - 1
		}
	}

	e.normalized = normalized
	e.hasCurve = true
	e.recomputeGains()
	return nil
}

// SetRange sets the gain range scale and replays the stored normalized
// curve through the gain formula. Range and curve are independent dials:
// changing one never drifts the other.
func (e *Equalizer) SetRange(scale float64) {
	e.rangeScale = scale
	e.recomputeGains()
}

// Range returns the current range scale.
func (e *Equalizer) Range() float64 {
	return e.rangeScale
}

// BandGains returns a copy of the current per-band gains in dB.
func (e *Equalizer) BandGains() []float64 {
	out := make([]float64, NumBands)
	copy(out, e.gains[:])
	return out
}

// NormalizedCurve returns a copy of the stored normalized curve, every
// value in [-1, 1].
func (e *Equalizer) NormalizedCurve() []float64 {
	out := make([]float64, NumBands)
	copy(out, e.normalized[:])
	return out
}

func (e *Equalizer) recomputeGains() {
	for i := range e.gains {
		e.gains[i] = e.rangeScale * 5 * e.normalized[i]
	}
}

// Apply runs each channel independently through the 40 sections in
// series. Filter state is created fresh per invocation, so repeated
// renders of unrelated buffers never interact.
func (e *Equalizer) Apply(samples [][]float64, sampleRate int) ([][]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("equalizer: invalid sample rate %d", sampleRate)
	}

	out := make([][]float64, len(samples))
	for c, chData := range samples {
		out[c] = append([]float64(nil), chData...)
		for band := 0; band < NumBands; band++ {
			f := dsp.NewPeaking(e.gains[band], centerFreqs[band], bandQ, float64(sampleRate))
			f.ProcessBuffer(out[c])
		}
	}
	return out, nil
}

// CenterFrequencies returns the fixed band frequency table.
func CenterFrequencies() []float64 {
	out := make([]float64, NumBands)
	copy(out, centerFreqs[:])
	return out
}
