package effects

import (
	"fmt"
	"math"
)

const compressorEps = 1e-8

// Compressor is a soft-knee dynamic range compressor driven by a summed
// sidechain with per-sample attack/release ballistics.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	attackMs    float64
	releaseMs   float64
	kneeDB      float64
	makeupDB    float64
}

// NewCompressor builds a compressor from an ordered parameter vector:
// [threshold dB, ratio, attack ms, release ms, knee dB] with an optional
// sixth makeup-gain value (default 0 dB).
func NewCompressor(params []float64) (*Compressor, error) {
	if len(params) != 5 && len(params) != 6 {
		return nil, &ParameterError{
			Effect: TypeCompressor,
			Reason: fmt.Sprintf("got %d values, want 5 or 6", len(params)),
		}
	}
	c := &Compressor{
		thresholdDB: params[0],
		ratio:       params[1],
		attackMs:    params[2],
		releaseMs:   params[3],
		kneeDB:      params[4],
	}
	if len(params) == 6 {
		c.makeupDB = params[5]
	}
	if c.ratio < 1 {
		return nil, &ParameterError{Effect: TypeCompressor, Reason: fmt.Sprintf("ratio %g must be >= 1", c.ratio)}
	}
	if c.attackMs <= 0 || c.releaseMs <= 0 {
		return nil, &ParameterError{Effect: TypeCompressor, Reason: "attack and release must be > 0"}
	}
	if c.kneeDB < 0 {
		return nil, &ParameterError{Effect: TypeCompressor, Reason: fmt.Sprintf("knee %g must be >= 0", c.kneeDB)}
	}
	return c, nil
}

// Apply compresses all channels with a shared gain signal computed from
// the channel sum.
func (c *Compressor) Apply(samples [][]float64, sampleRate int) ([][]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("compressor: invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("compressor: empty input")
	}
	frames := len(samples[0])

	side := make([]float64, frames)
	if len(samples) == 1 {
		copy(side, samples[0])
	} else {
		for i := 0; i < frames; i++ {
			var sum float64
			for _, ch := range samples {
				sum += ch[i]
			}
			side[i] = sum
		}
	}

	// Ballistics coefficients: reach 90% of a step within the attack or
	// release time.
	const ballisticsConstant = 9.0
	attackSamples := float64(sampleRate) * c.attackMs / 1e3
	releaseSamples := float64(sampleRate) * c.releaseMs / 1e3
	alphaA := math.Exp(-math.Log(ballisticsConstant) / attackSamples)
	alphaR := math.Exp(-math.Log(ballisticsConstant) / releaseSamples)

	kneeLo := c.thresholdDB - c.kneeDB/2
	kneeHi := c.thresholdDB + c.kneeDB/2

	gain := make([]float64, frames)
	prev := 0.0
	for t := 0; t < frames; t++ {
		mag := math.Abs(side[t])
		if mag < compressorEps {
			mag = compressorEps
		}
		xDB := 20 * math.Log10(mag)

		// Static characteristic with soft knee.
		scDB := xDB
		switch {
		case c.kneeDB > 0 && xDB >= kneeLo && xDB <= kneeHi:
			d := xDB - kneeLo
			scDB = xDB + (1/c.ratio-1)*d*d/(2*c.kneeDB)
		case xDB > kneeHi:
			scDB = c.thresholdDB + (xDB-c.thresholdDB)/c.ratio
		}
		gc := scDB - xDB

		// Attack when gain reduction deepens, release when it recovers.
		alpha := alphaR
		if t == 0 {
			prev = gc
		} else if gc < prev {
			alpha = alphaA
		}
		if t > 0 {
			prev = (1-alpha)*gc + alpha*prev
		}
		gain[t] = math.Pow(10, (prev+c.makeupDB)/20)
	}

	out := make([][]float64, len(samples))
	for ch, chData := range samples {
		out[ch] = make([]float64, frames)
		for t := 0; t < frames; t++ {
			out[ch][t] = chData[t] * gain[t]
		}
	}
	return out, nil
}
