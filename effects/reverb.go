package effects

import (
	"fmt"
	"math"

	"github.com/socialfx/fxrender/dsp"
)

// Reverberator constants (Rafii/Pardo digital reverberator).
const (
	allpassGain  = 0.1
	minDelay     = 0.01
	numCombs     = 6
	lowpassQ     = 0.707
	decayFloorDB = 0.001 // -60 dB point defining RT60
)

// Reverb is a parametric reverberator: six parallel feedback combs, a
// stereo allpass pair, a lowpass, and a trigonometric wet/dry mix.
// Output is always stereo; mono input feeds both dry channels.
type Reverb struct {
	delayTime    float64 // base comb delay in seconds
	decay        float64 // feedback decay coefficient in (0, 1)
	stereoSpread float64 // left/right allpass delay offset in seconds
	cutoff       float64 // lowpass cutoff in Hz
	wetGain      float64
	wetDry       float64 // 1 = fully wet-mixed output path
}

// NewReverb builds a reverb from an ordered parameter vector:
// [delayTime, decay, stereoSpread, cutoff, wetGain] with an optional
// sixth wetDry value (default 1).
func NewReverb(params []float64) (*Reverb, error) {
	if len(params) != 5 && len(params) != 6 {
		return nil, &ParameterError{
			Effect: TypeReverb,
			Reason: fmt.Sprintf("got %d values, want 5 or 6", len(params)),
		}
	}
	r := &Reverb{
		delayTime:    params[0],
		decay:        params[1],
		stereoSpread: params[2],
		cutoff:       params[3],
		wetGain:      params[4],
		wetDry:       1,
	}
	if len(params) == 6 {
		r.wetDry = params[5]
	}
	if r.delayTime <= 0 {
		return nil, &ParameterError{Effect: TypeReverb, Reason: fmt.Sprintf("delay time %g must be > 0", r.delayTime)}
	}
	if r.decay <= 0 || r.decay >= 1 {
		return nil, &ParameterError{Effect: TypeReverb, Reason: fmt.Sprintf("decay %g must be in (0, 1)", r.decay)}
	}
	if r.cutoff <= 0 {
		return nil, &ParameterError{Effect: TypeReverb, Reason: fmt.Sprintf("cutoff %g must be > 0", r.cutoff)}
	}
	return r, nil
}

// Apply renders the reverberated signal. The frame count is preserved;
// the channel count is always 2 on output.
func (r *Reverb) Apply(samples [][]float64, sampleRate int) ([][]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("reverb: empty input")
	}
	frames := len(samples[0])

	// Mono sum feeds the comb bank.
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for _, ch := range samples {
			sum += ch[i]
		}
		mono[i] = sum / float64(len(samples))
	}

	// RT60 from the base delay and decay coefficient.
	rt60 := r.delayTime * math.Log(decayFloorDB) / math.Log(r.decay)

	combSum := make([]float64, frames)
	for i := 0; i < numCombs; i++ {
		combDelay := r.delayTime * float64(15-i) / 15
		combGain := math.Pow(decayFloorDB, combDelay/rt60)
		delaySamples := int(math.Round(combDelay * float64(sampleRate)))

		comb := dsp.NewComb(delaySamples, combGain)
		for t := 0; t < frames; t++ {
			combSum[t] += comb.Process(mono[t])
		}
	}

	// Stereo allpass pair: delays straddle da by the spread.
	da := minDelay + 0.006
	leftDelay := int(math.Round((da + r.stereoSpread/2) * float64(sampleRate)))
	rightDelay := int(math.Round((da - r.stereoSpread/2) * float64(sampleRate)))

	left := make([]float64, frames)
	right := make([]float64, frames)
	apL := dsp.NewAllpass(leftDelay, allpassGain)
	apR := dsp.NewAllpass(rightDelay, allpassGain)
	for t := 0; t < frames; t++ {
		left[t] = apL.Process(combSum[t])
		right[t] = apR.Process(combSum[t])
	}

	dsp.NewLowpass(r.cutoff, float64(sampleRate), lowpassQ).ProcessBuffer(left)
	dsp.NewLowpass(r.cutoff, float64(sampleRate), lowpassQ).ProcessBuffer(right)

	// Dry path: duplicate mono input, keep stereo as-is.
	var dryL, dryR []float64
	if len(samples) == 1 {
		dryL, dryR = samples[0], samples[0]
	} else {
		dryL, dryR = samples[0], samples[1]
	}

	totalGain := r.wetGain + 1
	g1 := 1 / totalGain
	gainClean := math.Cos((1 - g1) * 0.125 * math.Pi)
	gainWet := math.Cos(g1 * 0.375 * math.Pi)
	gainScale := 0.5 * 0.8 / (gainClean + gainWet)

	wetLevel := math.Cos((1 - r.wetDry) * 0.5 * math.Pi)
	dryLevel := math.Cos(r.wetDry * 0.5 * math.Pi)

	outL := make([]float64, frames)
	outR := make([]float64, frames)
	for t := 0; t < frames; t++ {
		outL[t] = dryLevel*dryL[t] + wetLevel*gainScale*(gainClean*mono[t]+gainWet*left[t])
		outR[t] = dryLevel*dryR[t] + wetLevel*gainScale*(gainClean*mono[t]+gainWet*right[t])
	}
	return [][]float64{outL, outR}, nil
}
