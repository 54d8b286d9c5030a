// Package effects implements the render transforms: a 40-band graphic
// equalizer, a parametric reverberator, and a soft-knee compressor.
// Every effect is a pure buffer transform with no I/O and no state
// carried across invocations.
package effects

import "fmt"

// Effect types accepted by New.
const (
	TypeEQ         = "eq"
	TypeReverb     = "reverb"
	TypeCompressor = "comp"
)

// Effect transforms channel-major sample buffers. The returned buffer may
// have a different channel count (the reverb always produces stereo) but
// always has the same frame count and sample rate.
type Effect interface {
	Apply(samples [][]float64, sampleRate int) ([][]float64, error)
}

// ParameterError reports malformed or wrong-length effect parameters.
type ParameterError struct {
	Effect string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s parameters: %s", e.Effect, e.Reason)
}

// New builds an effect of the given type from a preset parameter vector.
// rangeScale only affects the equalizer gain scaling; other effects
// ignore it.
func New(fxType string, params []float64, rangeScale float64) (Effect, error) {
	switch fxType {
	case TypeEQ:
		eq := NewEqualizer()
		eq.SetRange(rangeScale)
		if err := eq.SetCurve(params); err != nil {
			return nil, err
		}
		return eq, nil
	case TypeReverb:
		return NewReverb(params)
	case TypeCompressor:
		return NewCompressor(params)
	default:
		return nil, fmt.Errorf("unknown effect type %q", fxType)
	}
}

// ParamCount returns the expected parameter-vector length for a type.
// Types with an optional trailing parameter report the required minimum.
func ParamCount(fxType string) (int, error) {
	switch fxType {
	case TypeEQ:
		return NumBands, nil
	case TypeReverb:
		return 5, nil
	case TypeCompressor:
		return 5, nil
	default:
		return 0, fmt.Errorf("unknown effect type %q", fxType)
	}
}
