// Package analysis provides magnitude-spectrum measurements used to
// verify that rendered artifacts moved energy in the intended bands.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Band is a frequency interval used for energy aggregation.
type Band struct {
	Name string
	LoHz float64
	HiHz float64
}

// Spectrum is an averaged magnitude spectrum of a mono signal.
type Spectrum struct {
	SampleRate int
	FFTSize    int
	// Magnitudes holds one averaged linear magnitude per bin below the
	// Nyquist frequency (bin 0 excluded).
	Magnitudes []float64
}

// BinHz returns the width of one frequency bin.
func (s *Spectrum) BinHz() float64 {
	return float64(s.SampleRate) / float64(s.FFTSize)
}

// Compute averages Hann-windowed FFT frames over the whole signal with a
// half-window hop.
func Compute(x []float64, sampleRate int, fftSize int) (*Spectrum, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if fftSize < 16 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two >= 16", fftSize)
	}
	if len(x) < fftSize {
		return nil, fmt.Errorf("signal too short: %d frames for fft size %d", len(x), fftSize)
	}

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, err
	}

	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
	}

	nBins := fftSize / 2
	spec := make([]complex128, fftSize/2+1)
	buf := make([]float64, fftSize)
	avg := make([]float64, nBins)

	hop := fftSize / 2
	nFrames := 0
	for pos := 0; pos+fftSize <= len(x); pos += hop {
		for i := 0; i < fftSize; i++ {
			buf[i] = x[pos+i] * hann[i]
		}
		plan.Forward(spec, buf)
		for k := 1; k < nBins; k++ {
			avg[k-1] += cmplx.Abs(spec[k])
		}
		nFrames++
	}
	for k := range avg {
		avg[k] /= float64(nFrames)
	}

	return &Spectrum{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		Magnitudes: avg,
	}, nil
}

// BandEnergyDB sums magnitude energy across the band and returns it in
// dB (floored well below audibility for silent bands).
func (s *Spectrum) BandEnergyDB(loHz, hiHz float64) float64 {
	binHz := s.BinHz()
	var sum float64
	for k, mag := range s.Magnitudes {
		freq := float64(k+1) * binHz
		if freq >= loHz && freq < hiHz {
			sum += mag * mag
		}
	}
	if sum < 1e-20 {
		sum = 1e-20
	}
	return 10 * math.Log10(sum)
}

// BandDeltasDB measures per-band energy differences between a rendered
// signal and its source: positive values mean the render gained energy
// in that band.
func BandDeltasDB(source, rendered []float64, sampleRate int, bands []Band) ([]float64, error) {
	const fftSize = 4096
	specSrc, err := Compute(source, sampleRate, fftSize)
	if err != nil {
		return nil, err
	}
	specOut, err := Compute(rendered, sampleRate, fftSize)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(bands))
	for i, b := range bands {
		out[i] = specOut.BandEnergyDB(b.LoHz, b.HiHz) - specSrc.BandEnergyDB(b.LoHz, b.HiHz)
	}
	return out, nil
}

// DefaultBands covers the audible range in seven octave-ish groups.
func DefaultBands() []Band {
	return []Band{
		{"sub-bass", 20, 100},
		{"bass", 100, 300},
		{"low-mid", 300, 1000},
		{"mid", 1000, 3000},
		{"hi-mid", 3000, 6000},
		{"high", 6000, 12000},
		{"air", 12000, 20000},
	}
}
