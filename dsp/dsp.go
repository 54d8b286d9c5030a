package dsp

import "math"

// Biquad implements a second-order IIR filter section (Direct Form I).
type Biquad struct {
	// Coefficients (normalized by a0)
	b0, b1, b2 float64
	a1, a2     float64

	// State (previous samples)
	x1, x2 float64 // input history
	y1, y2 float64 // output history
}

// NewBiquad creates a biquad section from pre-normalized coefficients.
func NewBiquad(b0, b1, b2, a1, a2 float64) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// NewPeaking creates a peaking (bell) EQ section at the given center
// frequency. A gain of 0 dB yields an identity response.
func NewPeaking(gainDB, freq, q, sampleRate float64) *Biquad {
	a := math.Pow(10.0, gainDB/40.0)
	w0 := 2.0 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := 1.0 + alpha*a
	b1 := -2.0 * cosw0
	b2 := 1.0 - alpha*a
	a0 := 1.0 + alpha/a
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha/a

	return NewBiquad(b0/a0, b1/a0, b2/a0, a1/a0, a2/a0)
}

// NewLowpass creates a lowpass biquad filter.
func NewLowpass(cutoff, sampleRate, q float64) *Biquad {
	w0 := 2.0 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(b0/a0, b1/a0, b2/a0, a1/a0, a2/a0)
}

// Process processes one sample through the biquad filter.
func (b *Biquad) Process(input float64) float64 {
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// ProcessBuffer filters a buffer in place.
func (b *Biquad) ProcessBuffer(buf []float64) {
	for i, s := range buf {
		buf[i] = b.Process(s)
	}
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// DelayLine implements a circular buffer for delay.
type DelayLine struct {
	buffer   []float64
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size.
func NewDelayLine(size int) *DelayLine {
	if size < 1 {
		size = 1
	}
	return &DelayLine{
		buffer: make([]float64, size),
		size:   size,
	}
}

// Write writes a sample to the delay line.
func (d *DelayLine) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read reads a sample from the delay line at the given delay (in samples).
func (d *DelayLine) Read(delay int) float64 {
	readPos := (d.writePos - delay + d.size) % d.size
	return d.buffer[readPos]
}

// Reset clears the delay line.
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// Comb is a feedback comb filter: y[n] = x[n] + g*y[n-d].
type Comb struct {
	dl    *DelayLine
	gain  float64
	delay int
}

// NewComb creates a comb filter with the given delay in samples.
func NewComb(delay int, gain float64) *Comb {
	if delay < 1 {
		delay = 1
	}
	return &Comb{
		dl:    NewDelayLine(delay + 1),
		gain:  gain,
		delay: delay,
	}
}

// Process processes one sample through the comb filter.
func (c *Comb) Process(input float64) float64 {
	output := input + c.gain*c.dl.Read(c.delay)
	c.dl.Write(output)
	return output
}

// Reset clears the comb filter state.
func (c *Comb) Reset() {
	c.dl.Reset()
}

// Allpass is a Schroeder allpass stage: y[n] = -g*x[n] + x[n-d] + g*y[n-d].
type Allpass struct {
	in    *DelayLine
	out   *DelayLine
	gain  float64
	delay int
}

// NewAllpass creates an allpass stage with the given delay in samples.
func NewAllpass(delay int, gain float64) *Allpass {
	if delay < 1 {
		delay = 1
	}
	return &Allpass{
		in:    NewDelayLine(delay + 1),
		out:   NewDelayLine(delay + 1),
		gain:  gain,
		delay: delay,
	}
}

// Process processes one sample through the allpass stage.
func (a *Allpass) Process(input float64) float64 {
	output := -a.gain*input + a.in.Read(a.delay) + a.gain*a.out.Read(a.delay)
	a.in.Write(input)
	a.out.Write(output)
	return output
}

// Reset clears the allpass stage state.
func (a *Allpass) Reset() {
	a.in.Reset()
	a.out.Reset()
}
