// Package audiofile is the codec boundary: WAV decode into channel-major
// float64 buffers, encode back to 16-bit PCM, and sample-rate conversion.
package audiofile

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Buffer holds decoded PCM audio, one slice per channel, samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Samples    [][]float64
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return len(b.Samples)
}

// Frames returns the per-channel frame count.
func (b *Buffer) Frames() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		SampleRate: b.SampleRate,
		Samples:    make([][]float64, len(b.Samples)),
	}
	for c := range b.Samples {
		out.Samples[c] = append([]float64(nil), b.Samples[c]...)
	}
	return out
}

// ReadWAV decodes a WAV file into a channel-major float64 buffer.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := &Buffer{
		SampleRate: buf.Format.SampleRate,
		Samples:    make([][]float64, ch),
	}
	for c := 0; c < ch; c++ {
		out.Samples[c] = make([]float64, frames)
		for i := 0; i < frames; i++ {
			out.Samples[c][i] = float64(buf.Data[i*ch+c])
		}
	}
	return out, nil
}

// WriteWAV encodes a buffer as 16-bit PCM, creating parent directories.
func WriteWAV(path string, b *Buffer) error {
	if b == nil || b.Channels() == 0 {
		return fmt.Errorf("empty buffer")
	}
	frames := b.Frames()
	for c, chData := range b.Samples {
		if len(chData) != frames {
			return fmt.Errorf("channel %d length mismatch: %d != %d", c, len(chData), frames)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ch := b.Channels()
	data := make([]float32, frames*ch)
	for c := 0; c < ch; c++ {
		for i := 0; i < frames; i++ {
			data[i*ch+c] = float32(b.Samples[c][i])
		}
	}

	enc := wav.NewEncoder(f, b.SampleRate, 16, ch, 1)
	defer enc.Close()

	abuf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  b.SampleRate,
			NumChannels: ch,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(abuf)
}

// Resample converts the buffer to the target rate. The input buffer is
// returned unchanged when the rates already match.
func Resample(b *Buffer, toRate int) (*Buffer, error) {
	if b.SampleRate == toRate {
		return b, nil
	}
	out := &Buffer{
		SampleRate: toRate,
		Samples:    make([][]float64, b.Channels()),
	}
	for c, chData := range b.Samples {
		r, err := dspresample.NewForRates(
			float64(b.SampleRate),
			float64(toRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, err
		}
		out.Samples[c] = r.Process(chData)
	}
	return out, nil
}

// MonoMix averages all channels into one.
func MonoMix(b *Buffer) []float64 {
	frames := b.Frames()
	ch := b.Channels()
	out := make([]float64, frames)
	if ch == 0 {
		return out
	}
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += b.Samples[c][i]
		}
		out[i] = sum / float64(ch)
	}
	return out
}
