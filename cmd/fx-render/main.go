// Command fx-render applies one effect preset to one source WAV and
// writes the result. Useful for auditioning a preset without deriving a
// whole batch.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/socialfx/fxrender/audiofile"
	"github.com/socialfx/fxrender/effects"
	"github.com/socialfx/fxrender/preset"
)

func main() {
	input := flag.String("input", "", "Source WAV file path")
	presetPath := flag.String("preset", "", "Preset JSON file path")
	fxType := flag.String("fx", effects.TypeEQ, "Effect type: eq, reverb or comp")
	rangeScale := flag.Float64("range", 1.0, "Equalizer range scale")
	sampleRate := flag.Int("rate", 0, "Resample the source to this rate (0 keeps the source rate)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	if *input == "" || *presetPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: fx-render -input <wav> -preset <json> [-fx eq|reverb|comp] [-output out.wav]")
		os.Exit(2)
	}

	p, err := preset.LoadFile(*presetPath, *fxType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
		os.Exit(1)
	}

	src, err := audiofile.ReadWAV(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}
	if *sampleRate > 0 && src.SampleRate != *sampleRate {
		src, err = audiofile.Resample(src, *sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Rendering %s with preset %s (%s, %d frames at %d Hz)...\n",
		*input, p.ID, *fxType, src.Frames(), src.SampleRate)

	eff, err := effects.New(p.FxType, p.Params, *rangeScale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building effect: %v\n", err)
		os.Exit(1)
	}
	rendered, err := eff.Apply(src.Samples, src.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}

	out := &audiofile.Buffer{SampleRate: src.SampleRate, Samples: rendered}
	if err := audiofile.WriteWAV(*output, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames, %d channels)\n", *output, out.Frames(), out.Channels())
}
