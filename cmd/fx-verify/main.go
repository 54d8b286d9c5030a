// Command fx-verify compares a rendered artifact against its source and
// prints per-band energy deltas, so a batch's output can be spot-checked
// without listening to it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/socialfx/fxrender/analysis"
	"github.com/socialfx/fxrender/audiofile"
)

func main() {
	srcPath := flag.String("source", "", "Source WAV file path")
	artifactPath := flag.String("artifact", "", "Rendered WAV file path")
	maxFlatDB := flag.Float64("max-flat", 0.1, "Fail if every band delta is within this many dB (artifact looks untouched)")
	flag.Parse()

	if *srcPath == "" || *artifactPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: fx-verify -source <wav> -artifact <wav>")
		os.Exit(2)
	}

	src, err := audiofile.ReadWAV(*srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source: %v\n", err)
		os.Exit(1)
	}
	rendered, err := audiofile.ReadWAV(*artifactPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading artifact: %v\n", err)
		os.Exit(1)
	}
	if src.SampleRate != rendered.SampleRate {
		fmt.Fprintf(os.Stderr, "Sample rate mismatch: source %d Hz, artifact %d Hz\n",
			src.SampleRate, rendered.SampleRate)
		os.Exit(1)
	}

	bands := analysis.DefaultBands()
	deltas, err := analysis.BandDeltasDB(audiofile.MonoMix(src), audiofile.MonoMix(rendered), src.SampleRate, bands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing band deltas: %v\n", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Band", "Range", "Delta (dB)"})
	flat := true
	for i, b := range bands {
		t.AppendRow(table.Row{
			b.Name,
			fmt.Sprintf("%.0f-%.0f Hz", b.LoHz, b.HiHz),
			fmt.Sprintf("%+.2f", deltas[i]),
		})
		if deltas[i] > *maxFlatDB || deltas[i] < -*maxFlatDB {
			flat = false
		}
	}
	t.Render()

	if flat {
		fmt.Fprintf(os.Stderr, "Artifact is spectrally flat relative to its source (all deltas within %.2f dB)\n", *maxFlatDB)
		os.Exit(1)
	}
}
