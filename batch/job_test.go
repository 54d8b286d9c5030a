package batch

import (
	"fmt"
	"testing"

	"github.com/socialfx/fxrender/preset"
)

func testSources(n int) []*Source {
	var out []*Source
	for i := 0; i < n; i++ {
		out = append(out, NewSource(fmt.Sprintf("/audio/src%d.wav", i)))
	}
	return out
}

func testPresets(n int) []*preset.Preset {
	var out []*preset.Preset
	for i := 0; i < n; i++ {
		out = append(out, &preset.Preset{
			ID:         fmt.Sprintf("eq_%d", i),
			FxType:     "eq",
			Params:     make([]float64, 40),
			Descriptor: []byte(`{"text":"t","param_values":[]}`),
		})
	}
	return out
}

func TestNewSourceNameStripsExtension(t *testing.T) {
	s := NewSource("/audio/raw/drums.wav")
	if s.Name != "drums" {
		t.Fatalf("name: got %q want %q", s.Name, "drums")
	}
	if s.Path != "/audio/raw/drums.wav" {
		t.Fatalf("path mismatch: %q", s.Path)
	}
}

func TestDeriveJobsFullCartesianProduct(t *testing.T) {
	jobs := DeriveJobs(testSources(3), testPresets(4))
	if len(jobs) != 12 {
		t.Fatalf("expected 12 jobs, got %d", len(jobs))
	}

	seen := make(map[string]bool)
	for _, j := range jobs {
		if seen[j.OutputID] {
			t.Fatalf("duplicate output id %q", j.OutputID)
		}
		seen[j.OutputID] = true
		if want := j.Preset.ID + "/" + j.Source.Name; j.OutputID != want {
			t.Fatalf("output id %q, want %q", j.OutputID, want)
		}
	}
}

func TestDeriveJobsDeterministic(t *testing.T) {
	sources := testSources(2)
	presets := testPresets(3)
	a := DeriveJobs(sources, presets)
	b := DeriveJobs(sources, presets)
	if len(a) != len(b) {
		t.Fatalf("length differs: %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i].OutputID != b[i].OutputID {
			t.Fatalf("job %d differs across derivations: %q != %q", i, a[i].OutputID, b[i].OutputID)
		}
	}
}

func TestDeriveJobsEmptyInputs(t *testing.T) {
	if jobs := DeriveJobs(nil, testPresets(3)); len(jobs) != 0 {
		t.Fatalf("expected no jobs without sources, got %d", len(jobs))
	}
	if jobs := DeriveJobs(testSources(3), nil); len(jobs) != 0 {
		t.Fatalf("expected no jobs without presets, got %d", len(jobs))
	}
}
