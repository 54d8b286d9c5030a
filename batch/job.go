// Package batch derives render jobs from sources and presets and
// dispatches them in bounded concurrent waves with idempotent resume.
package batch

import (
	"path/filepath"
	"strings"

	"github.com/socialfx/fxrender/preset"
)

// Source is one input audio file. Decoding happens lazily in the worker
// and is cached per run; the struct itself is read-only.
type Source struct {
	Name string
	Path string
}

// NewSource derives a source from its file path; the name is the base
// name without extension.
func NewSource(path string) *Source {
	base := filepath.Base(path)
	return &Source{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}
}

// Job is one (source, preset) render unit.
type Job struct {
	Source   *Source
	Preset   *preset.Preset
	OutputID string
}

// OutputID builds the deterministic idempotency key for a render.
// Preset ids and source names never contain '/', so distinct pairs can
// never collide.
func OutputID(presetID, sourceName string) string {
	return presetID + "/" + sourceName
}

// DeriveJobs computes the full cartesian product of sources and presets
// in a stable order (sources outer, presets inner). The derivation is
// pure: the same inputs always yield the same job list and ids, which is
// what makes idempotent resume possible.
func DeriveJobs(sources []*Source, presets []*preset.Preset) []Job {
	jobs := make([]Job, 0, len(sources)*len(presets))
	for _, src := range sources {
		for _, p := range presets {
			jobs = append(jobs, Job{
				Source:   src,
				Preset:   p,
				OutputID: OutputID(p.ID, src.Name),
			})
		}
	}
	return jobs
}
