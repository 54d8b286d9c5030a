package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/socialfx/fxrender/audiofile"
	"github.com/socialfx/fxrender/effects"
)

// DecodeError reports a source decode failure.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports an artifact encode or persist failure.
type EncodeError struct {
	OutputID string
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.OutputID, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// sourceCache decodes each source file once per run. Decode failures are
// memoized too, so every job referencing a broken source reports the
// same DecodeError without re-reading the file.
type sourceCache struct {
	mu      sync.Mutex
	entries map[string]*sourceEntry
}

type sourceEntry struct {
	once sync.Once
	buf  *audiofile.Buffer
	err  error
}

func (c *sourceCache) load(src *Source) (*audiofile.Buffer, error) {
	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]*sourceEntry)
	}
	e, ok := c.entries[src.Path]
	if !ok {
		e = &sourceEntry{}
		c.entries[src.Path] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.buf, e.err = audiofile.ReadWAV(src.Path)
	})
	if e.err != nil {
		return nil, &DecodeError{Source: src.Name, Err: e.err}
	}
	return e.buf, nil
}

// Worker renders one job at a time: decode, transform, encode, persist
// the artifact plus a sidecar copy of the preset descriptor.
type Worker struct {
	OutDir     string
	RangeScale float64
	TargetRate int // 0 keeps the source rate

	sources sourceCache
}

// NewWorker creates a render worker writing below outDir.
func NewWorker(outDir string, rangeScale float64) *Worker {
	return &Worker{OutDir: outDir, RangeScale: rangeScale}
}

// Render executes one job. Every failure is job-local: nothing here
// touches state shared with other jobs.
func (w *Worker) Render(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := w.sources.load(job.Source)
	if err != nil {
		return err
	}
	if w.TargetRate > 0 && src.SampleRate != w.TargetRate {
		src, err = audiofile.Resample(src, w.TargetRate)
		if err != nil {
			return &DecodeError{Source: job.Source.Name, Err: err}
		}
	}

	eff, err := effects.New(job.Preset.FxType, job.Preset.Params, w.RangeScale)
	if err != nil {
		return err
	}
	rendered, err := eff.Apply(src.Samples, src.SampleRate)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	out := &audiofile.Buffer{SampleRate: src.SampleRate, Samples: rendered}
	if err := w.persist(job, out); err != nil {
		return &EncodeError{OutputID: job.OutputID, Err: err}
	}
	return nil
}

// persist writes the sidecar first, then the artifact, each via a
// temp-file rename so a partially written artifact is never observable
// as complete by a later run's oracle probe.
func (w *Worker) persist(job Job, out *audiofile.Buffer) error {
	artifact := ArtifactPath(w.OutDir, job.OutputID)
	sidecar := SidecarPath(w.OutDir, job.OutputID)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return err
	}

	tmpSidecar := fmt.Sprintf("%s.tmp%d", sidecar, os.Getpid())
	if err := os.WriteFile(tmpSidecar, job.Preset.Descriptor, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpSidecar, sidecar); err != nil {
		os.Remove(tmpSidecar)
		return err
	}

	tmpArtifact := fmt.Sprintf("%s.tmp%d", artifact, os.Getpid())
	if err := audiofile.WriteWAV(tmpArtifact, out); err != nil {
		os.Remove(tmpArtifact)
		return err
	}
	if err := os.Rename(tmpArtifact, artifact); err != nil {
		os.Remove(tmpArtifact)
		return err
	}
	return nil
}
