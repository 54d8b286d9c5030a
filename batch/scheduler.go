package batch

import (
	"context"
	"log/slog"
	"sync"
)

// Renderer executes a single job. *Worker is the production
// implementation.
type Renderer interface {
	Render(ctx context.Context, job Job) error
}

// Scheduler partitions the job list into waves of at most WaveSize jobs,
// probes the oracle sequentially per wave, dispatches the remainder
// concurrently, and waits for each wave to drain before starting the
// next. At no point are more than WaveSize renders in flight.
type Scheduler struct {
	Oracle   Oracle
	Renderer Renderer
	WaveSize int
	State    *RunState
	Log      *slog.Logger
}

// Run dispatches all jobs. Individual job failures are recorded in State
// and never abort the wave or the run; the only early exit is context
// cancellation (the timeout supervisor), in which case queued waves are
// not started and Run returns the context error.
func (s *Scheduler) Run(ctx context.Context, jobs []Job) error {
	waveSize := s.WaveSize
	if waveSize < 1 {
		waveSize = 1
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	for start := 0; start < len(jobs); start += waveSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + waveSize
		if end > len(jobs) {
			end = len(jobs)
		}
		wave := jobs[start:end]

		// Oracle probes are filesystem-local; keep them sequential.
		toRun := wave[:0:0]
		for _, job := range wave {
			exists, err := s.Oracle.Exists(job.OutputID)
			if err != nil {
				s.State.JobFailed(job.OutputID, err)
				log.Error("existence probe failed",
					"output_id", job.OutputID, "error", err)
				continue
			}
			if exists {
				s.State.JobSkipped()
				log.Debug("skipping existing artifact", "output_id", job.OutputID)
				continue
			}
			toRun = append(toRun, job)
		}

		var wg sync.WaitGroup
		for _, job := range toRun {
			wg.Add(1)
			go func(job Job) {
				defer wg.Done()
				if err := s.Renderer.Render(ctx, job); err != nil {
					s.State.JobFailed(job.OutputID, err)
					log.Error("render failed",
						"output_id", job.OutputID,
						"preset", job.Preset.ID,
						"source", job.Source.Name,
						"error", err)
					return
				}
				s.State.JobCompleted()
			}(job)
		}
		wg.Wait()

		c := s.State.Counts()
		log.Info("wave drained",
			"completed", c.Completed,
			"skipped", c.Skipped,
			"failed", c.Failed,
			"total", c.Total)
	}

	return ctx.Err()
}
