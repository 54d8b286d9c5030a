package batch

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a run's wall-clock duration when no explicit
// ceiling is configured.
const DefaultTimeout = 30 * time.Minute

// ErrTimeout is returned when the supervisor force-terminates a run that
// never reached completion.
var ErrTimeout = errors.New("render run timed out")

// Supervisor races a run against a wall-clock ceiling so the pipeline
// can never hang indefinitely on a stalled decode or encode.
type Supervisor struct {
	Timeout time.Duration
}

// Run starts the given function with a cancellable context and waits for
// it to return. If the timeout fires first the context is cancelled,
// in-flight jobs are abandoned, and ErrTimeout is returned once the run
// function has unwound. Whichever side loses the race has no further
// effect.
func (s *Supervisor) Run(parent context.Context, start func(context.Context) error) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.C:
		cancel()
		<-errCh
		return ErrTimeout
	}
}
