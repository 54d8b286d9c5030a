package batch

import "sync"

// JobFailure records one failed job for later enumeration (a retry pass
// can target exactly these output ids).
type JobFailure struct {
	OutputID string
	Err      error
}

// Counts is a point-in-time snapshot of run progress.
type Counts struct {
	Total     int
	Completed int
	Skipped   int
	Failed    int
}

// Accounted reports whether every job has reached a terminal state.
func (c Counts) Accounted() bool {
	return c.Completed+c.Skipped+c.Failed == c.Total
}

// RunState is the only shared mutable state of a run. Counters are
// mutated under a single mutex; completion is signalled exactly once via
// a closed channel when every job completed or was skipped and none
// failed.
type RunState struct {
	mu        sync.Mutex
	counts    Counts
	failures  []JobFailure
	done      chan struct{}
	signalled bool
}

// NewRunState initializes run state for the given job total.
func NewRunState(total int) *RunState {
	return &RunState{
		counts: Counts{Total: total},
		done:   make(chan struct{}),
	}
}

// JobCompleted records one successful render.
func (s *RunState) JobCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Completed++
	s.checkCompleteLocked()
}

// JobSkipped records one job whose artifact already existed.
func (s *RunState) JobSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Skipped++
	s.checkCompleteLocked()
}

// JobFailed records a job-local failure. Failed jobs count toward the
// drain total but block the success signal.
func (s *RunState) JobFailed(outputID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Failed++
	s.failures = append(s.failures, JobFailure{OutputID: outputID, Err: err})
}

// Counts returns a snapshot of the counters.
func (s *RunState) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Failures returns a copy of the recorded failures.
func (s *RunState) Failures() []JobFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobFailure, len(s.failures))
	copy(out, s.failures)
	return out
}

// Done returns a channel closed exactly once when every job completed or
// was skipped with zero failures.
func (s *RunState) Done() <-chan struct{} {
	return s.done
}

// Complete reports whether the success condition has been signalled.
func (s *RunState) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signalled
}

func (s *RunState) checkCompleteLocked() {
	if s.signalled {
		return
	}
	if s.counts.Failed == 0 && s.counts.Completed+s.counts.Skipped == s.counts.Total {
		s.signalled = true
		close(s.done)
	}
}
