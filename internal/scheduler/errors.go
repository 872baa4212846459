package scheduler

// MisuseError is panicked, never returned, when a caller violates one of
// the scheduler's internal contracts: mixing job handles from two
// different schedulers, finishing a job that hasn't been queued yet, or
// hibernating a job twice. These are programmer-contract violations, the
// same category the original's runtime treats with a literal panic!(),
// not data-dependent runtime conditions — so the recover boundary lives
// in internal/worker's run loop, not here.
type MisuseError struct {
	Message string
}

func (e *MisuseError) Error() string { return e.Message }
