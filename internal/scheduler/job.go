package scheduler

import "fmt"

// JobFunc is an executable unit of work. It takes no arguments and
// returns the handles of any jobs it spawned internally that the caller
// needs waited on before this job itself is considered finished. If no
// such handles are returned, the job is marked finished as soon as it
// returns; see Scheduler.Hibernate for jobs that spawn children they
// must wait on.
type JobFunc func() []JobHandle

// JobHandle identifies a single job queued with a Scheduler.
// JobHandle values from different Scheduler instances must never be
// mixed; every Scheduler method that accepts one panics with a
// *MisuseError if it detects a handle it didn't create.
type JobHandle struct {
	schedulerUID uint32
	jobID        int
	job          JobFunc
}

// SchedulerUID returns the id of the scheduler that created this handle.
func (h JobHandle) SchedulerUID() uint32 { return h.schedulerUID }

// JobID returns this handle's id, unique within its scheduler.
func (h JobHandle) JobID() int { return h.jobID }

// Job returns the function this handle was created with.
func (h JobHandle) Job() JobFunc { return h.job }

// Equal reports whether h and other refer to the same job. JobFunc
// values are never compared — Go funcs aren't comparable, and identity
// is already fully determined by (schedulerUID, jobID).
func (h JobHandle) Equal(other JobHandle) bool {
	return h.schedulerUID == other.schedulerUID && h.jobID == other.jobID
}

func (h JobHandle) String() string {
	return fmt.Sprintf("JobHandle<%d:%d>", h.schedulerUID, h.jobID)
}

// JobQueue is the receiving half of a Scheduler's job channel, passed
// into worker goroutines.
type JobQueue struct {
	q *queue
}

// Next blocks until a job is available and returns it.
func (jq JobQueue) Next() JobHandle { return jq.q.next() }

// pendingJobs is the sending half, kept unexported since only the
// Scheduler that owns it should ever push to it.
type pendingJobs struct {
	q *queue
}

func (p pendingJobs) send(h JobHandle) { p.q.push(h) }
func (p pendingJobs) kill()            { p.q.kill() }
