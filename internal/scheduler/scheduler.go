// Package scheduler implements the job scheduler (C7): dependency-aware
// job queueing for the concurrent graph VM. A job becomes eligible to run
// once every job it depends on has finished; jobs with no remaining
// dependencies are pushed straight to the queue worker goroutines drain.
//
// Grounded on original_source/src/runtime/multithreading/jobs.rs. The
// Rust JobScheduler/AsyncJobScheduler split — a plain, non-synchronized
// scheduler plus an Arc<Mutex<..>> wrapper for cross-thread use — carries
// over directly as Scheduler (unsynchronized; for single-goroutine setup
// and the tests below) and AsyncScheduler (mutex-guarded; for handing to
// worker goroutines).
package scheduler

import (
	"sync"
	"sync/atomic"
)

var schedulerUID atomic.Uint32

// sleepingJob has not yet been queued: it's waiting on the listed job
// ids to finish.
type sleepingJob struct {
	handle       JobHandle
	dependencies []int
}

// hibernatingJob already ran once but spawned child jobs of its own; it
// won't be marked finished until those children finish too.
type hibernatingJob struct {
	handle       JobHandle
	dependencies []int
}

// Scheduler creates and tracks jobs, releasing each one to its queue as
// soon as its dependencies finish. A Scheduler value is not safe for
// concurrent use by multiple goroutines — call IntoAsync to get a
// mutex-guarded handle suitable for sharing with worker goroutines.
type Scheduler struct {
	schedulerUID      uint32
	minJobID          int
	curJobID          int
	buffer            []int
	sleepingJobs      []sleepingJob
	hibernatingJobs   []hibernatingJob
	pushNotifications map[int]chan struct{}
	pending           pendingJobs
	queue             JobQueue
}

// New creates a Scheduler with a fresh, process-unique id.
func New() *Scheduler {
	uid := schedulerUID.Add(1) - 1
	q := newQueue()
	return &Scheduler{
		schedulerUID:      uid,
		curJobID:          1,
		pushNotifications: make(map[int]chan struct{}),
		pending:           pendingJobs{q: q},
		queue:             JobQueue{q: q},
	}
}

// IntoAsync wraps s in a mutex-guarded handle for use from worker
// goroutines. s must not be used directly afterward.
func (s *Scheduler) IntoAsync() *AsyncScheduler {
	return &AsyncScheduler{sched: s}
}

// SchedulerUID returns this scheduler's process-unique id.
func (s *Scheduler) SchedulerUID() uint32 { return s.schedulerUID }

// Queue returns the job queue workers should drain jobs from.
func (s *Scheduler) Queue() JobQueue { return s.queue }

// FinishedJobs returns the number of jobs that have completed so far.
// Hibernating jobs don't count until their children finish too.
func (s *Scheduler) FinishedJobs() int { return s.minJobID + len(s.buffer) }

// NewJob registers job with the given dependencies, queueing it
// immediately if every dependency has already finished, or holding it
// as sleeping until they have. Panics if any dependency handle belongs
// to a different Scheduler.
func (s *Scheduler) NewJob(dependencies []JobHandle, job JobFunc) JobHandle {
	for _, d := range dependencies {
		if d.schedulerUID != s.schedulerUID {
			panic(&MisuseError{Message: "scheduler: tried to use job dependencies from another job system"})
		}
	}

	ids := make([]int, 0, len(dependencies))
	for _, d := range dependencies {
		if d.jobID > s.minJobID && !containsInt(s.buffer, d.jobID) {
			ids = append(ids, d.jobID)
		}
	}

	jobID := s.curJobID
	s.curJobID++
	handle := JobHandle{schedulerUID: s.schedulerUID, jobID: jobID, job: job}

	if len(ids) == 0 {
		s.pending.send(handle)
	} else {
		s.sleepingJobs = append(s.sleepingJobs, sleepingJob{handle: handle, dependencies: ids})
	}

	return handle
}

// Hibernate marks job as waiting on dependencies to finish before it is
// itself considered finished. Use this instead of FinishJob when a job
// spawned children of its own during execution. Panics if job belongs to
// another Scheduler, is already hibernating, or hasn't been queued yet.
func (s *Scheduler) Hibernate(job JobHandle, dependencies []JobHandle) {
	if job.schedulerUID != s.schedulerUID {
		panic(&MisuseError{Message: "scheduler: tried to hibernate a job from another job system"})
	}
	for _, h := range s.hibernatingJobs {
		if h.handle.jobID == job.jobID {
			panic(&MisuseError{Message: "scheduler: job is already hibernating"})
		}
	}
	for _, sj := range s.sleepingJobs {
		if sj.handle.jobID == job.jobID {
			panic(&MisuseError{Message: "scheduler: job has not yet been queued"})
		}
	}

	ids := make([]int, 0, len(dependencies))
	for _, d := range dependencies {
		if d.jobID > s.minJobID && !containsInt(s.buffer, d.jobID) {
			ids = append(ids, d.jobID)
		}
	}

	if len(ids) == 0 {
		s.FinishJob(job)
		return
	}

	s.hibernatingJobs = append(s.hibernatingJobs, hibernatingJob{handle: job, dependencies: ids})
}

// FinishJob marks job as finished, releasing any sleeping or
// hibernating job whose dependencies are now all satisfied. Panics if
// job belongs to another Scheduler or hasn't been queued yet.
func (s *Scheduler) FinishJob(job JobHandle) {
	if job.schedulerUID != s.schedulerUID {
		panic(&MisuseError{Message: "scheduler: tried to finish a job from another job system"})
	}
	for _, sj := range s.sleepingJobs {
		if sj.handle.jobID == job.jobID {
			panic(&MisuseError{Message: "scheduler: job has not yet been queued"})
		}
	}

	jobID := job.jobID

	remaining := s.sleepingJobs[:0]
	for _, sj := range s.sleepingJobs {
		sj.dependencies = removeInt(sj.dependencies, jobID)
		if len(sj.dependencies) == 0 {
			s.pending.send(sj.handle)
			continue
		}
		remaining = append(remaining, sj)
	}
	s.sleepingJobs = remaining

	var finished []JobHandle
	remainingHibernating := s.hibernatingJobs[:0]
	for _, hj := range s.hibernatingJobs {
		hj.dependencies = removeInt(hj.dependencies, jobID)
		if len(hj.dependencies) == 0 {
			finished = append(finished, hj.handle)
			continue
		}
		remainingHibernating = append(remainingHibernating, hj)
	}
	s.hibernatingJobs = remainingHibernating

	s.buffer = append(s.buffer, jobID)
	for {
		nextMinID := s.minJobID + 1
		idx := -1
		for i, id := range s.buffer {
			if id <= nextMinID {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		s.buffer = append(s.buffer[:idx], s.buffer[idx+1:]...)
		s.minJobID = nextMinID
	}

	for _, h := range finished {
		s.FinishJob(h)
	}

	if ch, ok := s.pushNotifications[job.jobID]; ok {
		delete(s.pushNotifications, job.jobID)
		close(ch)
	}
}

// IsDone reports whether job has finished.
func (s *Scheduler) IsDone(job JobHandle) bool {
	if job.schedulerUID != s.schedulerUID {
		panic(&MisuseError{Message: "scheduler: tried to check a job from another job system"})
	}
	return job.jobID <= s.minJobID || containsInt(s.buffer, job.jobID)
}

// TerminateWorkers kills the job queue, causing every worker blocked on
// Queue().Next() to panic — the signal for a worker loop to shut down.
func (s *Scheduler) TerminateWorkers() { s.pending.kill() }

// buildJobNotifyChannel returns a channel that closes once job
// finishes, or nil if it already has.
func (s *Scheduler) buildJobNotifyChannel(job JobHandle) <-chan struct{} {
	if s.IsDone(job) {
		return nil
	}
	ch := make(chan struct{})
	s.pushNotifications[job.jobID] = ch
	return ch
}

// AsyncScheduler is a mutex-guarded Scheduler, safe to share across
// worker goroutines the way a job queue's producer/consumer pair must
// be. It mirrors the original's AsyncJobScheduler Arc<Mutex<..>> wrapper.
type AsyncScheduler struct {
	mu    sync.Mutex
	sched *Scheduler
}

// WaitForJob blocks the calling goroutine until job finishes. Must not
// be called from within a job running on the only worker in the pool —
// use Hibernate from inside a job instead.
func (a *AsyncScheduler) WaitForJob(job JobHandle) {
	a.mu.Lock()
	ch := a.sched.buildJobNotifyChannel(job)
	a.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (a *AsyncScheduler) SchedulerUID() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.SchedulerUID()
}

func (a *AsyncScheduler) FinishedJobs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.FinishedJobs()
}

func (a *AsyncScheduler) Queue() JobQueue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.Queue()
}

func (a *AsyncScheduler) NewJob(dependencies []JobHandle, job JobFunc) JobHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.NewJob(dependencies, job)
}

func (a *AsyncScheduler) FinishJob(job JobHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sched.FinishJob(job)
}

func (a *AsyncScheduler) Hibernate(job JobHandle, dependencies []JobHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sched.Hibernate(job, dependencies)
}

func (a *AsyncScheduler) IsDone(job JobHandle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.IsDone(job)
}

func (a *AsyncScheduler) TerminateWorkers() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sched.TerminateWorkers()
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
