// Package worker implements the worker pool (C8): a fixed number of
// persistent goroutines that pull jobs from a scheduler's queue, run
// them, and report completion back, until the scheduler terminates the
// queue.
//
// Grounded on original_source/src/runtime/multithreading/workers.rs
// (build_workers) for the loop shape, and on the teacher's pool/pool.go
// for the ants.Pool construction idiom — goroutines here are long-lived
// consumer loops rather than short submitted tasks, but ants.Pool still
// gives the same "build once, release once" lifecycle the teacher uses
// instead of hand-rolled goroutine/WaitGroup bookkeeping.
package worker

import (
	"log"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/vertexlang/vertex/internal/scheduler"
)

// DefaultWorkers returns the worker count used when Build is given n <= 0:
// the number of logical CPUs, per spec.md §4.6.
func DefaultWorkers() int { return runtime.NumCPU() }

// Pool is a running set of worker loops bound to one scheduler.
type Pool struct {
	ants *ants.Pool
	wg   sync.WaitGroup
}

// Build starts n persistent worker loops against sched, each pulling a
// job from sched.Queue(), running it, and finishing or hibernating it
// depending on whether it produced child jobs to wait on. n <= 0
// defaults to DefaultWorkers(). The loops run until
// sched.TerminateWorkers() kills the queue; call Wait afterward to block
// until they've all exited, then Release to return the pool's
// goroutines.
func Build(sched *scheduler.AsyncScheduler, n int) (*Pool, error) {
	if n <= 0 {
		n = DefaultWorkers()
	}

	pool, err := ants.NewPool(n, ants.WithOptions(ants.Options{
		ExpiryDuration: 0, // persistent loops, never idle out and get reclaimed
	}))
	if err != nil {
		return nil, err
	}

	p := &Pool{ants: pool}
	queue := sched.Queue()

	for i := 0; i < n; i++ {
		p.wg.Add(1)
		if err := pool.Submit(func() {
			defer p.wg.Done()
			run(sched, queue)
		}); err != nil {
			p.wg.Done()
			pool.Release()
			return nil, err
		}
	}

	return p, nil
}

// run pulls jobs until queue.Next() panics (the queue was killed by
// sched.TerminateWorkers, or a job itself violated a scheduler
// contract). Either way this is the recover boundary spec.md §7
// describes: the panic is logged as fatal rather than crashing the
// whole process, since one worker's termination shouldn't take down
// goroutines still draining other jobs.
func run(sched *scheduler.AsyncScheduler, queue scheduler.JobQueue) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("vertex: worker stopped: %v", r)
		}
	}()

	for {
		handle := queue.Next()
		children := handle.Job()()
		if len(children) == 0 {
			sched.FinishJob(handle)
		} else {
			sched.Hibernate(handle, children)
		}
	}
}

// Wait blocks until every worker loop has exited.
func (p *Pool) Wait() { p.wg.Wait() }

// Release returns the pool's goroutines. Call after Wait.
func (p *Pool) Release() { p.ants.Release() }
