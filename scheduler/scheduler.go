// Package scheduler runs closures on a single background worker in FIFO
// order. Tasks from one scheduler never run concurrently with each other,
// which makes it a cheap serialization point for subsystems that want
// async hand-off without their own locking.
package scheduler

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrStopped reports a task handed to a scheduler after Shutdown began.
var ErrStopped = errors.New("scheduler is stopped")

// Scheduler owns one worker goroutine and an unbounded FIFO queue.
type Scheduler struct {
	mu       sync.Mutex
	workCond *sync.Cond // tasks arrived or shutdown began
	idleCond *sync.Cond // queue drained and no task in flight
	queue    []func()
	active   int
	stopped  bool
	done     chan struct{} // closed when the worker exits
}

// New starts the worker and returns a ready scheduler.
func New() *Scheduler {
	s := &Scheduler{done: make(chan struct{})}
	s.workCond = sync.NewCond(&s.mu)
	s.idleCond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Schedule queues fn for execution and reports whether it was accepted.
// Nil tasks and tasks arriving after Shutdown are dropped with false.
func (s *Scheduler) Schedule(fn func()) bool {
	if fn == nil {
		return false
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, fn)
	s.workCond.Signal()
	s.mu.Unlock()
	return true
}

// Pending returns the number of queued tasks not yet started.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Running reports whether the scheduler still accepts tasks.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

// WaitForAll blocks until the queue is empty and no task is executing.
// Tasks scheduled while waiting extend the wait.
func (s *Scheduler) WaitForAll() {
	s.mu.Lock()
	for len(s.queue) > 0 || s.active > 0 {
		s.idleCond.Wait()
	}
	s.mu.Unlock()
}

// Shutdown stops intake, lets the worker drain everything already queued
// and joins it. Safe to call more than once; every call returns only after
// the worker has exited.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		s.workCond.Signal()
	}
	s.mu.Unlock()
	<-s.done
}

// Type identifies schedulers in object registries.
func (s *Scheduler) Type() string {
	return "Scheduler"
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.workCond.Wait()
		}
		if len(s.queue) == 0 {
			// Stopped and drained.
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.active++
		s.mu.Unlock()

		s.invoke(fn)

		s.mu.Lock()
		s.active--
		if len(s.queue) == 0 && s.active == 0 {
			s.idleCond.Broadcast()
		}
		s.mu.Unlock()
	}
}

// invoke shields the worker from task panics; one bad task must not take
// the queue down with it.
func (s *Scheduler) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "scheduler: task panic: %v\n", r)
		}
	}()
	fn()
}
