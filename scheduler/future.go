package scheduler

import (
	"fmt"
	"sync"
)

type result[T any] struct {
	value T
	err   error
}

// Future carries the eventual result of a prepared task. Wait may be
// called any number of times from any goroutine; the first call blocks
// until the task resolves and later calls return the cached result.
type Future[T any] struct {
	ch   chan result[T]
	once sync.Once
	res  result[T]
}

// Prepare queues fn and returns a future for its result. A panic inside
// fn resolves the future with an error instead of killing the worker. On
// a stopped scheduler the future resolves immediately with ErrStopped.
func Prepare[T any](s *Scheduler, fn func() (T, error)) *Future[T] {
	f := &Future[T]{ch: make(chan result[T], 1)}

	accepted := s.Schedule(func() {
		defer func() {
			if r := recover(); r != nil {
				f.ch <- result[T]{err: fmt.Errorf("task panic: %v", r)}
			}
		}()
		v, err := fn()
		f.ch <- result[T]{value: v, err: err}
	})
	if !accepted {
		f.ch <- result[T]{err: ErrStopped}
	}
	return f
}

// Wait blocks until the task resolves and returns its result.
func (f *Future[T]) Wait() (T, error) {
	f.once.Do(func() {
		f.res = <-f.ch
	})
	return f.res.value, f.res.err
}
