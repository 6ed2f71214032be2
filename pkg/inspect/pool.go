// pkg/inspect/pool.go

package inspect

import (
	"context"
	"runtime/debug"
	"sync"

	"LitView/pkg/apperr"
)

// Pool runs jobs on a fixed set of goroutines. A job always runs to the
// end once a worker picked it up.
type Pool struct {
	jobs chan func()
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					job()
				case <-p.quit:
					return
				}
			}
		}()
	}
	return p
}

// Close stops the workers after their current job.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

type result[T any] struct {
	val T
	err error
}

// run hands fn to a worker and waits for it. ctx only bounds the wait for
// a free worker. A panic in fn comes back as a Task error.
func run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	done := make(chan result[T], 1)
	job := func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("query panic: %v\n%s", r, debug.Stack())
				done <- result[T]{err: apperr.Taskf("%v", r)}
			}
		}()
		v, err := fn()
		done <- result[T]{v, err}
	}
	var zero T
	select {
	case p.jobs <- job:
	case <-p.quit:
		return zero, apperr.Taskf("worker pool is closed")
	case <-ctx.Done():
		return zero, apperr.Taskf("%v", ctx.Err())
	}
	r := <-done
	return r.val, r.err
}
