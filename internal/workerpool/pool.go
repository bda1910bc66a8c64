// Package workerpool runs tasks on a bounded set of goroutines.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool manages a bounded set of lazily started workers
type Pool struct {
	workers int32
	running int32
	closed  int32

	tasks chan func()
	mu    sync.RWMutex // guards tasks against send-after-close
	wg    sync.WaitGroup
}

// New creates a pool with at most workers goroutines.
// Workers start when tasks are submitted.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*4),
	}
}

// Submit queues task for execution. It blocks while the queue is full and
// returns false if the pool is closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if atomic.LoadInt32(&p.closed) == 1 {
		return false
	}

	// Spawn a worker if below the limit
	for {
		running := atomic.LoadInt32(&p.running)
		if running >= p.workers {
			break
		}
		if atomic.CompareAndSwapInt32(&p.running, running, running+1) {
			p.wg.Add(1)
			go p.worker()
			break
		}
	}

	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer p.wg.Done()
	defer atomic.AddInt32(&p.running, -1)

	for task := range p.tasks {
		p.run(task)
	}
}

// run executes one task; a panicking task does not take the worker down
func (p *Pool) run(task func()) {
	defer func() {
		_ = recover()
	}()
	if task != nil {
		task()
	}
}

// Running returns the current number of running workers
func (p *Pool) Running() int {
	return int(atomic.LoadInt32(&p.running))
}

// Cap returns the worker capacity
func (p *Pool) Cap() int {
	return int(p.workers)
}

// Close waits for queued tasks to finish and stops all workers
func (p *Pool) Close() {
	p.mu.Lock()
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		p.mu.Unlock()
		return
	}
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

// IsClosed reports whether Close has been called
func (p *Pool) IsClosed() bool {
	return atomic.LoadInt32(&p.closed) == 1
}

// Map applies fn to each item on the pool and returns results in input
// order, regardless of completion order. Items that could not be submitted
// because the pool is closed keep the zero value.
func Map[T, R any](p *Pool, items []T, fn func(T) R) []R {
	results := make([]R, len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		if !p.Submit(func() {
			defer wg.Done()
			results[i] = fn(item)
		}) {
			wg.Done()
		}
	}

	wg.Wait()
	return results
}
