// Package engine orchestrates batch pricing: input validation, processing
// mode selection, the shared worker pool and the chunked fan-out.
package engine

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool fed over an unbuffered task channel.
// Workers live for the life of the pool; Submit blocks until a worker picks
// the task up.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool starts a pool with the given number of workers, defaulting to
// GOMAXPROCS-equivalent when workers <= 0.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{tasks: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit hands a task to the pool
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}

var (
	sharedPool     *Pool
	sharedPoolOnce sync.Once
)

// InitPool initializes the process-wide pool. Only the first call takes
// effect; later calls return the existing pool regardless of size.
func InitPool(workers int) *Pool {
	sharedPoolOnce.Do(func() {
		sharedPool = NewPool(workers)
	})
	return sharedPool
}

// SharedPool returns the process-wide pool, initializing it with default
// sizing on first use.
func SharedPool() *Pool {
	return InitPool(0)
}
