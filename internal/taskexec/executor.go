// Package taskexec runs independent CPU-bound tasks on a pool of goroutines.
package taskexec

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"photobroom/internal/catalog"
)

// ErrStopped is returned by Add after Stop.
var ErrStopped = errors.New("taskexec: executor stopped")

// Task is a unit of work. Perform runs on one of the pool goroutines.
type Task interface {
	Name() string
	Perform()
}

// TaskFunc adapts a function to Task.
type TaskFunc struct {
	Label string
	Fn    func()
}

func (t TaskFunc) Name() string { return t.Label }
func (t TaskFunc) Perform()     { t.Fn() }

const defaultQueueSize = 1024

// Executor is a fixed pool of workers fed from a bounded queue.
type Executor struct {
	mu      sync.RWMutex
	stopped bool
	tasks   chan Task
	wg      sync.WaitGroup

	logger  catalog.Logger
	metrics *metrics
}

type Option func(*config)

type config struct {
	workers   int
	queueSize int
	logger    catalog.Logger
	registry  prometheus.Registerer
}

// WithWorkers sets the pool size. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithQueueSize bounds the number of pending tasks. Add blocks while the
// queue is full.
func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

func WithLogger(l catalog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics registers the executor metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) { c.registry = reg }
}

// New starts the worker pool.
func New(opts ...Option) *Executor {
	c := config{
		workers:   runtime.NumCPU(),
		queueSize: defaultQueueSize,
		logger:    catalog.NewNopLogger(),
	}
	for _, apply := range opts {
		apply(&c)
	}

	e := &Executor{
		tasks:  make(chan Task, c.queueSize),
		logger: c.logger,
	}
	if c.registry != nil {
		e.metrics = newMetrics(c.registry)
	}

	e.wg.Add(c.workers)
	for i := 0; i < c.workers; i++ {
		go e.work()
	}
	return e
}

// Add schedules t. It returns ErrStopped once Stop was called.
func (e *Executor) Add(t Task) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return ErrStopped
	}
	e.metrics.queued()
	e.tasks <- t
	return nil
}

// Stop rejects new tasks and waits for the queued ones to finish. It may
// be called more than once, but not from a task.
func (e *Executor) Stop() {
	e.mu.Lock()
	if !e.stopped {
		e.stopped = true
		close(e.tasks)
	}
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Executor) work() {
	defer e.wg.Done()

	for t := range e.tasks {
		e.metrics.dequeued()
		start := time.Now()
		t.Perform()
		elapsed := time.Since(start)

		e.metrics.performed(t.Name(), elapsed)
		e.logger.Debug("task performed", "task", t.Name(), "elapsed", elapsed)
	}
}
