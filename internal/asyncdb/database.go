// Package asyncdb serializes catalog access onto a single worker goroutine.
//
// Callers enqueue operations and receive results through callbacks, which
// run on the worker. The backend and the photo-info cache never leave it.
package asyncdb

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"photobroom/internal/catalog"
)

// ErrStopped is returned when an operation is requested after Stop.
var ErrStopped = errors.New("asyncdb: database stopped")

// Result carries the outcome of an operation. Value is the zero value when
// Err is set.
type Result[T any] struct {
	Value T
	Err   error
}

// Callback receives a Result on the worker goroutine. It must not block on
// other database operations; use Await to wait from another goroutine.
type Callback[T any] func(Result[T])

// Await returns a callback delivering its result to the returned channel.
func Await[T any]() (Callback[T], <-chan Result[T]) {
	ch := make(chan Result[T], 1)
	return func(r Result[T]) { ch <- r }, ch
}

func complete[T any](cb Callback[T], v T, err error) {
	if cb == nil {
		return
	}
	if err != nil {
		var zero T
		v = zero
	}
	cb(Result[T]{Value: v, Err: err})
}

// Database is the asynchronous front of a catalog.Backend.
type Database struct {
	queue     *taskQueue
	done      chan struct{}
	stopOnce  sync.Once
	observers *observers
	logger    catalog.Logger
	metrics   *metrics
}

type Option func(*options)

type options struct {
	logger   catalog.Logger
	registry prometheus.Registerer
}

func WithLogger(l catalog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics registers the worker metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// New starts the worker serving backend. The caller gives up backend:
// it is used and eventually closed by the worker only.
func New(backend catalog.Backend, opts ...Option) *Database {
	o := options{logger: catalog.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Database{
		done:      make(chan struct{}),
		observers: &observers{},
		logger:    o.logger,
	}
	if o.registry != nil {
		d.metrics = newMetrics(o.registry)
	}
	d.queue = newTaskQueue(d.metrics.setDepth)

	w := &worker{
		backend:   backend,
		cache:     catalog.NewPhotoInfoCache(),
		logger:    o.logger,
		observers: d.observers,
	}
	backend.Events().Subscribe(w)

	go d.run(w)
	return d
}

// Subscribe registers o for change notifications, delivered on the worker
// goroutine. The returned function unsubscribes.
func (d *Database) Subscribe(o Observer) (unsubscribe func()) {
	return d.observers.add(o)
}

// Stop rejects new operations, waits for queued ones to finish and closes
// the backend. It may be called any number of times, but not from a
// callback.
func (d *Database) Stop() {
	d.stopOnce.Do(d.queue.close)
	<-d.done
}

func (d *Database) enqueue(name string, run func(w *worker) error) error {
	if !d.queue.push(task{name: name, run: run}) {
		return ErrStopped
	}
	return nil
}

func (d *Database) run(w *worker) {
	defer close(d.done)

	for {
		t, ok := d.queue.pop()
		if !ok {
			break
		}
		d.execute(w, t)
	}

	if err := w.backend.Close(); err != nil {
		d.logger.Error("closing backend", "error", err)
	}
	d.logger.Debug("database worker stopped")
}

func (d *Database) execute(w *worker, t task) {
	start := time.Now()
	err := t.run(w)
	elapsed := time.Since(start)

	d.metrics.record(t.name, elapsed, err)
	if err != nil {
		d.logger.Error("database task failed", "task", t.name, "error", err)
		return
	}
	d.logger.Debug("database task done", "task", t.name, "elapsed", elapsed)
}
