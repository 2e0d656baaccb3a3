package asyncdb

import "sync"

// task is one unit of work for the worker. run is called with the
// worker's private state.
type task struct {
	name string
	run  func(w *worker) error
}

// taskQueue is an unbounded FIFO. Enqueueing never blocks, so callbacks
// running on the worker may schedule follow-up tasks.
type taskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []task
	closed bool
	// depth observes the queue length after every change, under the lock.
	depth func(int)
}

func newTaskQueue(depth func(int)) *taskQueue {
	q := &taskQueue{depth: depth}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends t and reports false when the queue is closed.
func (q *taskQueue) push(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)
	q.depth(len(q.tasks))
	q.cond.Signal()
	return true
}

// pop blocks until a task is available. It returns false once the queue is
// closed and drained.
func (q *taskQueue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.tasks) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.tasks) == 0 {
		return task{}, false
	}
	t := q.tasks[0]
	q.tasks[0] = task{}
	q.tasks = q.tasks[1:]
	q.depth(len(q.tasks))
	return t, true
}

// close stops accepting tasks. Queued tasks are still handed out by pop.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
