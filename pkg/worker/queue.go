package worker

import "github.com/jzx17/gothreadpool/pkg/types"

// taskQueue is the bounded multi-producer queue behind a worker. Admission
// control lives in the worker's occupancy counter; the channel capacity
// equals the worker capacity so a reserved slot always fits.
type taskQueue struct {
	ch chan types.Task
}

func newTaskQueue(capacity int) *taskQueue {
	return &taskQueue{ch: make(chan types.Task, capacity)}
}

// tryPush enqueues without blocking
func (q *taskQueue) tryPush(task types.Task) bool {
	select {
	case q.ch <- task:
		return true
	default:
		return false
	}
}

// tryPop dequeues one task without blocking
func (q *taskQueue) tryPop() (types.Task, bool) {
	select {
	case task := <-q.ch:
		return task, true
	default:
		return nil, false
	}
}

// popBatch appends up to cap(dst)-len(dst) tasks to dst
func (q *taskQueue) popBatch(dst []types.Task) []types.Task {
	for len(dst) < cap(dst) {
		task, ok := q.tryPop()
		if !ok {
			break
		}
		dst = append(dst, task)
	}
	return dst
}

// len returns the physical queue depth
func (q *taskQueue) len() int {
	return len(q.ch)
}
