/*
Package worker provides the single-consumer execution unit of the thread pool.

# Overview

A Worker owns one bounded task queue and one OS thread. Any number of
producers may call AddTask concurrently; exactly one loop thread consumes.

# Admission

AddTask never blocks. It reserves a slot on the occupancy counter and either
queues the task or returns a QueueFull admission carrying the task back to
the caller, who keeps ownership and may resubmit it.

Occupancy counts tasks queued or in hand and not yet invoked. It is a soft
bound: concurrent reservations may momentarily push the counter past the
capacity before the losing producers roll back.

# Consume Loop

Each iteration runs the following phases in order:

 1. Bulk dequeue of up to BatchSize tasks, executed in FIFO order
 2. Spin for SpinIterations without giving up the OS thread
 3. Yield the processor for YieldIterations
 4. Block on a condition variable until work arrives or the status changes

The loop thread is locked with runtime.LockOSThread and, when an affinity
index is set, pinned to that CPU through the configured Pinner. A pinned
thread is never unlocked: when the loop exits the runtime terminates it, so
its CPU mask never leaks to other goroutines.

# Lifecycle

	Running <-> Paused
	Running  -> Stopped
	Paused   -> Stopped

Pause retains every queued task and invokes none of them until Resume. Stop is
terminal and idempotent: a task already in hand finishes, queued tasks are
discarded, and Stop waits up to StopTimeout for the loop thread to exit.

# Usage

	w, err := worker.New(0, worker.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	w.SetAffinityIndex(2)
	w.Start()
	defer w.Stop()

	if admission := w.AddTask(task.New(work)); !admission.OK() {
		retryLater(admission.Task())
	}
*/
package worker
