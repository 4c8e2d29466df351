package types

// AdmissionStatus is the tag of an Admission
type AdmissionStatus int

const (
	// AdmissionOK means the queue took ownership of the task
	AdmissionOK AdmissionStatus = iota
	// AdmissionQueueFull means the task was rejected and handed back
	AdmissionQueueFull
)

// String returns the string representation of AdmissionStatus
func (s AdmissionStatus) String() string {
	switch s {
	case AdmissionOK:
		return "ok"
	case AdmissionQueueFull:
		return "queue_full"
	default:
		return "unknown"
	}
}

// Admission is the outcome of an enqueue attempt. A rejected admission always
// carries the submitted task back to the caller.
type Admission struct {
	status AdmissionStatus
	task   Task
	reason error
}

// Admitted returns a successful admission
func Admitted() Admission {
	return Admission{status: AdmissionOK}
}

// Rejected returns a QueueFull admission returning task to the caller
func Rejected(task Task) Admission {
	reason := ErrQueueFull
	if task == nil {
		reason = ErrNilTask
	}
	return Admission{status: AdmissionQueueFull, task: task, reason: reason}
}

// RejectedWith returns a QueueFull admission with a specific reason
func RejectedWith(task Task, reason error) Admission {
	if reason == nil {
		return Rejected(task)
	}
	return Admission{status: AdmissionQueueFull, task: task, reason: reason}
}

// Status returns the admission tag
func (a Admission) Status() AdmissionStatus {
	return a.status
}

// OK reports whether the task was admitted
func (a Admission) OK() bool {
	return a.status == AdmissionOK
}

// Task returns the rejected task, nil when admitted
func (a Admission) Task() Task {
	return a.task
}

// Err returns nil when admitted, otherwise the rejection reason
// (ErrQueueFull, ErrNoStrategy, ErrNilTask, ...)
func (a Admission) Err() error {
	if a.status == AdmissionOK {
		return nil
	}
	return a.reason
}
