package pool

import "github.com/jzx17/gothreadpool/pkg/types"

// NoWorker is the worker ID reported when a submission never reached a worker
const NoWorker = -1

// Observer receives every admission outcome. It is called on the submitting
// goroutine and must not block.
type Observer interface {
	ObserveAdmission(category types.Category, workerID int, admission types.Admission)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(category types.Category, workerID int, admission types.Admission)

// ObserveAdmission implements Observer
func (f ObserverFunc) ObserveAdmission(category types.Category, workerID int, admission types.Admission) {
	f(category, workerID, admission)
}

// Observers fans out to several observers in order
type Observers []Observer

// ObserveAdmission implements Observer
func (o Observers) ObserveAdmission(category types.Category, workerID int, admission types.Admission) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveAdmission(category, workerID, admission)
		}
	}
}

type nopObserver struct{}

func (nopObserver) ObserveAdmission(types.Category, int, types.Admission) {}
