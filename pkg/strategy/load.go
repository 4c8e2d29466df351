package strategy

import (
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// LoadBased picks the worker with the smallest queue. Ties go to the lowest
// index. The category is ignored.
type LoadBased struct{}

// NewLoadBased creates a load-based strategy
func NewLoadBased() *LoadBased {
	return &LoadBased{}
}

// Name implements Named
func (*LoadBased) Name() string {
	return NameLoadBased
}

// SelectWorker implements Strategy. Queue sizes are read without a snapshot,
// so under concurrent admission the choice is approximate.
func (*LoadBased) SelectWorker(workers []*worker.Worker, _ types.Category) *worker.Worker {
	if len(workers) == 0 {
		return nil
	}

	best := 0
	bestLoad := workers[0].QueueSize()
	for i := 1; i < len(workers); i++ {
		if load := workers[i].QueueSize(); load < bestLoad {
			best, bestLoad = i, load
		}
	}
	return workers[best]
}
