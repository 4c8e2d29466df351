package strategy

import (
	"sync/atomic"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// RoundRobin rotates over every worker regardless of category
type RoundRobin struct {
	next atomic.Uint64
}

// NewRoundRobin creates a round-robin strategy
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Name implements Named
func (*RoundRobin) Name() string {
	return NameRoundRobin
}

// SelectWorker implements Strategy
func (r *RoundRobin) SelectWorker(workers []*worker.Worker, _ types.Category) *worker.Worker {
	if len(workers) == 0 {
		return nil
	}
	i := r.next.Add(1) - 1
	return workers[i%uint64(len(workers))]
}
