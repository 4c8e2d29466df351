package strategy

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// MinCategoryWorkers is the smallest pool the category strategy accepts
const MinCategoryWorkers = 4

// Light partition sizes by pool size
const (
	lightFor4  = 1
	lightFor8  = 2
	lightFor15 = 4
)

// Partition is a contiguous range of worker indices
type Partition struct {
	Start int
	Size  int
}

// Contains reports whether index falls inside the partition
func (p Partition) Contains(index int) bool {
	return index >= p.Start && index < p.Start+p.Size
}

// Layout is the [IO][Light][Heavy] split of a pool
type Layout struct {
	IO    Partition
	Light Partition
	Heavy Partition
}

// For returns the partition serving category. Light traffic is served by the
// Heavy partition when the Light partition is empty.
func (l Layout) For(category types.Category) Partition {
	switch category {
	case types.CategoryIO:
		return l.IO
	case types.CategoryLight:
		if l.Light.Size == 0 {
			return l.Heavy
		}
		return l.Light
	default:
		return l.Heavy
	}
}

// String renders the layout as index ranges
func (l Layout) String() string {
	r := func(p Partition) string {
		if p.Size == 0 {
			return "-"
		}
		return fmt.Sprintf("%d-%d", p.Start, p.Start+p.Size-1)
	}
	return fmt.Sprintf("io[%s] light[%s] heavy[%s]", r(l.IO), r(l.Light), r(l.Heavy))
}

// LayoutFor computes the partition table for workerCount workers. IO always
// gets one worker; Light gets 1 at exactly 4 workers, 2 from 8, 4 from 15,
// and none otherwise; Heavy takes the rest.
func LayoutFor(workerCount int) (Layout, error) {
	if workerCount < MinCategoryWorkers {
		return Layout{}, types.NewConfigError("strategy", "worker count", workerCount,
			fmt.Sprintf("category round robin needs at least %d workers", MinCategoryWorkers))
	}

	light := 0
	switch {
	case workerCount >= 15:
		light = lightFor15
	case workerCount >= 8:
		light = lightFor8
	case workerCount == 4:
		light = lightFor4
	}

	io := Partition{Start: 0, Size: 1}
	lp := Partition{Start: io.Start + io.Size, Size: light}
	heavy := Partition{Start: lp.Start + lp.Size, Size: workerCount - io.Size - light}

	return Layout{IO: io, Light: lp, Heavy: heavy}, nil
}

// rrCounter keeps each category's counter on its own cache line
type rrCounter struct {
	n atomic.Uint64
	_ cpu.CacheLinePad
}

// CategoryRoundRobin isolates categories into fixed partitions of the worker
// index space and rotates within each partition.
type CategoryRoundRobin struct {
	counters [3]rrCounter
}

// NewCategoryRoundRobin creates a category-partitioned round robin strategy
func NewCategoryRoundRobin() *CategoryRoundRobin {
	return &CategoryRoundRobin{}
}

// Name implements Named
func (*CategoryRoundRobin) Name() string {
	return NameCategoryRoundRobin
}

// Validate implements Validator
func (*CategoryRoundRobin) Validate(workerCount int) error {
	_, err := LayoutFor(workerCount)
	return err
}

// Layout returns the partition table for workerCount workers
func (*CategoryRoundRobin) Layout(workerCount int) (Layout, error) {
	return LayoutFor(workerCount)
}

// SelectWorker implements Strategy. It returns nil for pools smaller than
// MinCategoryWorkers; the pool refuses to install the strategy in that case.
func (s *CategoryRoundRobin) SelectWorker(workers []*worker.Worker, category types.Category) *worker.Worker {
	layout, err := LayoutFor(len(workers))
	if err != nil {
		return nil
	}

	p := layout.For(category)
	// Light falls back to Heavy's partition and shares its rotation
	if category == types.CategoryLight && layout.Light.Size == 0 {
		category = types.CategoryHeavy
	}

	i := s.counter(category).Add(1) - 1
	return workers[p.Start+int(i%uint64(p.Size))]
}

func (s *CategoryRoundRobin) counter(category types.Category) *atomic.Uint64 {
	switch category {
	case types.CategoryIO:
		return &s.counters[0].n
	case types.CategoryLight:
		return &s.counters[1].n
	default:
		return &s.counters[2].n
	}
}
