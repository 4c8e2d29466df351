// Package strategy provides the dispatch policies that pick a target worker
// for each submission.
package strategy

import (
	"fmt"
	"strings"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// Strategy names accepted by ByName
const (
	NameLoadBased          = "load"
	NameCategoryRoundRobin = "category"
	NameRoundRobin         = "round-robin"
)

// Strategy selects the worker a task is dispatched to. Implementations hold
// no worker references and must be safe for concurrent use; the worker slice
// is owned by the pool and must not be modified.
//
// SelectWorker returns nil only when workers is empty or too small for the
// strategy.
type Strategy interface {
	SelectWorker(workers []*worker.Worker, category types.Category) *worker.Worker
}

// Validator is implemented by strategies that constrain the worker count
type Validator interface {
	Validate(workerCount int) error
}

// Named is implemented by strategies that report a config name
type Named interface {
	Name() string
}

// Validate checks s against workerCount when s implements Validator
func Validate(s Strategy, workerCount int) error {
	if v, ok := s.(Validator); ok {
		return v.Validate(workerCount)
	}
	return nil
}

// NameOf returns the config name of s, or its Go type when it has none
func NameOf(s Strategy) string {
	if s == nil {
		return "none"
	}
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// ByName builds a strategy from its config name
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameLoadBased, "load-based", "least-loaded":
		return NewLoadBased(), nil
	case NameCategoryRoundRobin, "category-round-robin", "task-category":
		return NewCategoryRoundRobin(), nil
	case NameRoundRobin, "roundrobin":
		return NewRoundRobin(), nil
	default:
		return nil, types.NewConfigError("strategy", "name", name,
			fmt.Sprintf("must be one of %q, %q, %q", NameLoadBased, NameCategoryRoundRobin, NameRoundRobin))
	}
}
