//go:build linux

package worker

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// schedPinner pins with sched_setaffinity on the calling thread
type schedPinner struct{}

func (schedPinner) Pin(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}

// DefaultPinner returns the platform pinner
func DefaultPinner() Pinner {
	return schedPinner{}
}
