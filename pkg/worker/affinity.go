package worker

// NoAffinity disables CPU pinning for a worker
const NoAffinity = -1

// Pinner pins the calling OS thread to a CPU
type Pinner interface {
	Pin(cpu int) error
}

// PinnerFunc adapts a function to Pinner
type PinnerFunc func(cpu int) error

// Pin implements Pinner
func (f PinnerFunc) Pin(cpu int) error {
	return f(cpu)
}

// NoopPinner ignores pin requests
type NoopPinner struct{}

// Pin implements Pinner
func (NoopPinner) Pin(int) error {
	return nil
}
