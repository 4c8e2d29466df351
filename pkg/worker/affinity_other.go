//go:build !linux

package worker

// DefaultPinner returns the platform pinner. Thread affinity is not
// available on this platform, so pinning is a no-op.
func DefaultPinner() Pinner {
	return NoopPinner{}
}
