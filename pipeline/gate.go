package pipeline

import "sync/atomic"

// admissionGate serializes bulk jobs. A second job is rejected while one
// is in flight, never queued, so concurrent sweeps of the same source
// cannot overlap.
type admissionGate struct {
	active atomic.Int32
}

// tryAcquire claims the gate. Returns false when a job is already active.
func (g *admissionGate) tryAcquire() bool {
	return g.active.CompareAndSwap(0, 1)
}

// release frees the gate for the next job.
func (g *admissionGate) release() {
	g.active.Store(0)
}
