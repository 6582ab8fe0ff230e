package fhirnavigator

import (
	"sync/atomic"

	"github.com/gofhir/navigator/cache"
)

// Metrics tracks navigator activity using lock-free atomic counters.
// All methods are safe for concurrent use.
type Metrics struct {
	elementResolutions  atomic.Uint64
	childrenResolutions atomic.Uint64
	snapshotFetches     atomic.Uint64
	rebases             atomic.Uint64
	virtualSliceHops    atomic.Uint64
	errorsTotal         atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordElementResolution records a completed GetElement call.
func (m *Metrics) RecordElementResolution(err error) {
	m.elementResolutions.Add(1)
	if err != nil {
		m.errorsTotal.Add(1)
	}
}

// RecordChildrenResolution records a completed GetChildren call.
func (m *Metrics) RecordChildrenResolution(err error) {
	m.childrenResolutions.Add(1)
	if err != nil {
		m.errorsTotal.Add(1)
	}
}

// RecordSnapshotFetch records a provider round-trip (a snapshot-cache miss).
func (m *Metrics) RecordSnapshotFetch() {
	m.snapshotFetches.Add(1)
}

// RecordRebase records a cross-snapshot rebase.
func (m *Metrics) RecordRebase() {
	m.rebases.Add(1)
}

// RecordVirtualSliceHop records a virtual-slice profile hop.
func (m *Metrics) RecordVirtualSliceHop() {
	m.virtualSliceHops.Add(1)
}

// MetricsSnapshot is a point-in-time view of the metrics.
type MetricsSnapshot struct {
	ElementResolutions  uint64
	ChildrenResolutions uint64
	SnapshotFetches     uint64
	Rebases             uint64
	VirtualSliceHops    uint64
	ErrorsTotal         uint64

	SnapshotCache cache.Stats
	TypeMetaCache cache.Stats
	ElementCache  cache.Stats
	ChildrenCache cache.Stats
}

// Snapshot returns the current counter values combined with the supplied
// per-cache statistics.
func (m *Metrics) Snapshot(snapshots, typeMeta, elements, children cache.Stats) MetricsSnapshot {
	return MetricsSnapshot{
		ElementResolutions:  m.elementResolutions.Load(),
		ChildrenResolutions: m.childrenResolutions.Load(),
		SnapshotFetches:     m.snapshotFetches.Load(),
		Rebases:             m.rebases.Load(),
		VirtualSliceHops:    m.virtualSliceHops.Load(),
		ErrorsTotal:         m.errorsTotal.Load(),
		SnapshotCache:       snapshots,
		TypeMetaCache:       typeMeta,
		ElementCache:        elements,
		ChildrenCache:       children,
	}
}
