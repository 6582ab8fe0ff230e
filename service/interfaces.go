package service

import (
	"context"
)

// SnapshotProvider produces a full element list for an identifier and an
// optional package filter. Implementations are expected to be pure lookups:
// the same inputs always yield an equivalent snapshot.
type SnapshotProvider interface {
	// GetSnapshot resolves ref to a snapshot. A non-nil filter restricts
	// resolution to the named package. Failure modes (not found, ambiguous,
	// I/O) all surface as errors.
	GetSnapshot(ctx context.Context, ref SnapshotRef, filter *PackageFilter) (*Snapshot, error)
}

// MetadataResolver resolves type codes and profile ids to package-scoped
// metadata records, and exposes the navigator's root package set.
type MetadataResolver interface {
	// ResolveMeta returns the single matching record, or nil if zero or
	// more than one resource matches.
	ResolveMeta(ctx context.Context, req MetaRequest) (*ResourceMeta, error)

	// Lookup returns every matching record in package priority order.
	Lookup(ctx context.Context, req MetaRequest) ([]*ResourceMeta, error)

	// NormalizedRootPackages returns the deduplicated, stably-ordered root
	// packages. The result must be deterministic for the lifetime of a
	// navigator; it namespaces the element and children caches.
	NormalizedRootPackages(ctx context.Context) ([]PackageRef, error)
}
