package walker

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	fn "github.com/gofhir/navigator"
	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/service"
)

// Walker resolves FSH paths over snapshots. It owns the four two-tier
// caches and the package-context namespace. A Walker is safe for
// concurrent use; it never mutates a snapshot after enrichment.
type Walker struct {
	provider service.SnapshotProvider
	meta     service.MetadataResolver

	snapshots *cache.TwoTier[*service.Snapshot]
	typeMeta  *cache.TwoTier[*service.ResourceMeta]
	elements  *cache.TwoTier[*service.ElementDefinition]
	children  *cache.TwoTier[[]*service.ElementDefinition]

	// pkgContext is the canonical JSON of the normalized root packages.
	// It namespaces element and children cache keys.
	pkgContext string

	metrics *fn.Metrics
	log     zerolog.Logger
}

// New creates a Walker. pkgContext is the namespace string computed by
// the facade from the metadata resolver's normalized root packages.
func New(provider service.SnapshotProvider, meta service.MetadataResolver, pkgContext string, opts *fn.Options, metrics *fn.Metrics) *Walker {
	if opts == nil {
		opts = fn.DefaultOptions()
	}
	if metrics == nil {
		metrics = fn.NewMetrics()
	}
	return &Walker{
		provider:   provider,
		meta:       meta,
		snapshots:  cache.NewTwoTier[*service.Snapshot](opts.SnapshotCacheSize, opts.SnapshotCold),
		typeMeta:   cache.NewTwoTier[*service.ResourceMeta](opts.TypeMetaCacheSize, opts.TypeMetaCold),
		elements:   cache.NewTwoTier[*service.ElementDefinition](opts.ElementCacheSize, opts.ElementCold),
		children:   cache.NewTwoTier[[]*service.ElementDefinition](opts.ChildrenCacheSize, opts.ChildrenCold),
		pkgContext: pkgContext,
		metrics:    metrics,
		log:        opts.Logger,
	}
}

// PackageContext returns the cache-namespace string.
func (w *Walker) PackageContext() string { return w.pkgContext }

// Metrics returns the walker's metrics, combined with cache statistics.
func (w *Walker) Metrics() fn.MetricsSnapshot {
	return w.metrics.Snapshot(
		w.snapshots.Stats(),
		w.typeMeta.Stats(),
		w.elements.Stats(),
		w.children.Stats(),
	)
}

// Flush drains pending cold-tier writes. Intended for shutdown and tests.
func (w *Walker) Flush() {
	w.snapshots.Flush()
	w.typeMeta.Flush()
	w.elements.Flush()
	w.children.Flush()
}

// snapshot returns the enriched snapshot for ref, fetching and enriching
// on a cache miss. Provider failures surface as UpstreamError.
func (w *Walker) snapshot(ctx context.Context, ref service.SnapshotRef, filter *service.PackageFilter) (*service.Snapshot, error) {
	var fid, fver string
	if filter != nil {
		fid, fver = filter.ID, filter.Version
	}
	key := cache.K(ref.Normalize(), fid, fver)
	if sn, ok := w.snapshots.Get(ctx, key); ok {
		return sn, nil
	}

	sn, err := w.provider.GetSnapshot(ctx, ref, filter)
	if err != nil {
		return nil, &fn.UpstreamError{Op: "snapshot", SnapshotID: ref.Normalize(), Err: err}
	}
	w.metrics.RecordSnapshotFetch()
	w.log.Debug().Str("snapshot", ref.Normalize()).Str("url", sn.URL).Msg("fetched snapshot")

	w.enrichSnapshot(ctx, sn)
	w.snapshots.Set(ctx, key, sn)
	return sn, nil
}

// elementKeyNS returns the first element-cache key part: the package
// context, or the filter's JSON form when a filter is in effect.
func (w *Walker) elementKeyNS(filter *service.PackageFilter) string {
	if filter == nil {
		return w.pkgContext
	}
	data, err := json.Marshal([]service.PackageRef{{ID: filter.ID, Version: filter.Version}})
	if err != nil {
		return w.pkgContext
	}
	return string(data)
}

// PackageContextString stably encodes a root package list as the
// cache-namespace string.
func PackageContextString(packages []service.PackageRef) string {
	if packages == nil {
		packages = []service.PackageRef{}
	}
	data, err := json.Marshal(packages)
	if err != nil {
		return "[]"
	}
	return string(data)
}
