// Package engine provides the Navigator facade: construction, the two
// behavioral entry points, and read-only accessors.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	fn "github.com/gofhir/navigator"
	"github.com/gofhir/navigator/service"
	"github.com/gofhir/navigator/walker"
)

// Navigator resolves FSH paths over StructureDefinition snapshots. It
// holds the configuration, the four caches, and the package-context
// namespace. Construct one per package context; a Navigator is safe for
// concurrent use.
type Navigator struct {
	provider service.SnapshotProvider
	meta     service.MetadataResolver
	walker   *walker.Walker
	opts     *fn.Options
	metrics  *fn.Metrics
}

// New creates a Navigator. The package context is computed once here by
// asking the metadata resolver for its normalized root packages and
// stably JSON-encoding the result; it namespaces the element and
// children caches for the navigator's lifetime.
func New(ctx context.Context, provider service.SnapshotProvider, meta service.MetadataResolver, opts ...fn.Option) (*Navigator, error) {
	if provider == nil {
		return nil, fmt.Errorf("engine: snapshot provider is required")
	}
	if meta == nil {
		return nil, fmt.Errorf("engine: metadata resolver is required")
	}

	options := fn.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	packages, err := meta.NormalizedRootPackages(ctx)
	if err != nil {
		return nil, &fn.UpstreamError{Op: "metadata", Err: err}
	}
	pkgContext := walker.PackageContextString(packages)

	metrics := fn.NewMetrics()
	return &Navigator{
		provider: provider,
		meta:     meta,
		walker:   walker.New(provider, meta, pkgContext, options, metrics),
		opts:     options,
		metrics:  metrics,
	}, nil
}

// GetElement resolves fshPath in the snapshot identified by ref and
// returns the matching enriched element definition.
func (n *Navigator) GetElement(ctx context.Context, ref service.SnapshotRef, fshPath string) (*service.ElementDefinition, error) {
	return n.walker.GetElement(ctx, ref, fshPath)
}

// GetChildren resolves fshPath and returns the immediate children of the
// resolved element, in definition order.
func (n *Navigator) GetChildren(ctx context.Context, ref service.SnapshotRef, fshPath string) ([]*service.ElementDefinition, error) {
	return n.walker.GetChildren(ctx, ref, fshPath)
}

// Provider returns the snapshot provider.
func (n *Navigator) Provider() service.SnapshotProvider { return n.provider }

// Metadata returns the metadata resolver.
func (n *Navigator) Metadata() service.MetadataResolver { return n.meta }

// Logger returns the configured logger.
func (n *Navigator) Logger() zerolog.Logger { return n.opts.Logger }

// PackageContext returns the cache-namespace string computed at
// construction.
func (n *Navigator) PackageContext() string { return n.walker.PackageContext() }

// Metrics returns a point-in-time view of resolution and cache activity.
func (n *Navigator) Metrics() fn.MetricsSnapshot { return n.walker.Metrics() }

// Flush drains pending cold-tier writes. Call before tearing down a
// shared cold store.
func (n *Navigator) Flush() { n.walker.Flush() }
