package fhirnavigator

import (
	"github.com/rs/zerolog"

	"github.com/gofhir/navigator/cache"
)

// Default hot-tier capacities. These do not vary with the presence of a
// cold tier.
const (
	DefaultSnapshotCacheSize = 100
	DefaultTypeMetaCacheSize = 500
	DefaultElementCacheSize  = 2000
	DefaultChildrenCacheSize = 500
)

// Option configures the Navigator.
type Option func(*Options)

// Options holds all configuration for the Navigator.
type Options struct {
	// Hot-tier capacities
	SnapshotCacheSize int
	TypeMetaCacheSize int
	ElementCacheSize  int
	ChildrenCacheSize int

	// Optional cold tiers; any subset may be nil. Cold stores are shared:
	// their lifetime is governed by the caller.
	SnapshotCold cache.ColdStore
	TypeMetaCold cache.ColdStore
	ElementCold  cache.ColdStore
	ChildrenCold cache.ColdStore

	// Logger receives debug events. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		SnapshotCacheSize: DefaultSnapshotCacheSize,
		TypeMetaCacheSize: DefaultTypeMetaCacheSize,
		ElementCacheSize:  DefaultElementCacheSize,
		ChildrenCacheSize: DefaultChildrenCacheSize,
		Logger:            zerolog.Nop(),
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCacheSizes sets all four hot-tier capacities at once.
// Zero or negative values keep the defaults.
func WithCacheSizes(snapshots, typeMeta, elements, children int) Option {
	return func(o *Options) {
		if snapshots > 0 {
			o.SnapshotCacheSize = snapshots
		}
		if typeMeta > 0 {
			o.TypeMetaCacheSize = typeMeta
		}
		if elements > 0 {
			o.ElementCacheSize = elements
		}
		if children > 0 {
			o.ChildrenCacheSize = children
		}
	}
}

// WithSnapshotCacheSize sets the snapshot hot-tier capacity.
func WithSnapshotCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.SnapshotCacheSize = size
		}
	}
}

// WithTypeMetaCacheSize sets the type-metadata hot-tier capacity.
func WithTypeMetaCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.TypeMetaCacheSize = size
		}
	}
}

// WithElementCacheSize sets the element hot-tier capacity.
func WithElementCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ElementCacheSize = size
		}
	}
}

// WithChildrenCacheSize sets the children hot-tier capacity.
func WithChildrenCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ChildrenCacheSize = size
		}
	}
}

// WithSnapshotCold attaches a cold tier to the snapshot cache.
func WithSnapshotCold(store cache.ColdStore) Option {
	return func(o *Options) {
		o.SnapshotCold = store
	}
}

// WithTypeMetaCold attaches a cold tier to the type-metadata cache.
func WithTypeMetaCold(store cache.ColdStore) Option {
	return func(o *Options) {
		o.TypeMetaCold = store
	}
}

// WithElementCold attaches a cold tier to the element cache.
func WithElementCold(store cache.ColdStore) Option {
	return func(o *Options) {
		o.ElementCold = store
	}
}

// WithChildrenCold attaches a cold tier to the children cache.
func WithChildrenCold(store cache.ColdStore) Option {
	return func(o *Options) {
		o.ChildrenCold = store
	}
}

// WithColdStore attaches the same cold store to all four caches.
// Keys carry no cache tag: element and children keys share one shape, as
// do snapshot and type-metadata keys, so entries of different caches can
// land on the same key and overwrite each other. A value of another
// cache's type reads as a miss.
func WithColdStore(store cache.ColdStore) Option {
	return func(o *Options) {
		o.SnapshotCold = store
		o.TypeMetaCold = store
		o.ElementCold = store
		o.ChildrenCold = store
	}
}
