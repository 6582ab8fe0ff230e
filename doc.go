// Package fhirnavigator provides path resolution over FHIR
// StructureDefinition snapshots.
//
// Given a snapshot (the ordered element list of a canonical data model)
// and an FSH-style dotted path, the navigator returns either the single
// matching element definition or the immediate children of that element.
// Resolution understands polymorphic ("choice type") narrowing in its
// three syntaxes, slice matching including virtual slices that rebase
// into a profile's snapshot, and cross-snapshot traversal via base types,
// profiles, and contentReference.
//
// # Quick Start
//
//	import (
//	    fn "github.com/gofhir/navigator"
//	    "github.com/gofhir/navigator/engine"
//	    "github.com/gofhir/navigator/service"
//	)
//
//	nav, err := engine.New(ctx, provider, meta)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	elem, err := nav.GetElement(ctx, service.ByID("us-core-patient"), "gender")
//	kids, err := nav.GetChildren(ctx, service.ByID("Patient"), "name")
//
// The provider and metadata resolver are pluggable; the loader package
// implements both over FHIR package directories, and the registry package
// downloads packages from the FHIR package registry.
//
// # Caching
//
// The navigator owns four caches (snapshots, type metadata, elements,
// children), each a bounded in-memory LRU optionally backed by a shared
// cold tier. Element and children keys are namespaced by the navigator's
// package context, so navigators with different root package sets never
// collide even when sharing a cold store. Cold-tier failures never reach
// callers; cold writes are fire-and-forget.
//
// # Errors
//
// Resolution failures carry typed errors: NotFoundError when a segment
// cannot be resolved after matching, slicing, and rebasing have been
// tried; SliceMismatchError when a bracket token resolves to a structure
// whose type the parent element does not allow; AmbiguousChoiceError when
// children are requested for a terminal element with more than one type;
// UpstreamError when the provider or metadata resolver fails.
//
// # Functional Options
//
//	nav, err := engine.New(ctx, provider, meta,
//	    fn.WithLogger(logger),
//	    fn.WithElementCacheSize(5000),
//	    fn.WithSnapshotCold(sharedStore),
//	)
package fhirnavigator
