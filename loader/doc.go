// Package loader implements the navigator's collaborator contracts over
// FHIR package directories.
//
// A Store holds an ordered list of packages (the order is resolution
// priority). Each package is indexed from its .index.json when present,
// otherwise by probing every JSON file for its identity fields. The
// Store implements both service.SnapshotProvider and
// service.MetadataResolver, so it can back a Navigator on its own:
//
//	store := loader.NewStore()
//	if err := store.AddPackageDir(corePath); err != nil { ... }
//	nav, err := engine.New(ctx, store, store)
//
// Register all packages before constructing navigators: the normalized
// root package set must stay stable for a navigator's lifetime.
package loader
