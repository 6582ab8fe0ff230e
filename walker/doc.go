// Package walker implements the snapshot resolution engine: FSH path
// traversal over StructureDefinition snapshots with polymorphic
// narrowing, slice resolution, cross-snapshot rebasing, and enrichment.
//
// The Walker is the engine behind the Navigator facade. It owns the four
// two-tier caches (snapshots, type metadata, elements, children) and the
// package-context namespace that keys derive from.
//
// Resolution is a state machine over the parsed path segments. At each
// segment the element list of the current snapshot is searched (direct
// match or choice-type narrowing); a bracket token is then resolved as a
// real slice, a type narrowing, or a virtual slice that hops into a
// profile's snapshot; and when the current snapshot does not contain the
// segment at all, resolution rebases into the element's base type,
// profile, or contentReference target and continues there.
package walker
