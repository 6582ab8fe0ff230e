package walker

import (
	"context"

	fn "github.com/gofhir/navigator"
	"github.com/gofhir/navigator/service"
)

// sliceResolution is the outcome of resolving a bracket token.
type sliceResolution struct {
	element *service.ElementDefinition

	// hop, when non-nil, signals a virtual-slice profile hop: traversal
	// continues at the root of another snapshot.
	hop *sliceHop
}

// sliceHop carries the snapshot a virtual slice rebased into.
type sliceHop struct {
	ref  service.SnapshotRef
	snap *service.Snapshot
}

// resolveSlice resolves the bracket token s against the base element.
// In order: a real slice in the element list, the polymorphic "x" token,
// a polymorphic type narrowing, and finally a virtual slice (a
// standalone StructureDefinition type-compatible with the base element).
func (w *Walker) resolveSlice(ctx context.Context, snap *service.Snapshot, base *service.ElementDefinition, s string) (*sliceResolution, error) {
	// Real slice.
	if el := snap.FindByID(base.ID + ":" + s); el != nil {
		return &sliceResolution{element: el}, nil
	}

	if IsChoiceID(base.ID) {
		// The "x" token selects the choice head with all its types.
		if s == "x" {
			return &sliceResolution{element: base.Clone()}, nil
		}

		// Type narrowing: [string] on value[x].
		for i := range base.Types {
			if base.Types[i].Code != s {
				continue
			}
			inferred := InferredName(base.ID, base.Types[i].Code)
			if el := snap.FindByID(base.ID + ":" + inferred); el != nil {
				return &sliceResolution{element: el}, nil
			}
			narrowed := base.Clone()
			narrowed.Types = []service.TypeRef{base.Types[i]}
			narrowed.Names = []string{inferred}
			return &sliceResolution{element: narrowed}, nil
		}
	}

	// Virtual slice: s names a StructureDefinition whose base type the
	// parent element allows; traversal continues in its snapshot.
	hop, err := w.tryResolveSnapshot(ctx, s, base, snap)
	if err != nil {
		return nil, err
	}
	if hop != nil {
		w.log.Debug().
			Str("slice", s).
			Str("element", base.Path).
			Str("profile", hop.snap.URL).
			Msg("virtual slice hop")
		return &sliceResolution{element: hop.snap.Root(), hop: hop}, nil
	}

	return nil, &fn.NotFoundError{
		Segment:      base.Path + "[" + s + "]",
		PreviousPath: base.Path,
		SnapshotID:   snap.URL,
	}
}

// tryResolveSnapshot resolves s as a StructureDefinition id or canonical
// URL. It first consults the metadata resolver scoped to the core
// package; a singleton record wins. Otherwise it falls back to a generic
// snapshot fetch with no package filter. Resolution failures read as
// "not found" (nil hop); a resolved structure whose base type the parent
// does not allow is a SliceMismatchError.
func (w *Walker) tryResolveSnapshot(ctx context.Context, s string, parent *service.ElementDefinition, snap *service.Snapshot) (*sliceHop, error) {
	corePkg := snap.CorePackage

	recs, err := w.meta.Lookup(ctx, service.MetaRequest{
		ResourceType: "StructureDefinition",
		ID:           s,
		Package:      &corePkg,
	})
	if err == nil && len(recs) == 1 {
		rec := recs[0]
		if !parent.AllowsType(rec.Type) {
			return nil, &fn.SliceMismatchError{
				Slice:       s,
				ElementPath: parent.Path,
				SnapshotID:  snap.URL,
				Actual:      rec.Type,
				Allowed:     parent.TypeCodes(),
			}
		}
		ref := service.ByEntry(rec.PackageID, rec.PackageVersion, rec.Filename)
		target, err := w.snapshot(ctx, ref, nil)
		if err == nil {
			return &sliceHop{ref: ref, snap: target}, nil
		}
		// Fall through to the generic fetch.
	}

	target, err := w.snapshot(ctx, service.ByID(s), nil)
	if err != nil {
		return nil, nil
	}
	if !parent.AllowsType(target.Type) {
		return nil, &fn.SliceMismatchError{
			Slice:       s,
			ElementPath: parent.Path,
			SnapshotID:  snap.URL,
			Actual:      target.Type,
			Allowed:     parent.TypeCodes(),
		}
	}
	return &sliceHop{ref: service.ByID(s), snap: target}, nil
}
