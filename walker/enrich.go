package walker

import (
	"context"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/service"
)

// verboseElementFields are stripped from every element when a snapshot is
// enriched. They are narrative and mapping metadata the navigator never
// interprets; removing them keeps cached snapshots lean.
var verboseElementFields = []string{
	"alias",
	"mapping",
	"mustSupport",
	"isSummary",
	"isModifier",
	"requirements",
	"representation",
	"comment",
	"definition",
	"isModifierReason",
	"meaningWhenMissing",
	"example",
	"short",
}

// enrichSnapshot normalizes a freshly fetched snapshot in place: tags
// every element with its origin and package coordinates, strips verbose
// fields, classifies type kinds, and computes FSH-style names. Applied
// exactly once per fetch, before the snapshot enters the cache.
func (w *Walker) enrichSnapshot(ctx context.Context, snap *service.Snapshot) {
	for _, e := range snap.Elements {
		e.FromDefinition = snap.URL
		e.CorePackage = snap.CorePackage
		e.PackageID = snap.PackageID
		e.PackageVersion = snap.PackageVersion

		for _, field := range verboseElementFields {
			delete(e.Extra, field)
		}
		for i := range e.Constraints {
			e.Constraints[i].XPath = ""
		}

		w.classifyTypes(ctx, e, snap.CorePackage)
		e.Names = computeNames(e)
	}
}

// classifyTypes fills TypeRef.Kind for each of the element's types.
// System types classify locally; everything else goes through the
// type-meta cache and, on a miss, the metadata resolver. Lookup failures
// are swallowed: the kind is simply left unset.
func (w *Walker) classifyTypes(ctx context.Context, e *service.ElementDefinition, corePkg service.PackageRef) {
	for i := range e.Types {
		t := &e.Types[i]
		if IsSystemType(t.Code) {
			t.Kind = service.KindSystem
			continue
		}

		key := cache.K(t.Code, corePkg.ID, corePkg.Version)
		if rec, ok := w.typeMeta.Get(ctx, key); ok {
			if rec.Kind != "" {
				t.Kind = rec.Kind
			}
			continue
		}

		rec, err := w.meta.ResolveMeta(ctx, service.MetaRequest{
			ResourceType: "StructureDefinition",
			ID:           t.Code,
			Package:      &corePkg,
		})
		if err != nil || rec == nil {
			continue
		}
		w.typeMeta.Set(ctx, key, rec)
		if rec.Kind != "" {
			t.Kind = rec.Kind
		}
	}
}

// computeNames derives the FSH-style names of an element from its path,
// types, and contentReference.
func computeNames(e *service.ElementDefinition) []string {
	last := LastSegment(e.Path)
	choice := IsChoiceID(last)
	base := BaseName(e.Path)

	switch {
	case len(e.Types) == 1 && choice:
		return []string{base + UpperFirst(e.Types[0].Code)}
	case len(e.Types) == 1:
		return []string{last}
	case len(e.Types) > 1 && choice:
		names := make([]string, len(e.Types))
		for i, t := range e.Types {
			names[i] = base + UpperFirst(t.Code)
		}
		return names
	case e.ContentReference != "":
		return []string{LastSegment(e.ContentReference)}
	default:
		return nil
	}
}
