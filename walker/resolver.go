package walker

import (
	"context"
	"strings"

	fn "github.com/gofhir/navigator"
	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/service"
)

// GetElement resolves an FSH path to its single element definition.
// The returned element is a copy; mutating it does not affect the caches.
func (w *Walker) GetElement(ctx context.Context, ref service.SnapshotRef, fshPath string) (*service.ElementDefinition, error) {
	el, err := w.resolvePath(ctx, ref, fshpath.Split(fshPath), nil, nil)
	w.metrics.RecordElementResolution(err)
	return el, err
}

// resolvePath is the resolution state machine. cameFrom carries the
// element a virtual-slice hop departed from; it only influences the name
// set of an empty-path (root) resolution. filter, when set, constrains
// snapshot resolution to one package and replaces the package context in
// element cache keys.
func (w *Walker) resolvePath(ctx context.Context, ref service.SnapshotRef, segments []string, cameFrom *service.ElementDefinition, filter *service.PackageFilter) (*service.ElementDefinition, error) {
	ns := w.elementKeyNS(filter)
	norm := ref.Normalize()

	fullKey := cache.K(ns, norm, fshpath.Join(segments))
	if el, ok := w.elements.Get(ctx, fullKey); ok {
		return el.Clone(), nil
	}

	snap, err := w.snapshot(ctx, ref, filter)
	if err != nil {
		return nil, err
	}
	root := snap.Root()
	if root == nil {
		return nil, &fn.NotFoundError{Segment: fshpath.Root, PreviousPath: snap.Type, SnapshotID: norm}
	}

	if len(segments) == 0 {
		el := root.Clone()
		el.Types = []service.TypeRef{{Code: snap.Type, Kind: snap.Kind}}
		if cameFrom != nil {
			el.Names = inheritNames(cameFrom.Names, snap.Type)
		}
		w.elements.Set(ctx, fullKey, el)
		return el.Clone(), nil
	}

	current := root
	currentPath := root.ID

	for i, raw := range segments {
		// Intermediate results of earlier resolutions shortcut the walk.
		prefixKey := cache.K(ns, norm, fshpath.Join(segments[:i+1]))
		if el, ok := w.elements.Get(ctx, prefixKey); ok {
			current = el
			currentPath = el.ID
			continue
		}

		seg := fshpath.Parse(raw)
		searchPath := currentPath + "." + seg.Base
		previous := current

		resolved, narrowed := MatchElement(snap.Elements, searchPath)
		if resolved != nil && narrowed != nil {
			// An explicit choice slice beats an inferred narrowing.
			inferred := InferredName(resolved.ID, narrowed.Code)
			if explicit := snap.FindByID(resolved.ID + ":" + inferred); explicit != nil {
				resolved = explicit
			} else {
				clone := resolved.Clone()
				clone.Types = []service.TypeRef{*narrowed}
				clone.Names = []string{inferred}
				resolved = clone
			}
		}

		if resolved == nil {
			el, err := w.rebase(ctx, snap, previous, segments[i:])
			if err != nil {
				return nil, err
			}
			if el != nil {
				return el, nil
			}
			return nil, &fn.NotFoundError{
				Segment:      raw,
				PreviousPath: previous.Path,
				SnapshotID:   norm,
			}
		}
		current = resolved

		if seg.Slice != "" {
			res, err := w.resolveSlice(ctx, snap, current, seg.Slice)
			if err != nil {
				return nil, err
			}
			if res.hop != nil {
				// Virtual-slice profile hop: the rest of the path
				// resolves in the profile's snapshot.
				w.metrics.RecordVirtualSliceHop()
				return w.resolvePath(ctx, res.hop.ref, segments[i+1:], current, nil)
			}
			current = res.element
		}

		currentPath = current.ID
		w.elements.Set(ctx, prefixKey, current)
	}

	return current.Clone(), nil
}

// inheritNames propagates a hop-origin element's names onto a profile
// root. A multi-name (choice) origin keeps only the names matching the
// profile's base type; a single name is inherited as-is.
func inheritNames(names []string, snapshotType string) []string {
	if len(names) <= 1 {
		return append([]string(nil), names...)
	}
	suffix := UpperFirst(snapshotType)
	var kept []string
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			kept = append(kept, n)
		}
	}
	return kept
}
