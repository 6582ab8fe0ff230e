package walker

import (
	"context"
	"strings"

	fn "github.com/gofhir/navigator"
	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/service"
)

// GetChildren resolves an FSH path and returns the immediate children of
// the resolved element, in definition order. The returned elements are
// copies.
func (w *Walker) GetChildren(ctx context.Context, ref service.SnapshotRef, fshPath string) ([]*service.ElementDefinition, error) {
	kids, err := w.getChildren(ctx, ref, fshPath, nil)
	w.metrics.RecordChildrenResolution(err)
	return kids, err
}

func (w *Walker) getChildren(ctx context.Context, ref service.SnapshotRef, fshPath string, filter *service.PackageFilter) ([]*service.ElementDefinition, error) {
	norm := ref.Normalize()
	key := cache.K(w.pkgContext, norm, fshPath)
	if kids, ok := w.children.Get(ctx, key); ok {
		return service.CloneElements(kids), nil
	}

	parent, err := w.resolvePath(ctx, ref, fshpath.Split(fshPath), nil, filter)
	if err != nil {
		return nil, err
	}

	snap, err := w.snapshot(ctx, ref, filter)
	if err != nil {
		return nil, err
	}

	// A parent that resolved into another snapshot (rebase or virtual
	// slice) sources its children there.
	actualSnap := snap
	if parent.FromDefinition != "" && parent.FromDefinition != snap.URL {
		actualRef := service.ByID(parent.FromDefinition)
		key = cache.K(w.pkgContext, actualRef.Normalize(), fshPath)
		if kids, ok := w.children.Get(ctx, key); ok {
			return service.CloneElements(kids), nil
		}
		actualSnap, err = w.snapshot(ctx, actualRef, nil)
		if err != nil {
			return nil, err
		}
	}

	kids := directChildren(actualSnap.Elements, parent.ID)
	if len(kids) > 0 {
		w.children.Set(ctx, key, kids)
		return service.CloneElements(kids), nil
	}

	if parent.ContentReference != "" {
		target := strings.TrimPrefix(parent.ContentReference, "#")
		if strings.HasPrefix(target, actualSnap.Type+".") {
			target = target[len(actualSnap.Type)+1:]
		}
		if target == "" {
			target = fshpath.Root
		}
		return w.getChildren(ctx, service.ByID(actualSnap.Type), target, nil)
	}

	if len(parent.Types) > 1 {
		return nil, &fn.AmbiguousChoiceError{
			Path:       fshPath,
			SnapshotID: norm,
			Types:      parent.TypeCodes(),
		}
	}

	if len(parent.Types) == 1 {
		// Terminal leaf: children live in the element's profile or base
		// type snapshot.
		t := parent.Types[0]
		var inner []*service.ElementDefinition
		if len(t.Profile) > 0 {
			inner, err = w.getChildren(ctx, service.ByID(CanonicalTail(t.Profile[0])), fshpath.Root, nil)
		} else {
			inner, err = w.getChildren(ctx, service.ByID(t.Code), fshpath.Root, &service.PackageFilter{
				ID:      actualSnap.CorePackage.ID,
				Version: actualSnap.CorePackage.Version,
			})
		}
		if err != nil {
			return nil, err
		}
		w.children.Set(ctx, key, inner)
		return service.CloneElements(inner), nil
	}

	empty := []*service.ElementDefinition{}
	w.children.Set(ctx, key, empty)
	return empty, nil
}

// directChildren selects the elements exactly one level below parentID.
func directChildren(elements []*service.ElementDefinition, parentID string) []*service.ElementDefinition {
	prefix := parentID + "."
	var kids []*service.ElementDefinition
	for _, e := range elements {
		rest, ok := strings.CutPrefix(e.ID, prefix)
		if !ok || strings.Contains(rest, ".") {
			continue
		}
		kids = append(kids, e)
	}
	return kids
}
