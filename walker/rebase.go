package walker

import (
	"context"
	"strings"

	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/service"
)

// rebase continues resolution in another snapshot when the current one
// does not contain the sought segment. prev is the last resolved element;
// rest is the unresolved path suffix, failing segment included.
//
// In order: a contentReference redirects within the same base type; a
// single-typed element rebases into its profile or its base type.
// A nil element with nil error means no rebase strategy applied.
func (w *Walker) rebase(ctx context.Context, snap *service.Snapshot, prev *service.ElementDefinition, rest []string) (*service.ElementDefinition, error) {
	if prev.ContentReference != "" {
		target := strings.TrimPrefix(prev.ContentReference, "#")
		if strings.HasPrefix(target, snap.Type+".") {
			target = target[len(snap.Type)+1:]
		}
		segments := append(fshpath.Split(target), rest...)
		w.metrics.RecordRebase()
		w.log.Debug().
			Str("contentReference", prev.ContentReference).
			Str("base", snap.Type).
			Msg("content reference rebase")
		return w.resolvePath(ctx, service.ByID(snap.Type), segments, nil, &service.PackageFilter{
			ID:      snap.CorePackage.ID,
			Version: snap.CorePackage.Version,
		})
	}

	if len(prev.Types) == 1 {
		t := prev.Types[0]
		w.metrics.RecordRebase()
		if len(t.Profile) > 0 {
			w.log.Debug().
				Str("profile", t.Profile[0]).
				Str("element", prev.Path).
				Msg("profile rebase")
			return w.resolvePath(ctx, service.ByID(t.Profile[0]), rest, nil, &service.PackageFilter{
				ID:      snap.PackageID,
				Version: snap.PackageVersion,
			})
		}
		w.log.Debug().
			Str("type", t.Code).
			Str("element", prev.Path).
			Msg("base type rebase")
		return w.resolvePath(ctx, service.ByID(t.Code), rest, nil, &service.PackageFilter{
			ID:      snap.CorePackage.ID,
			Version: snap.CorePackage.Version,
		})
	}

	return nil, nil
}
