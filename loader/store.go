package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofhir/navigator/service"
)

const canonicalBase = "http://hl7.org/fhir/StructureDefinition/"

// Store resolves snapshots and resource metadata over registered FHIR
// package directories. Package order is resolution priority: the first
// package that can resolve an identifier wins.
type Store struct {
	mu       sync.RWMutex
	packages []*pkg
	core     service.PackageRef
}

// pkg is one registered package.
type pkg struct {
	id        string
	version   string
	canonical string
	dir       string
	entries   []indexEntry
}

// manifest is the package.json subset the store reads.
type manifest struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Canonical string `json:"canonical"`
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// AddPackageDir registers an extracted package directory. The directory
// may contain the content directly or under a "package" subdirectory
// (registry tarball layout). Packages registered earlier take priority.
func (s *Store) AddPackageDir(dir string) error {
	contentDir := dir
	if _, err := os.Stat(filepath.Join(dir, "package")); err == nil {
		contentDir = filepath.Join(dir, "package")
	}

	data, err := os.ReadFile(filepath.Join(contentDir, "package.json"))
	if err != nil {
		return fmt.Errorf("loader: read package manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("loader: parse package manifest: %w", err)
	}
	if m.Name == "" {
		return fmt.Errorf("loader: package manifest in %s has no name", dir)
	}

	entries, err := readIndex(contentDir)
	if err != nil {
		return fmt.Errorf("loader: index package %s: %w", m.Name, err)
	}

	p := &pkg{
		id:        m.Name,
		version:   m.Version,
		canonical: m.Canonical,
		dir:       contentDir,
		entries:   entries,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages = append(s.packages, p)
	if s.core.IsZero() && isCorePackageID(m.Name) {
		s.core = service.PackageRef{ID: m.Name, Version: m.Version}
	}
	return nil
}

// CorePackage returns the detected FHIR core package, if any.
func (s *Store) CorePackage() service.PackageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.core
}

// Packages returns the registered package references in priority order.
func (s *Store) Packages() []service.PackageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]service.PackageRef, len(s.packages))
	for i, p := range s.packages {
		refs[i] = service.PackageRef{ID: p.id, Version: p.version}
	}
	return refs
}

// isCorePackageID matches hl7.fhir.<release>.core.
func isCorePackageID(id string) bool {
	return strings.HasPrefix(id, "hl7.fhir.") && strings.HasSuffix(id, ".core")
}

// --- service.SnapshotProvider ---

// GetSnapshot implements service.SnapshotProvider.
func (s *Store) GetSnapshot(ctx context.Context, ref service.SnapshotRef, filter *service.PackageFilter) (*service.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if entry := ref.Entry(); entry != nil {
		return s.snapshotByEntry(entry)
	}
	return s.snapshotByID(ref.ID(), filter)
}

func (s *Store) snapshotByEntry(entry *service.PackageEntry) (*service.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.packages {
		if p.id != entry.PackageID || p.version != entry.PackageVersion {
			continue
		}
		return s.parseSnapshot(p, entry.Filename)
	}
	return nil, fmt.Errorf("loader: package %s#%s not registered", entry.PackageID, entry.PackageVersion)
}

func (s *Store) snapshotByID(id string, filter *service.PackageFilter) (*service.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.packages {
		if filter != nil && (p.id != filter.ID || (filter.Version != "" && p.version != filter.Version)) {
			continue
		}
		matches := p.structureDefinitions(id)
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			return nil, fmt.Errorf("loader: ambiguous identifier %q in package %s (%d matches)", id, p.id, len(matches))
		}
		return s.parseSnapshot(p, matches[0].Filename)
	}
	if filter != nil {
		return nil, fmt.Errorf("loader: structure definition %q not found in package %s", id, filter.ID)
	}
	return nil, fmt.Errorf("loader: structure definition %q not found", id)
}

// structureDefinitions returns the package's StructureDefinitions
// matching id as a resource id, a canonical URL (versioned or not), or a
// base type name.
func (p *pkg) structureDefinitions(id string) []indexEntry {
	url := id
	if idx := strings.IndexByte(url, '|'); idx >= 0 {
		url = url[:idx]
	}

	var matches []indexEntry
	for _, e := range p.entries {
		if e.ResourceType != "StructureDefinition" {
			continue
		}
		switch {
		case e.ID == id:
		case e.URL == url && url != "":
		case e.Type == id && e.URL == canonicalBase+id:
			// Base type name, e.g. "Patient": only the base definition,
			// never a profile that constrains the type.
		default:
			continue
		}
		matches = append(matches, e)
		if e.ID == id || e.URL == url {
			// An exact id or canonical hit is unambiguous.
			return []indexEntry{e}
		}
	}
	return matches
}

// parseSnapshot reads and decodes one StructureDefinition file, stamping
// the package coordinates the navigator's enrichment relies on.
func (s *Store) parseSnapshot(p *pkg, filename string) (*service.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", filename, err)
	}

	var snap service.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", filename, err)
	}
	if len(snap.Elements) == 0 {
		return nil, fmt.Errorf("loader: %s has no snapshot", filename)
	}

	snap.PackageID = p.id
	snap.PackageVersion = p.version
	snap.CorePackage = s.core
	return &snap, nil
}

// --- service.MetadataResolver ---

// ResolveMeta implements service.MetadataResolver. It returns the single
// matching record, or nil when zero or several resources match.
func (s *Store) ResolveMeta(ctx context.Context, req service.MetaRequest) (*service.ResourceMeta, error) {
	recs, err := s.Lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, nil
	}
	return recs[0], nil
}

// Lookup implements service.MetadataResolver, returning every matching
// record in package priority order.
func (s *Store) Lookup(ctx context.Context, req service.MetaRequest) ([]*service.ResourceMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []*service.ResourceMeta
	for _, p := range s.packages {
		if req.Package != nil && (p.id != req.Package.ID || (req.Package.Version != "" && p.version != req.Package.Version)) {
			continue
		}
		for _, e := range p.entries {
			if req.ResourceType != "" && e.ResourceType != req.ResourceType {
				continue
			}
			if e.ID != req.ID && e.URL != req.ID {
				continue
			}
			recs = append(recs, &service.ResourceMeta{
				ResourceType:   e.ResourceType,
				ID:             e.ID,
				URL:            e.URL,
				Version:        e.Version,
				Kind:           e.Kind,
				Type:           e.Type,
				Filename:       e.Filename,
				PackageID:      p.id,
				PackageVersion: p.version,
			})
		}
	}
	return recs, nil
}

// NormalizedRootPackages implements service.MetadataResolver: the
// registered packages sorted by id then version, deduplicated.
func (s *Store) NormalizedRootPackages(ctx context.Context) ([]service.PackageRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]service.PackageRef, 0, len(s.packages))
	seen := make(map[service.PackageRef]bool, len(s.packages))
	for _, p := range s.packages {
		ref := service.PackageRef{ID: p.id, Version: p.version}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].ID != refs[j].ID {
			return refs[i].ID < refs[j].ID
		}
		return refs[i].Version < refs[j].Version
	})
	return refs, nil
}

var (
	_ service.SnapshotProvider = (*Store)(nil)
	_ service.MetadataResolver = (*Store)(nil)
)
