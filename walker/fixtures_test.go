package walker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	fn "github.com/gofhir/navigator"
	"github.com/gofhir/navigator/service"
)

const (
	fhirBase   = "http://hl7.org/fhir/StructureDefinition/"
	usCoreBase = "http://hl7.org/fhir/us/core/StructureDefinition/"
	sysString  = "http://hl7.org/fhirpath/System.String"
)

var (
	corePkg   = service.PackageRef{ID: "hl7.fhir.r4.core", Version: "4.0.1"}
	usCorePkg = service.PackageRef{ID: "hl7.fhir.us.core", Version: "6.1.0"}
)

// el builds an element whose path equals its id.
func el(id string, codes ...string) *service.ElementDefinition {
	return elp(id, id, codes...)
}

// elp builds an element with distinct id and path (slices).
func elp(id, path string, codes ...string) *service.ElementDefinition {
	e := &service.ElementDefinition{ID: id, Path: path}
	for _, c := range codes {
		e.Types = append(e.Types, service.TypeRef{Code: c})
	}
	return e
}

func coreSnapshot(name, kind string, elements ...*service.ElementDefinition) *service.Snapshot {
	return &service.Snapshot{
		URL:            fhirBase + name,
		Name:           name,
		Type:           name,
		Kind:           kind,
		CorePackage:    corePkg,
		PackageID:      corePkg.ID,
		PackageVersion: corePkg.Version,
		Elements:       elements,
	}
}

func patientSnapshot() *service.Snapshot {
	gender := el("Patient.gender", "code")
	gender.Extra = map[string]any{
		"short":   "male | female | other | unknown",
		"comment": "administrative gender",
		"binding": map[string]any{"strength": "required"},
	}
	return coreSnapshot("Patient", service.KindResource,
		el("Patient"),
		el("Patient.id", sysString),
		el("Patient.extension", "Extension"),
		el("Patient.identifier", "Identifier"),
		el("Patient.name", "HumanName"),
		gender,
		el("Patient.deceased[x]", "boolean", "dateTime"),
		el("Patient.contact", "BackboneElement"),
		el("Patient.contact.name", "HumanName"),
		el("Patient.contact.gender", "code"),
		el("Patient.link", "BackboneElement"),
		el("Patient.link.other", "Reference"),
	)
}

func extensionSnapshot() *service.Snapshot {
	return coreSnapshot("Extension", service.KindComplexType,
		el("Extension"),
		el("Extension.id", sysString),
		el("Extension.extension", "Extension"),
		el("Extension.url", sysString),
		el("Extension.value[x]", "string", "boolean", "CodeableConcept", "Quantity"),
	)
}

func stringSnapshot() *service.Snapshot {
	return coreSnapshot("string", service.KindPrimitiveType,
		el("string"),
		el("string.id", sysString),
		el("string.extension", "Extension"),
		el("string.value", sysString),
	)
}

func humanNameSnapshot() *service.Snapshot {
	return coreSnapshot("HumanName", service.KindComplexType,
		el("HumanName"),
		el("HumanName.id", sysString),
		el("HumanName.use", "code"),
		el("HumanName.family", "string"),
		el("HumanName.given", "string"),
	)
}

func identifierSnapshot() *service.Snapshot {
	return coreSnapshot("Identifier", service.KindComplexType,
		el("Identifier"),
		el("Identifier.use", "code"),
		el("Identifier.system", "uri"),
		el("Identifier.value", "string"),
	)
}

func bundleSnapshot() *service.Snapshot {
	entryLink := el("Bundle.entry.link")
	entryLink.ContentReference = "#Bundle.link"
	return coreSnapshot("Bundle", service.KindResource,
		el("Bundle"),
		el("Bundle.link", "BackboneElement"),
		el("Bundle.link.relation", "string"),
		el("Bundle.link.url", "uri"),
		el("Bundle.entry", "BackboneElement"),
		entryLink,
		el("Bundle.entry.resource", "Resource"),
	)
}

func observationSnapshot() *service.Snapshot {
	return coreSnapshot("Observation", service.KindResource,
		el("Observation"),
		el("Observation.status", "code"),
		el("Observation.value[x]", "Quantity", "CodeableConcept", "string", "boolean"),
	)
}

func baseSnapshot() *service.Snapshot {
	return coreSnapshot("Base", service.KindComplexType,
		el("Base"),
		el("Base.meta"),
	)
}

func usCorePatientSnapshot() *service.Snapshot {
	race := elp("Patient.extension:race", "Patient.extension")
	race.SliceName = "race"
	race.Types = []service.TypeRef{{Code: "Extension", Profile: []string{usCoreBase + "us-core-race"}}}
	return &service.Snapshot{
		URL:            usCoreBase + "us-core-patient",
		Name:           "USCorePatientProfile",
		Type:           "Patient",
		Kind:           service.KindResource,
		CorePackage:    corePkg,
		PackageID:      usCorePkg.ID,
		PackageVersion: usCorePkg.Version,
		Elements: []*service.ElementDefinition{
			el("Patient"),
			el("Patient.extension", "Extension"),
			race,
			el("Patient.identifier", "Identifier"),
			el("Patient.identifier.system", "uri"),
			el("Patient.identifier.value", "string"),
			el("Patient.name", "HumanName"),
			el("Patient.gender", "code"),
		},
	}
}

func usCoreRaceSnapshot() *service.Snapshot {
	omb := elp("Extension.extension:ombCategory", "Extension.extension", "Extension")
	omb.SliceName = "ombCategory"
	url := el("Extension.url", sysString)
	url.Extra = map[string]any{"fixedUri": usCoreBase + "us-core-race"}
	return &service.Snapshot{
		URL:            usCoreBase + "us-core-race",
		Name:           "USCoreRaceExtension",
		Type:           "Extension",
		Kind:           service.KindComplexType,
		CorePackage:    corePkg,
		PackageID:      usCorePkg.ID,
		PackageVersion: usCorePkg.Version,
		Elements: []*service.ElementDefinition{
			el("Extension"),
			el("Extension.extension", "Extension"),
			omb,
			url,
			el("Extension.value[x]", "CodeableConcept"),
		},
	}
}

// fakeProvider serves fixture snapshots, building a fresh value per call
// so navigator enrichment never leaks between tests.
type fakeProvider struct {
	builders map[string]func() *service.Snapshot
	calls    atomic.Int64
}

func newFakeProvider() *fakeProvider {
	p := &fakeProvider{builders: make(map[string]func() *service.Snapshot)}
	for _, b := range []func() *service.Snapshot{
		patientSnapshot,
		extensionSnapshot,
		stringSnapshot,
		humanNameSnapshot,
		identifierSnapshot,
		bundleSnapshot,
		observationSnapshot,
		baseSnapshot,
		usCorePatientSnapshot,
		usCoreRaceSnapshot,
	} {
		sn := b()
		name := sn.Name
		if sn.PackageID == corePkg.ID {
			name = sn.Type
		}
		p.builders[sn.URL] = b
		p.builders[name] = b
	}
	// Profile ids differ from their names.
	p.builders["us-core-patient"] = usCorePatientSnapshot
	p.builders["us-core-race"] = usCoreRaceSnapshot
	// Structured entry for the core Patient definition.
	p.builders[corePkg.ID+"::"+corePkg.Version+"::StructureDefinition-Patient.json"] = patientSnapshot
	return p
}

func (p *fakeProvider) GetSnapshot(ctx context.Context, ref service.SnapshotRef, filter *service.PackageFilter) (*service.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.calls.Add(1)
	if b, ok := p.builders[ref.Normalize()]; ok {
		return b(), nil
	}
	return nil, fmt.Errorf("structure definition %q not found", ref.Normalize())
}

// fakeMeta resolves type metadata from a static record table.
type fakeMeta struct {
	records      []*service.ResourceMeta
	roots        []service.PackageRef
	resolveCalls atomic.Int64
}

func newFakeMeta() *fakeMeta {
	m := &fakeMeta{
		roots: []service.PackageRef{corePkg, usCorePkg},
	}
	add := func(id, kind, typ string, pkg service.PackageRef, base string) {
		m.records = append(m.records, &service.ResourceMeta{
			ResourceType:   "StructureDefinition",
			ID:             id,
			URL:            base + id,
			Kind:           kind,
			Type:           typ,
			Filename:       "StructureDefinition-" + id + ".json",
			PackageID:      pkg.ID,
			PackageVersion: pkg.Version,
		})
	}
	for _, id := range []string{"string", "boolean", "code", "uri", "canonical", "dateTime"} {
		add(id, service.KindPrimitiveType, id, corePkg, fhirBase)
	}
	for _, id := range []string{"CodeableConcept", "Quantity", "HumanName", "Identifier", "Extension", "Reference", "BackboneElement"} {
		add(id, service.KindComplexType, id, corePkg, fhirBase)
	}
	for _, id := range []string{"Patient", "Observation", "Bundle", "Resource"} {
		add(id, service.KindResource, id, corePkg, fhirBase)
	}
	add("us-core-race", service.KindComplexType, "Extension", usCorePkg, usCoreBase)
	return m
}

func (m *fakeMeta) Lookup(ctx context.Context, req service.MetaRequest) ([]*service.ResourceMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*service.ResourceMeta
	for _, r := range m.records {
		if req.ResourceType != "" && r.ResourceType != req.ResourceType {
			continue
		}
		if r.ID != req.ID && r.URL != req.ID {
			continue
		}
		if req.Package != nil && r.PackageID != req.Package.ID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *fakeMeta) ResolveMeta(ctx context.Context, req service.MetaRequest) (*service.ResourceMeta, error) {
	m.resolveCalls.Add(1)
	recs, err := m.Lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, nil
	}
	return recs[0], nil
}

func (m *fakeMeta) NormalizedRootPackages(ctx context.Context) ([]service.PackageRef, error) {
	return m.roots, nil
}

// newTestWalker wires a Walker over the fixture provider and metadata.
func newTestWalker(t *testing.T, opts ...fn.Option) (*Walker, *fakeProvider, *fakeMeta) {
	t.Helper()
	provider := newFakeProvider()
	meta := newFakeMeta()
	options := fn.DefaultOptions()
	for _, o := range opts {
		o(options)
	}
	w := New(provider, meta, PackageContextString(meta.roots), options, fn.NewMetrics())
	return w, provider, meta
}
