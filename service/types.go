// Package service defines the snapshot data model and the small,
// composable interfaces the navigator depends on.
// Following Go's philosophy of small interfaces, each interface has 1-3 methods.
package service

// Snapshot kind codes from StructureDefinition.kind.
const (
	KindPrimitiveType = "primitive-type"
	KindComplexType   = "complex-type"
	KindResource      = "resource"
	KindLogical       = "logical"
)

// KindSystem is the synthetic kind assigned to FHIRPath system types
// (type codes beginning with "http://hl7.org/fhirpath/System.").
const KindSystem = "system"

// PackageRef identifies a FHIR package by id and version.
type PackageRef struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// String returns the package reference as "id#version".
func (p PackageRef) String() string {
	if p.Version == "" {
		return p.ID
	}
	return p.ID + "#" + p.Version
}

// IsZero reports whether the reference is empty.
func (p PackageRef) IsZero() bool {
	return p.ID == "" && p.Version == ""
}

// PackageFilter constrains snapshot resolution to a single package.
type PackageFilter struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// Snapshot is the fully-resolved, ordered element list for one
// structure definition, plus its identity and package coordinates.
type Snapshot struct {
	URL            string
	Name           string
	Type           string
	Kind           string
	BaseDefinition string

	// Package coordinates stamped by the provider.
	CorePackage    PackageRef
	PackageID      string
	PackageVersion string

	// Elements is snapshot.element in definition order.
	// The first element is the root; its id equals the base type.
	Elements []*ElementDefinition
}

// Root returns the root element of the snapshot, or nil if empty.
func (s *Snapshot) Root() *ElementDefinition {
	if s == nil || len(s.Elements) == 0 {
		return nil
	}
	return s.Elements[0]
}

// FindByID returns the element with the given id, or nil.
// Element ids are unique within a snapshot.
func (s *Snapshot) FindByID(id string) *ElementDefinition {
	if s == nil {
		return nil
	}
	for _, e := range s.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// ElementDefinition is one node in a snapshot, identified by a
// dot-and-colon structured id. Fields the navigator interprets are
// explicit; everything else from the wire format is preserved in Extra.
type ElementDefinition struct {
	ID               string
	Path             string
	SliceName        string
	Min              int
	Max              string
	Types            []TypeRef
	ContentReference string
	Constraints      []Constraint

	// Enrichment fields, set once when the owning snapshot is fetched.
	FromDefinition string
	CorePackage    PackageRef
	PackageID      string
	PackageVersion string

	// Names holds the FSH-style names of the element: a single entry for
	// monomorphic elements ("family"), one entry per allowed type for
	// choice elements ("valueString", "valueQuantity", ...).
	Names []string

	// Extra preserves wire-format fields the navigator does not interpret
	// (fixedUri, binding, base, slicing, ...). Verbose fields are removed
	// during enrichment.
	Extra map[string]any
}

// TypeRef is one entry in ElementDefinition.type.
type TypeRef struct {
	Code          string   `json:"code"`
	Profile       []string `json:"profile,omitempty"`
	TargetProfile []string `json:"targetProfile,omitempty"`

	// Kind is the StructureDefinition.kind of the referenced type,
	// resolved during enrichment. KindSystem for FHIRPath system types.
	Kind string `json:"__kind,omitempty"`
}

// Constraint is one entry in ElementDefinition.constraint.
// XPath is cleared during enrichment.
type Constraint struct {
	Key        string `json:"key,omitempty"`
	Severity   string `json:"severity,omitempty"`
	Human      string `json:"human,omitempty"`
	Expression string `json:"expression,omitempty"`
	XPath      string `json:"xpath,omitempty"`
	Source     string `json:"source,omitempty"`
}

// TypeCodes returns the type codes of the element in order.
func (e *ElementDefinition) TypeCodes() []string {
	if e == nil || len(e.Types) == 0 {
		return nil
	}
	codes := make([]string, len(e.Types))
	for i, t := range e.Types {
		codes[i] = t.Code
	}
	return codes
}

// AllowsType reports whether code appears in the element's type list.
func (e *ElementDefinition) AllowsType(code string) bool {
	for _, t := range e.Types {
		if t.Code == code {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the element. Callers of the navigator
// receive clones so cached values are never exposed by reference.
func (e *ElementDefinition) Clone() *ElementDefinition {
	if e == nil {
		return nil
	}
	out := *e
	if e.Types != nil {
		out.Types = make([]TypeRef, len(e.Types))
		for i, t := range e.Types {
			out.Types[i] = t
			if t.Profile != nil {
				out.Types[i].Profile = append([]string(nil), t.Profile...)
			}
			if t.TargetProfile != nil {
				out.Types[i].TargetProfile = append([]string(nil), t.TargetProfile...)
			}
		}
	}
	if e.Constraints != nil {
		out.Constraints = append([]Constraint(nil), e.Constraints...)
	}
	if e.Names != nil {
		out.Names = append([]string(nil), e.Names...)
	}
	if e.Extra != nil {
		out.Extra = make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// CloneElements deep-copies a list of elements.
func CloneElements(elements []*ElementDefinition) []*ElementDefinition {
	if elements == nil {
		return nil
	}
	out := make([]*ElementDefinition, len(elements))
	for i, e := range elements {
		out[i] = e.Clone()
	}
	return out
}

// ResourceMeta is a package-scoped metadata record for a conformance
// resource, as returned by the MetadataResolver.
type ResourceMeta struct {
	ResourceType   string `json:"resourceType,omitempty"`
	ID             string `json:"id,omitempty"`
	URL            string `json:"url,omitempty"`
	Version        string `json:"version,omitempty"`
	Kind           string `json:"kind,omitempty"`
	Type           string `json:"type,omitempty"`
	Filename       string `json:"filename,omitempty"`
	PackageID      string `json:"__packageId,omitempty"`
	PackageVersion string `json:"__packageVersion,omitempty"`
}

// MetaRequest describes a metadata lookup.
type MetaRequest struct {
	ResourceType string
	ID           string
	Package      *PackageRef
}
