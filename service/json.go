package service

import (
	"encoding/json"
	"fmt"
)

// elementKnownKeys are the wire-format keys bound to explicit struct
// fields; every other key round-trips through Extra.
var elementKnownKeys = map[string]bool{
	"id":               true,
	"path":             true,
	"sliceName":        true,
	"min":              true,
	"max":              true,
	"type":             true,
	"contentReference": true,
	"constraint":       true,
	"__fromDefinition": true,
	"__corePackage":    true,
	"__packageId":      true,
	"__packageVersion": true,
	"__name":           true,
}

// elementWire is the explicit-field half of the element wire format.
type elementWire struct {
	ID               string       `json:"id,omitempty"`
	Path             string       `json:"path,omitempty"`
	SliceName        string       `json:"sliceName,omitempty"`
	Min              *int         `json:"min,omitempty"`
	Max              string       `json:"max,omitempty"`
	Types            []TypeRef    `json:"type,omitempty"`
	ContentReference string       `json:"contentReference,omitempty"`
	Constraints      []Constraint `json:"constraint,omitempty"`
	FromDefinition   string       `json:"__fromDefinition,omitempty"`
	CorePackage      *PackageRef  `json:"__corePackage,omitempty"`
	PackageID        string       `json:"__packageId,omitempty"`
	PackageVersion   string       `json:"__packageVersion,omitempty"`
	Names            []string     `json:"__name,omitempty"`
}

// UnmarshalJSON decodes an ElementDefinition, binding interpreted fields
// and preserving everything else in Extra.
func (e *ElementDefinition) UnmarshalJSON(data []byte) error {
	var wire elementWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("element definition: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("element definition: %w", err)
	}

	e.ID = wire.ID
	e.Path = wire.Path
	e.SliceName = wire.SliceName
	if wire.Min != nil {
		e.Min = *wire.Min
	}
	e.Max = wire.Max
	e.Types = wire.Types
	e.ContentReference = wire.ContentReference
	e.Constraints = wire.Constraints
	e.FromDefinition = wire.FromDefinition
	if wire.CorePackage != nil {
		e.CorePackage = *wire.CorePackage
	}
	e.PackageID = wire.PackageID
	e.PackageVersion = wire.PackageVersion
	e.Names = wire.Names

	e.Extra = nil
	for key, msg := range raw {
		if elementKnownKeys[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("element definition field %q: %w", key, err)
		}
		if e.Extra == nil {
			e.Extra = make(map[string]any, len(raw))
		}
		e.Extra[key] = v
	}
	return nil
}

// MarshalJSON encodes the element back to the wire format, merging Extra
// with the explicit fields.
func (e *ElementDefinition) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+12)
	for k, v := range e.Extra {
		out[k] = v
	}
	if e.ID != "" {
		out["id"] = e.ID
	}
	if e.Path != "" {
		out["path"] = e.Path
	}
	if e.SliceName != "" {
		out["sliceName"] = e.SliceName
	}
	if e.Min != 0 {
		out["min"] = e.Min
	}
	if e.Max != "" {
		out["max"] = e.Max
	}
	if len(e.Types) > 0 {
		out["type"] = e.Types
	}
	if e.ContentReference != "" {
		out["contentReference"] = e.ContentReference
	}
	if len(e.Constraints) > 0 {
		out["constraint"] = e.Constraints
	}
	if e.FromDefinition != "" {
		out["__fromDefinition"] = e.FromDefinition
	}
	if !e.CorePackage.IsZero() {
		out["__corePackage"] = e.CorePackage
	}
	if e.PackageID != "" {
		out["__packageId"] = e.PackageID
	}
	if e.PackageVersion != "" {
		out["__packageVersion"] = e.PackageVersion
	}
	if len(e.Names) > 0 {
		out["__name"] = e.Names
	}
	return json.Marshal(out)
}

// snapshotWire is the StructureDefinition wire format as far as the
// navigator reads it.
type snapshotWire struct {
	ResourceType   string      `json:"resourceType,omitempty"`
	URL            string      `json:"url,omitempty"`
	Name           string      `json:"name,omitempty"`
	Type           string      `json:"type,omitempty"`
	Kind           string      `json:"kind,omitempty"`
	BaseDefinition string      `json:"baseDefinition,omitempty"`
	CorePackage    *PackageRef `json:"__corePackage,omitempty"`
	PackageID      string      `json:"__packageId,omitempty"`
	PackageVersion string      `json:"__packageVersion,omitempty"`
	Snapshot       *struct {
		Element []*ElementDefinition `json:"element"`
	} `json:"snapshot,omitempty"`
}

// UnmarshalJSON decodes a StructureDefinition with a snapshot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var wire snapshotWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if wire.ResourceType != "" && wire.ResourceType != "StructureDefinition" {
		return fmt.Errorf("snapshot: unexpected resourceType %q", wire.ResourceType)
	}

	s.URL = wire.URL
	s.Name = wire.Name
	s.Type = wire.Type
	s.Kind = wire.Kind
	s.BaseDefinition = wire.BaseDefinition
	if wire.CorePackage != nil {
		s.CorePackage = *wire.CorePackage
	}
	s.PackageID = wire.PackageID
	s.PackageVersion = wire.PackageVersion
	if wire.Snapshot != nil {
		s.Elements = wire.Snapshot.Element
	}
	return nil
}

// MarshalJSON encodes the snapshot in the wire format.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	wire := snapshotWire{
		ResourceType:   "StructureDefinition",
		URL:            s.URL,
		Name:           s.Name,
		Type:           s.Type,
		Kind:           s.Kind,
		BaseDefinition: s.BaseDefinition,
		PackageID:      s.PackageID,
		PackageVersion: s.PackageVersion,
	}
	if !s.CorePackage.IsZero() {
		cp := s.CorePackage
		wire.CorePackage = &cp
	}
	if s.Elements != nil {
		wire.Snapshot = &struct {
			Element []*ElementDefinition `json:"element"`
		}{Element: s.Elements}
	}
	return json.Marshal(wire)
}
