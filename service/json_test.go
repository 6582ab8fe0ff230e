package service

import (
	"encoding/json"
	"testing"
)

func TestElementDefinition_UnmarshalPreservesExtra(t *testing.T) {
	data := []byte(`{
		"id": "Extension.url",
		"path": "Extension.url",
		"min": 1,
		"max": "1",
		"type": [{"code": "http://hl7.org/fhirpath/System.String"}],
		"fixedUri": "http://example.org/ext",
		"short": "identifies the meaning of the extension",
		"constraint": [{"key": "ele-1", "severity": "error", "xpath": "@value|f:*"}]
	}`)

	var e ElementDefinition
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if e.ID != "Extension.url" || e.Path != "Extension.url" {
		t.Errorf("identity = %q/%q", e.ID, e.Path)
	}
	if e.Min != 1 || e.Max != "1" {
		t.Errorf("cardinality = %d/%q", e.Min, e.Max)
	}
	if len(e.Types) != 1 || e.Types[0].Code != "http://hl7.org/fhirpath/System.String" {
		t.Errorf("types = %+v", e.Types)
	}
	if got := e.Extra["fixedUri"]; got != "http://example.org/ext" {
		t.Errorf("Extra[fixedUri] = %v", got)
	}
	if got := e.Extra["short"]; got != "identifies the meaning of the extension" {
		t.Errorf("Extra[short] = %v", got)
	}
	if len(e.Constraints) != 1 || e.Constraints[0].XPath != "@value|f:*" {
		t.Errorf("constraints = %+v", e.Constraints)
	}
}

func TestElementDefinition_RoundTrip(t *testing.T) {
	e := &ElementDefinition{
		ID:             "Patient.gender",
		Path:           "Patient.gender",
		Min:            0,
		Max:            "1",
		Types:          []TypeRef{{Code: "code", Kind: "primitive-type"}},
		FromDefinition: "http://hl7.org/fhir/StructureDefinition/Patient",
		CorePackage:    PackageRef{ID: "hl7.fhir.r4.core", Version: "4.0.1"},
		PackageID:      "hl7.fhir.r4.core",
		PackageVersion: "4.0.1",
		Names:          []string{"gender"},
		Extra:          map[string]any{"binding": map[string]any{"strength": "required"}},
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back ElementDefinition
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.ID != e.ID || back.FromDefinition != e.FromDefinition {
		t.Errorf("identity lost: %+v", back)
	}
	if back.CorePackage != e.CorePackage {
		t.Errorf("core package = %+v", back.CorePackage)
	}
	if len(back.Names) != 1 || back.Names[0] != "gender" {
		t.Errorf("names = %v", back.Names)
	}
	if len(back.Types) != 1 || back.Types[0].Kind != "primitive-type" {
		t.Errorf("types = %+v", back.Types)
	}
	if _, ok := back.Extra["binding"]; !ok {
		t.Error("Extra[binding] lost in round trip")
	}
}

func TestSnapshot_Unmarshal(t *testing.T) {
	data := []byte(`{
		"resourceType": "StructureDefinition",
		"url": "http://hl7.org/fhir/StructureDefinition/Patient",
		"name": "Patient",
		"type": "Patient",
		"kind": "resource",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/DomainResource",
		"snapshot": {"element": [
			{"id": "Patient", "path": "Patient"},
			{"id": "Patient.gender", "path": "Patient.gender", "type": [{"code": "code"}]}
		]}
	}`)

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if s.Type != "Patient" || s.Kind != "resource" {
		t.Errorf("identity = %q/%q", s.Type, s.Kind)
	}
	if len(s.Elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(s.Elements))
	}
	if s.Root().ID != "Patient" {
		t.Errorf("root = %q", s.Root().ID)
	}
	if s.FindByID("Patient.gender") == nil {
		t.Error("FindByID(Patient.gender) = nil")
	}
}

func TestSnapshot_RejectsOtherResourceTypes(t *testing.T) {
	var s Snapshot
	err := json.Unmarshal([]byte(`{"resourceType": "ValueSet"}`), &s)
	if err == nil {
		t.Error("expected error for non-StructureDefinition resource")
	}
}

func TestElementDefinition_Clone(t *testing.T) {
	e := &ElementDefinition{
		ID:    "Extension.value[x]",
		Path:  "Extension.value[x]",
		Types: []TypeRef{{Code: "string"}, {Code: "Quantity", Profile: []string{"http://example.org/p"}}},
		Names: []string{"valueString", "valueQuantity"},
		Extra: map[string]any{"short": "x"},
	}

	c := e.Clone()
	c.Types[0].Code = "boolean"
	c.Types[1].Profile[0] = "changed"
	c.Names[0] = "changed"
	c.Extra["short"] = "changed"

	if e.Types[0].Code != "string" || e.Types[1].Profile[0] != "http://example.org/p" {
		t.Error("Clone shares type storage with original")
	}
	if e.Names[0] != "valueString" {
		t.Error("Clone shares names with original")
	}
	if e.Extra["short"] != "x" {
		t.Error("Clone shares Extra with original")
	}
}
