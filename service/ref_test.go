package service

import "testing"

func TestSnapshotRef_Normalize(t *testing.T) {
	tests := []struct {
		name string
		ref  SnapshotRef
		want string
	}{
		{
			name: "by id",
			ref:  ByID("us-core-patient"),
			want: "us-core-patient",
		},
		{
			name: "by canonical",
			ref:  ByID("http://hl7.org/fhir/StructureDefinition/Patient"),
			want: "http://hl7.org/fhir/StructureDefinition/Patient",
		},
		{
			name: "by entry",
			ref:  ByEntry("hl7.fhir.r4.core", "4.0.1", "StructureDefinition-Patient.json"),
			want: "hl7.fhir.r4.core::4.0.1::StructureDefinition-Patient.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnapshotRef_Tags(t *testing.T) {
	id := ByID("Patient")
	if id.IsEntry() || id.ID() != "Patient" || id.Entry() != nil {
		t.Errorf("ByID ref misclassified: %+v", id)
	}

	entry := ByEntry("pkg", "1.0.0", "f.json")
	if !entry.IsEntry() || entry.ID() != "" {
		t.Errorf("ByEntry ref misclassified: %+v", entry)
	}
	if e := entry.Entry(); e.PackageID != "pkg" || e.Filename != "f.json" {
		t.Errorf("Entry() = %+v", e)
	}
}
