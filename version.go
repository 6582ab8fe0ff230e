package fhirnavigator

// FHIRVersion represents a FHIR specification version.
type FHIRVersion string

// Supported FHIR versions.
const (
	// R4 is FHIR Release 4 (4.0.1)
	R4 FHIRVersion = "R4"
	// R4B is FHIR Release 4B (4.3.0)
	R4B FHIRVersion = "R4B"
	// R5 is FHIR Release 5 (5.0.0)
	R5 FHIRVersion = "R5"
)

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// IsValid returns true if this is a supported FHIR version.
func (v FHIRVersion) IsValid() bool {
	switch v {
	case R4, R4B, R5:
		return true
	default:
		return false
	}
}

// CorePackageName returns the core package id for the version, or "".
func (v FHIRVersion) CorePackageName() string {
	switch v {
	case R4:
		return "hl7.fhir.r4.core"
	case R4B:
		return "hl7.fhir.r4b.core"
	case R5:
		return "hl7.fhir.r5.core"
	default:
		return ""
	}
}

// CorePackageVersion returns the published core package version, or "".
func (v FHIRVersion) CorePackageVersion() string {
	switch v {
	case R4:
		return "4.0.1"
	case R4B:
		return "4.3.0"
	case R5:
		return "5.0.0"
	default:
		return ""
	}
}
