package walker

import (
	"strings"
)

// SystemTypePrefix marks FHIRPath system types. Elements typed with these
// codes (the primitive value backbone) get the synthetic kind "system"
// instead of a metadata lookup.
const SystemTypePrefix = "http://hl7.org/fhirpath/System."

// ChoiceSuffix is the id/path suffix of polymorphic elements.
const ChoiceSuffix = "[x]"

// IsSystemType returns true if the type code is a FHIRPath system type.
func IsSystemType(typeCode string) bool {
	return strings.HasPrefix(typeCode, SystemTypePrefix)
}

// IsChoiceID returns true if an element id or path denotes a polymorphic
// element.
func IsChoiceID(id string) bool {
	return strings.HasSuffix(id, ChoiceSuffix)
}

// UpperFirst capitalizes the first letter of a string.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LastSegment returns the last dot-segment of a path.
func LastSegment(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// BaseName returns the choice base of an element id: the last dot-segment
// with a trailing "[x]" stripped. For "Extension.value[x]" it returns
// "value".
func BaseName(id string) string {
	return strings.TrimSuffix(LastSegment(id), ChoiceSuffix)
}

// InferredName composes the FSH-style name a choice element takes when
// narrowed to one type: BaseName(id) + UpperFirst(code), e.g.
// "valueString" for ("Extension.value[x]", "string").
func InferredName(id, code string) string {
	return BaseName(id) + UpperFirst(code)
}

// CanonicalTail extracts the id from a canonical URL: the last path
// segment, with any "|version" suffix removed.
func CanonicalTail(canonical string) string {
	if idx := strings.IndexByte(canonical, '|'); idx >= 0 {
		canonical = canonical[:idx]
	}
	if idx := strings.LastIndexByte(canonical, '/'); idx >= 0 {
		canonical = canonical[idx+1:]
	}
	return canonical
}
