package walker

import (
	"regexp"

	"github.com/gofhir/navigator/service"
)

// bracketRe decomposes a search path carrying an explicit bracket token,
// e.g. "Extension.value[CodeableConcept]" into outer and inner parts.
var bracketRe = regexp.MustCompile(`^(.+)\[([^\]]+)\]$`)

// MatchElement locates the element for searchPath in an element list,
// narrowing polymorphic elements when the path names a concrete type.
//
// Rules apply in order, first match over the element sequence wins:
//
//  1. Direct match: an element whose id equals searchPath or
//     searchPath+"[x]". No narrowing.
//  2. Canonical suffix narrowing: a choice element whose base plus a
//     capitalized type code equals searchPath ("value" + "String").
//  3. Bracket narrowing: searchPath of the form outer[inner] against a
//     choice element outer[x]; inner "x" selects the unnarrowed head.
//
// A real element with a narrowed id (an explicit choice slice) is found
// by rule 1 before rule 2 can narrow: rule 1 scans the whole element list
// first, so the direct match wins wherever it sits in the list.
//
// The returned TypeRef points into the matched element's type list; it is
// nil when no narrowing occurred. MatchElement does no I/O.
func MatchElement(elements []*service.ElementDefinition, searchPath string) (*service.ElementDefinition, *service.TypeRef) {
	// Rule 1: direct match.
	for _, e := range elements {
		if e.ID == searchPath || e.ID == searchPath+ChoiceSuffix {
			return e, nil
		}
	}

	// Rule 2: canonical suffix narrowing.
	for _, e := range elements {
		if !IsChoiceID(e.ID) {
			continue
		}
		base := e.ID[:len(e.ID)-len(ChoiceSuffix)]
		for i := range e.Types {
			if base+UpperFirst(e.Types[i].Code) == searchPath {
				return e, &e.Types[i]
			}
		}
	}

	// Rule 3: bracket narrowing.
	m := bracketRe.FindStringSubmatch(searchPath)
	if m == nil {
		return nil, nil
	}
	outer, inner := m[1], m[2]
	for _, e := range elements {
		if e.ID != outer+ChoiceSuffix {
			continue
		}
		if inner == "x" {
			// The choice head with all its types.
			return e, nil
		}
		for i := range e.Types {
			capitalized := UpperFirst(e.Types[i].Code)
			if inner == capitalized || inner == outer+capitalized {
				return e, &e.Types[i]
			}
		}
	}
	return nil, nil
}
