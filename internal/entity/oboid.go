// Package entity provides the identifier value types used to record which
// ontology terms an issue mentions: OBO-style prefixed ids and IRIs, plus
// the conversion between the two forms.
package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// OboID is a prefixed term identifier such as "GO:0001234".
type OboID string

func (o OboID) String() string {
	return string(o)
}

// IRI is the lexical form of an entity IRI.
type IRI string

func (i IRI) String() string {
	return string(i)
}

// oboIDPattern matches a prefixed id: an alphabetic prefix (underscore
// separated words allowed) followed by a colon and a numeric local part.
var oboIDPattern = regexp.MustCompile(`^[A-Za-z]+(?:_[A-Za-z]+)*:[0-9]+$`)

// oboIRIPattern matches an OBO library style IRI, whose final path segment
// is "obo/PREFIX_NNNN".
var oboIRIPattern = regexp.MustCompile(`/obo/[A-Za-z]+(?:_[A-Za-z]+)*_[0-9]+$`)

// oboPURLBase is the canonical OBO library PURL prefix.
const oboPURLBase = "http://purl.obolibrary.org/obo/"

// IsOboID reports whether s is a recognized prefixed id. The local part
// must be numeric, so names like "owl:Thing" are not prefixed ids.
func IsOboID(s string) bool {
	return oboIDPattern.MatchString(s)
}

// IsOboIRI reports whether the IRI has the OBO library shape, regardless of
// its host.
func IsOboIRI(iri IRI) bool {
	return oboIRIPattern.MatchString(string(iri))
}

// OboLibraryIRI converts a prefixed id to its canonical OBO library PURL,
// e.g. "GO:0001234" becomes "http://purl.obolibrary.org/obo/GO_0001234".
// It fails when the argument is not a recognized prefixed id.
func OboLibraryIRI(oboID string) (IRI, error) {
	if !IsOboID(oboID) {
		return "", fmt.Errorf("not a valid obo id: %q", oboID)
	}
	return IRI(oboPURLBase + strings.Replace(oboID, ":", "_", 1)), nil
}

// ResolveOboID returns the canonical IRI for a prefixed id, or false when
// the argument is not one.
func ResolveOboID(oboID string) (IRI, bool) {
	if !IsOboID(oboID) {
		return "", false
	}
	iri, err := OboLibraryIRI(oboID)
	if err != nil {
		return "", false
	}
	return iri, true
}
