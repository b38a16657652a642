// Package mention extracts term identifiers from free issue text.
package mention

import (
	"regexp"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/internal/logging"
)

// Extractor parses free text for embedded term mentions. Implementations
// return prefixed-id mentions and IRI mentions separately; a recoverable
// parse failure is treated by callers as "no mentions found".
type Extractor interface {
	Parse(text string) (oboIDs []string, iris []string, err error)
}

// termPattern matches candidate prefixed ids in running text.
var termPattern = regexp.MustCompile(`[A-Za-z]+(?:_[A-Za-z]+)*:[0-9]+`)

// urlPattern matches http(s) URLs in running text. Trailing punctuation that
// commonly closes a sentence or markdown link is excluded.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// RegexExtractor is the default Extractor, scanning text with regular
// expressions. It validates prefixed-id candidates against the entity
// package so that, for example, "owl:Thing" is not reported.
type RegexExtractor struct{}

// NewRegexExtractor creates the default extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Parse scans the text for prefixed ids and URLs, preserving first-seen
// order and dropping duplicates.
func (e *RegexExtractor) Parse(text string) ([]string, []string, error) {
	var oboIDs []string
	seenIDs := make(map[string]bool)
	for _, candidate := range termPattern.FindAllString(text, -1) {
		if !entity.IsOboID(candidate) || seenIDs[candidate] {
			continue
		}
		seenIDs[candidate] = true
		oboIDs = append(oboIDs, candidate)
	}

	var iris []string
	seenIRIs := make(map[string]bool)
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		if seenIRIs[candidate] {
			continue
		}
		seenIRIs[candidate] = true
		iris = append(iris, candidate)
	}

	logging.Debug("extracted mentions", "obo_ids", len(oboIDs), "iris", len(iris))
	return oboIDs, iris, nil
}
