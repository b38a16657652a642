package mirror

import (
	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/internal/mention"
	"github.com/termlink/issuemirror/pkg/models"
)

// Translator derives an IssueRecord from a fetched issue by extracting term
// mentions from the concatenation of its title and body.
type Translator struct {
	extractor mention.Extractor
}

// NewTranslator creates a Translator using the given mention extractor.
func NewTranslator(extractor mention.Extractor) *Translator {
	return &Translator{extractor: extractor}
}

// Translate builds the mirrored record for an issue. A parse failure in the
// extractor is recoverable and yields a record with no mentions.
func (t *Translator) Translate(issue models.GitHubIssue, repoCoords models.RepoCoordinates) IssueRecord {
	combinedText := issue.Title + "  " + issue.Body

	rawIDs, rawIRIs, err := t.extractor.Parse(combinedText)
	if err != nil {
		logging.Debug("error parsing issue text for mentions",
			"issue", issue.NodeID,
			"error", err)
		rawIDs, rawIRIs = nil, nil
	}

	oboIDs := make([]entity.OboID, 0, len(rawIDs))
	for _, id := range rawIDs {
		oboIDs = append(oboIDs, entity.OboID(id))
	}
	iris := make([]entity.IRI, 0, len(rawIRIs))
	for _, iri := range rawIRIs {
		iris = append(iris, entity.IRI(iri))
	}

	return NewIssueRecord(issue.NodeID, repoCoords, issue, oboIDs, iris)
}
