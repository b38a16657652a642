package mirror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/internal/mention"
	"github.com/termlink/issuemirror/pkg/models"
)

// recordingExtractor captures the text handed to Parse.
type recordingExtractor struct {
	lastText string
}

func (e *recordingExtractor) Parse(text string) ([]string, []string, error) {
	e.lastText = text
	return nil, nil, nil
}

// failingExtractor always reports a parse failure.
type failingExtractor struct{}

func (e *failingExtractor) Parse(text string) ([]string, []string, error) {
	return nil, nil, errors.New("parse failure")
}

func mustCoords(t *testing.T) models.RepoCoordinates {
	t.Helper()
	coords, err := models.NewRepoCoordinates("acme", "widgets")
	require.NoError(t, err)
	return coords
}

func TestTranslateExtractsMentionsFromTitleAndBody(t *testing.T) {
	translator := NewTranslator(mention.NewRegexExtractor())
	issue := models.GitHubIssue{
		NodeID: "I_1",
		Number: 1,
		Title:  "Broken rendering of GO:0001234",
		Body:   "Linked from http://purl.obolibrary.org/obo/CHEBI_15377 as well.",
	}

	record := translator.Translate(issue, mustCoords(t))

	assert.Equal(t, "I_1", record.ID)
	assert.Equal(t, []entity.OboID{"GO:0001234"}, record.OboIDs)
	assert.Equal(t, []entity.IRI{"http://purl.obolibrary.org/obo/CHEBI_15377"}, record.IRIs)
}

func TestTranslateConcatenatesTitleAndBody(t *testing.T) {
	extractor := &recordingExtractor{}
	translator := NewTranslator(extractor)
	issue := models.GitHubIssue{NodeID: "I_1", Title: "title", Body: "body"}

	translator.Translate(issue, mustCoords(t))

	assert.Equal(t, "title  body", extractor.lastText)
}

func TestTranslateParseFailureYieldsNoMentions(t *testing.T) {
	translator := NewTranslator(&failingExtractor{})
	issue := models.GitHubIssue{NodeID: "I_1", Title: "GO:0001234"}

	record := translator.Translate(issue, mustCoords(t))

	assert.Empty(t, record.OboIDs)
	assert.Empty(t, record.IRIs)
	assert.Equal(t, "I_1", record.ID, "the record itself is still produced")
}
