package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/pkg/models"
)

func TestNewIssueRecord(t *testing.T) {
	coords, err := models.NewRepoCoordinates("acme", "widgets")
	require.NoError(t, err)
	issue := models.GitHubIssue{NodeID: "I_1", Number: 1, Title: "A bug"}

	record := NewIssueRecord("I_1", coords, issue,
		[]entity.OboID{"GO:0001234"},
		[]entity.IRI{"http://purl.obolibrary.org/obo/GO_0001234"})

	assert.Equal(t, "I_1", record.ID)
	assert.Equal(t, coords, record.RepoCoords)
	assert.Equal(t, issue, record.Issue)
	assert.Equal(t, []entity.OboID{"GO:0001234"}, record.OboIDs)
}

func TestNewIssueRecordPanicsOnIDMismatch(t *testing.T) {
	coords, err := models.NewRepoCoordinates("acme", "widgets")
	require.NoError(t, err)
	issue := models.GitHubIssue{NodeID: "I_1"}

	assert.Panics(t, func() {
		NewIssueRecord("I_2", coords, issue, nil, nil)
	})
}
