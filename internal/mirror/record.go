// Package mirror maintains the local copy of a repository's issues: the
// mirrored record type, translation from fetched issues (including mention
// extraction), and the reconciler that brings a repository partition in line
// with a freshly fetched issue set.
package mirror

import (
	"fmt"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/pkg/models"
)

// IssueRecord is a locally mirrored issue together with the term mentions
// derived from its text. Records are partitioned by repository coordinates:
// a full resync replaces the whole partition, while webhook-driven updates
// upsert individual records.
type IssueRecord struct {
	// ID equals the remote node identifier of the embedded issue.
	ID         string
	RepoCoords models.RepoCoordinates
	Issue      models.GitHubIssue
	OboIDs     []entity.OboID
	IRIs       []entity.IRI
}

// NewIssueRecord constructs a record. The id must equal the identifying
// field of the embedded issue; a mismatch is a programmer error and panics.
func NewIssueRecord(id string, repoCoords models.RepoCoordinates, issue models.GitHubIssue, oboIDs []entity.OboID, iris []entity.IRI) IssueRecord {
	if id != issue.NodeID {
		panic(fmt.Sprintf("issue record id %q does not match issue node id %q", id, issue.NodeID))
	}
	return IssueRecord{
		ID:         id,
		RepoCoords: repoCoords,
		Issue:      issue,
		OboIDs:     oboIDs,
		IRIs:       iris,
	}
}
