package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/internal/mirror"
	"github.com/termlink/issuemirror/pkg/models"
)

// memQueryStore serves canned mirrored records, filtered by mention.
type memQueryStore struct {
	records []mirror.IssueRecord
}

func (s *memQueryStore) FindAllByRepo(ctx context.Context, coords models.RepoCoordinates) ([]mirror.IssueRecord, error) {
	var out []mirror.IssueRecord
	for _, r := range s.records {
		if r.RepoCoords == coords {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memQueryStore) FindAllByRepoAndIRI(ctx context.Context, coords models.RepoCoordinates, iri entity.IRI) ([]mirror.IssueRecord, error) {
	var out []mirror.IssueRecord
	for _, r := range s.records {
		if r.RepoCoords != coords {
			continue
		}
		for _, candidate := range r.IRIs {
			if candidate == iri {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (s *memQueryStore) FindAllByRepoAndOboID(ctx context.Context, coords models.RepoCoordinates, oboID entity.OboID) ([]mirror.IssueRecord, error) {
	var out []mirror.IssueRecord
	for _, r := range s.records {
		if r.RepoCoords != coords {
			continue
		}
		for _, candidate := range r.OboIDs {
			if candidate == oboID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func queryRecord(coords models.RepoCoordinates, nodeID string, number int, oboIDs []entity.OboID, iris []entity.IRI) mirror.IssueRecord {
	issue := models.GitHubIssue{NodeID: nodeID, Number: number, Title: nodeID}
	return mirror.NewIssueRecord(nodeID, coords, issue, oboIDs, iris)
}

func newTestIssuesService(t *testing.T, store QueryStore) (*IssuesService, *memStates, *fakeFetcher) {
	t.Helper()
	states := newMemStates()
	fetcher := &fakeFetcher{}
	manager := NewManager(states, fetcher, newFakeReconciler())
	return NewIssuesService(manager, states, store), states, fetcher
}

func TestGetIssuesUnlinkedProject(t *testing.T) {
	service, _, fetcher := newTestIssuesService(t, &memQueryStore{})

	issues, err := service.GetIssues(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Nil(t, issues)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestGetIssuesRefreshesBeforeAnswering(t *testing.T) {
	coords := syncerCoords(t)
	store := &memQueryStore{records: []mirror.IssueRecord{
		queryRecord(coords, "I_1", 1, nil, nil),
		queryRecord(coords, "I_2", 2, nil, nil),
	}}
	service, states, fetcher := newTestIssuesService(t, store)

	require.NoError(t, states.SaveSyncState(context.Background(), models.NewSyncStateRecord("proj-1", coords)))

	issues, err := service.GetIssues(context.Background(), "proj-1")
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.callCount(), "a stale project must be refreshed first")
	assert.Equal(t, models.SyncStateSynced, states.state(t, "proj-1"))
	require.Len(t, issues, 2)
	assert.Equal(t, "I_1", issues[0].NodeID)
}

func TestGetIssuesForEntityByOboID(t *testing.T) {
	coords := syncerCoords(t)
	store := &memQueryStore{records: []mirror.IssueRecord{
		queryRecord(coords, "I_1", 1, []entity.OboID{"GO:0001234"}, nil),
		queryRecord(coords, "I_2", 2, nil, []entity.IRI{"http://purl.obolibrary.org/obo/GO_0001234"}),
		queryRecord(coords, "I_3", 3, []entity.OboID{"GO:0001234"}, []entity.IRI{"http://purl.obolibrary.org/obo/GO_0001234"}),
		queryRecord(coords, "I_4", 4, []entity.OboID{"CHEBI:15377"}, nil),
	}}
	service, states, _ := newTestIssuesService(t, store)
	require.NoError(t, states.SaveSyncState(context.Background(), models.NewSyncStateRecord("proj-1", coords)))

	issues, err := service.GetIssuesForEntity(context.Background(), "proj-1", "GO:0001234")
	require.NoError(t, err)

	// Matches by prefixed id and by the canonical IRI, without duplicates.
	ids := make([]string, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.NodeID)
	}
	assert.ElementsMatch(t, []string{"I_1", "I_2", "I_3"}, ids)
}

func TestGetIssuesForEntityByIRI(t *testing.T) {
	coords := syncerCoords(t)
	store := &memQueryStore{records: []mirror.IssueRecord{
		queryRecord(coords, "I_1", 1, []entity.OboID{"GO:0001234"}, nil),
		queryRecord(coords, "I_2", 2, nil, []entity.IRI{"http://example.org/vocab#term"}),
	}}
	service, states, _ := newTestIssuesService(t, store)
	require.NoError(t, states.SaveSyncState(context.Background(), models.NewSyncStateRecord("proj-1", coords)))

	issues, err := service.GetIssuesForEntity(context.Background(), "proj-1", "http://example.org/vocab#term")
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, "I_2", issues[0].NodeID)
}

func TestGetIssuesForEntityUnlinkedProject(t *testing.T) {
	service, _, _ := newTestIssuesService(t, &memQueryStore{})

	issues, err := service.GetIssuesForEntity(context.Background(), "proj-1", "GO:0001234")
	require.NoError(t, err)
	assert.Nil(t, issues)
}

func TestGetIssuesForEntityNoMatches(t *testing.T) {
	coords := syncerCoords(t)
	store := &memQueryStore{records: []mirror.IssueRecord{
		queryRecord(coords, "I_1", 1, []entity.OboID{"GO:0001234"}, nil),
	}}
	service, states, _ := newTestIssuesService(t, store)
	require.NoError(t, states.SaveSyncState(context.Background(), models.NewSyncStateRecord("proj-1", coords)))

	issues, err := service.GetIssuesForEntity(context.Background(), "proj-1", "GO:9999999")
	require.NoError(t, err)
	assert.Empty(t, issues)
}
