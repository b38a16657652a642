package syncer

import (
	"context"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/internal/mirror"
	"github.com/termlink/issuemirror/pkg/models"
)

// QueryStore reads mirrored records back out of the local store.
type QueryStore interface {
	FindAllByRepo(ctx context.Context, coords models.RepoCoordinates) ([]mirror.IssueRecord, error)
	FindAllByRepoAndIRI(ctx context.Context, coords models.RepoCoordinates, iri entity.IRI) ([]mirror.IssueRecord, error)
	FindAllByRepoAndOboID(ctx context.Context, coords models.RepoCoordinates, oboID entity.OboID) ([]mirror.IssueRecord, error)
}

// IssuesService answers issue queries for linked projects, refreshing the
// local mirror first when it is stale.
type IssuesService struct {
	manager *Manager
	states  StateStore
	store   QueryStore
}

// NewIssuesService creates an IssuesService.
func NewIssuesService(manager *Manager, states StateStore, store QueryStore) *IssuesService {
	return &IssuesService{manager: manager, states: states, store: store}
}

// GetIssues lists all issues mirrored for the project's linked repository.
// An unlinked project yields an empty result.
func (s *IssuesService) GetIssues(ctx context.Context, projectID models.ProjectID) ([]models.GitHubIssue, error) {
	record, err := s.states.FindSyncState(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if err := s.manager.EnsureUpToDate(ctx, projectID); err != nil {
		return nil, err
	}
	records, err := s.store.FindAllByRepo(ctx, record.RepoCoords)
	if err != nil {
		return nil, err
	}
	return toIssues(records), nil
}

// GetIssuesForEntity lists the issues mentioning the given entity. The
// entity may be given as a prefixed id (e.g. "GO:0001234") or as an IRI; a
// prefixed id also matches records mentioning its canonical OBO library
// IRI.
func (s *IssuesService) GetIssuesForEntity(ctx context.Context, projectID models.ProjectID, entityRef string) ([]models.GitHubIssue, error) {
	record, err := s.states.FindSyncState(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if err := s.manager.EnsureUpToDate(ctx, projectID); err != nil {
		return nil, err
	}

	var records []mirror.IssueRecord
	if entity.IsOboID(entityRef) {
		byID, err := s.store.FindAllByRepoAndOboID(ctx, record.RepoCoords, entity.OboID(entityRef))
		if err != nil {
			return nil, err
		}
		records = byID
		if iri, ok := entity.ResolveOboID(entityRef); ok {
			byIRI, err := s.store.FindAllByRepoAndIRI(ctx, record.RepoCoords, iri)
			if err != nil {
				return nil, err
			}
			records = mergeRecords(records, byIRI)
		}
	} else {
		records, err = s.store.FindAllByRepoAndIRI(ctx, record.RepoCoords, entity.IRI(entityRef))
		if err != nil {
			return nil, err
		}
	}
	return toIssues(records), nil
}

// mergeRecords appends the second set to the first, dropping duplicates by
// record id.
func mergeRecords(a, b []mirror.IssueRecord) []mirror.IssueRecord {
	seen := make(map[string]bool, len(a))
	for _, r := range a {
		seen[r.ID] = true
	}
	for _, r := range b {
		if !seen[r.ID] {
			a = append(a, r)
		}
	}
	return a
}

func toIssues(records []mirror.IssueRecord) []models.GitHubIssue {
	issues := make([]models.GitHubIssue, 0, len(records))
	for _, record := range records {
		issues = append(issues, record.Issue)
	}
	return issues
}
