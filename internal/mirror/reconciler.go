package mirror

import (
	"context"
	"fmt"

	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

// IssueStore is the keyed upsert/delete store the reconciler writes mirrored
// records to.
type IssueStore interface {
	SaveAll(ctx context.Context, records []IssueRecord) error
	DeleteAllByRepo(ctx context.Context, coords models.RepoCoordinates) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// Reconciler owns the set of mirrored records for each repository partition.
type Reconciler struct {
	translator *Translator
	store      IssueStore
}

// NewReconciler creates a Reconciler writing through the given store.
func NewReconciler(translator *Translator, store IssueStore) *Reconciler {
	return &Reconciler{translator: translator, store: store}
}

// ReplaceAll replaces the whole partition for the repository with records
// derived from the given issues: every existing record under the
// coordinates is deleted, then the full newly computed set is inserted.
// A failure part way can leave the partition empty or partially populated;
// callers signal this by keeping the surrounding sync state unresolved until
// ReplaceAll returns.
func (r *Reconciler) ReplaceAll(ctx context.Context, repoCoords models.RepoCoordinates, issues []models.GitHubIssue) error {
	records := r.translate(repoCoords, issues)

	if err := r.store.DeleteAllByRepo(ctx, repoCoords); err != nil {
		return fmt.Errorf("failed to delete mirrored issues for %s: %w", repoCoords.FullName(), err)
	}
	logging.Info("deleted all locally stored issues", "repository", repoCoords.FullName())

	if err := r.store.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("failed to store mirrored issues for %s: %w", repoCoords.FullName(), err)
	}
	logging.Info("stored issues in the local issue store",
		"repository", repoCoords.FullName(),
		"count", len(records))
	return nil
}

// Upsert merges the given issues into the partition: only the identifiers
// present in the batch are deleted and re-inserted. This is the narrow entry
// point for single-issue-changed webhook events.
func (r *Reconciler) Upsert(ctx context.Context, repoCoords models.RepoCoordinates, issues []models.GitHubIssue) error {
	logging.Info("updating issues", "repository", repoCoords.FullName(), "count", len(issues))

	ids := make([]string, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.NodeID)
	}
	if err := r.store.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete mirrored issues by id: %w", err)
	}

	records := r.translate(repoCoords, issues)
	if err := r.store.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("failed to store mirrored issues for %s: %w", repoCoords.FullName(), err)
	}
	return nil
}

func (r *Reconciler) translate(repoCoords models.RepoCoordinates, issues []models.GitHubIssue) []IssueRecord {
	records := make([]IssueRecord, 0, len(issues))
	for _, issue := range issues {
		records = append(records, r.translator.Translate(issue, repoCoords))
	}
	return records
}
