// Package syncer decides when the local issue mirror for a linked project is
// stale and drives the full fetch-and-reconcile refresh.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

// Fetcher retrieves the complete issue set of a repository.
type Fetcher interface {
	FetchAllIssues(ctx context.Context, coords models.RepoCoordinates) ([]models.GitHubIssue, error)
}

// Reconciler brings the local mirror partition in line with a fetched set.
type Reconciler interface {
	ReplaceAll(ctx context.Context, coords models.RepoCoordinates, issues []models.GitHubIssue) error
	Upsert(ctx context.Context, coords models.RepoCoordinates, issues []models.GitHubIssue) error
}

// StateStore persists the per-project sync-state records.
type StateStore interface {
	SaveSyncState(ctx context.Context, record models.SyncStateRecord) error
	FindSyncState(ctx context.Context, projectID models.ProjectID) (*models.SyncStateRecord, error)
	DeleteSyncState(ctx context.Context, projectID models.ProjectID) error
}

// Manager owns all sync-state transitions. EnsureUpToDate is safe to call
// concurrently for different projects and serializes concurrent calls for
// the same project, so at most one fetch-and-reconcile runs per project at
// a time.
type Manager struct {
	states     StateStore
	fetcher    Fetcher
	reconciler Reconciler
	now        func() time.Time

	mu           sync.Mutex
	projectLocks map[models.ProjectID]*sync.Mutex
}

// NewManager creates a Manager.
func NewManager(states StateStore, fetcher Fetcher, reconciler Reconciler) *Manager {
	return &Manager{
		states:       states,
		fetcher:      fetcher,
		reconciler:   reconciler,
		now:          time.Now,
		projectLocks: make(map[models.ProjectID]*sync.Mutex),
	}
}

// projectLock returns the mutex serializing operations on one project.
func (m *Manager) projectLock(projectID models.ProjectID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.projectLocks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		m.projectLocks[projectID] = lock
	}
	return lock
}

// LinkProject creates the sync-state record linking a project to a
// repository. It is idempotent: an existing link is left untouched.
func (m *Manager) LinkProject(ctx context.Context, projectID models.ProjectID, repoCoords models.RepoCoordinates) error {
	lock := m.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.states.FindSyncState(ctx, projectID)
	if err != nil {
		return err
	}
	if existing != nil {
		logging.Debug("project already linked",
			"project_id", projectID,
			"repository", existing.RepoCoords.FullName())
		return nil
	}

	record := models.NewSyncStateRecord(projectID, repoCoords)
	if err := m.states.SaveSyncState(ctx, record); err != nil {
		return err
	}
	logging.Info("linked project to github repository",
		"project_id", projectID,
		"repository", repoCoords.FullName())
	return nil
}

// UnlinkProject removes the link and its sync-state record.
func (m *Manager) UnlinkProject(ctx context.Context, projectID models.ProjectID) error {
	lock := m.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()
	return m.states.DeleteSyncState(ctx, projectID)
}

// Invalidate forces an existing record back to NOT_SYNCED regardless of its
// current state, so the next EnsureUpToDate performs a refresh.
func (m *Manager) Invalidate(ctx context.Context, projectID models.ProjectID) error {
	lock := m.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	record, err := m.states.FindSyncState(ctx, projectID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	return m.states.SaveSyncState(ctx, record.WithState(models.SyncStateNotSynced))
}

// EnsureUpToDate refreshes the local mirror for the project if it is stale.
// It is a no-op unless the current state is NOT_SYNCED. On success the
// record advances NOT_SYNCED -> SYNCING -> SYNCED; on failure it reverts to
// NOT_SYNCED so the next call retries.
func (m *Manager) EnsureUpToDate(ctx context.Context, projectID models.ProjectID) error {
	lock := m.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	record, err := m.states.FindSyncState(ctx, projectID)
	if err != nil {
		return err
	}
	if record == nil {
		logging.Info("no github repository linked", "project_id", projectID)
		return nil
	}
	logging.Info("found linked github repository",
		"project_id", projectID,
		"repository", record.RepoCoords.FullName(),
		"state", record.State)

	if record.State != models.SyncStateNotSynced {
		return nil
	}

	if err := m.states.SaveSyncState(ctx, record.WithState(models.SyncStateSyncing)); err != nil {
		return err
	}

	if err := m.refresh(ctx, record.RepoCoords); err != nil {
		logging.Error("unable to refresh local issue mirror",
			"project_id", projectID,
			"repository", record.RepoCoords.FullName(),
			"error", err)
		if saveErr := m.states.SaveSyncState(ctx, record.WithState(models.SyncStateNotSynced)); saveErr != nil {
			return fmt.Errorf("failed to reset sync state after refresh error %v: %w", err, saveErr)
		}
		return err
	}

	synced := record.WithState(models.SyncStateSynced)
	synced.UpdatedAt = m.now()
	return m.states.SaveSyncState(ctx, synced)
}

// refresh runs the fetch-and-reconcile pipeline for a repository.
func (m *Manager) refresh(ctx context.Context, repoCoords models.RepoCoordinates) error {
	issues, err := m.fetcher.FetchAllIssues(ctx, repoCoords)
	if err != nil {
		return err
	}
	return m.reconciler.ReplaceAll(ctx, repoCoords, issues)
}
