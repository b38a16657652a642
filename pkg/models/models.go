// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"strings"
	"time"
)

// RepoCoordinates identifies a GitHub repository by owner and name. Values are
// comparable, so coordinates are usable directly as map keys for caches and as
// the partition key for locally mirrored issues.
type RepoCoordinates struct {
	Owner string
	Name  string
}

// NewRepoCoordinates validates and builds repository coordinates. Both parts
// must be non-empty.
func NewRepoCoordinates(owner, name string) (RepoCoordinates, error) {
	if owner == "" || name == "" {
		return RepoCoordinates{}, fmt.Errorf("invalid repository coordinates: owner=%q name=%q", owner, name)
	}
	return RepoCoordinates{Owner: owner, Name: name}, nil
}

// ParseRepoCoordinates parses coordinates from the "owner/repo" form used on
// the command line.
func ParseRepoCoordinates(repository string) (RepoCoordinates, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 {
		return RepoCoordinates{}, fmt.Errorf("invalid repository format: %q, expected format: owner/repo", repository)
	}
	return NewRepoCoordinates(parts[0], parts[1])
}

// FullName returns the repository name in "owner/repo" form.
func (c RepoCoordinates) FullName() string {
	return c.Owner + "/" + c.Name
}

func (c RepoCoordinates) String() string {
	return c.FullName()
}

// GitHubIssue represents a GitHub issue with the fields the sync engine
// consumes.
type GitHubIssue struct {
	// NodeID is GitHub's globally unique node identifier for the issue.
	NodeID string

	// Number is the issue number in GitHub (e.g., 42)
	Number int

	// Title is the issue's title or summary
	Title string

	// Body is the full body text of the issue
	Body string

	// State is the current state of the issue ("open" or "closed")
	State string

	// HTMLURL is the issue's web URL
	HTMLURL string

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the issue was last updated
	UpdatedAt time.Time

	// ClosedAt is the timestamp when the issue was closed
	ClosedAt *time.Time

	// Labels is a slice of label names attached to the issue
	Labels []string
}

// ProjectID identifies a linked project.
type ProjectID string

func (p ProjectID) String() string {
	return string(p)
}

// SyncState describes whether the local mirror for a linked project is
// current, in progress, or stale.
type SyncState string

const (
	// SyncStateNotSynced is the initial state and the target of an explicit
	// invalidation. A sync is required.
	SyncStateNotSynced SyncState = "NOT_SYNCED"
	// SyncStateSyncing marks an in-flight fetch-and-reconcile.
	SyncStateSyncing SyncState = "SYNCING"
	// SyncStateSynced marks a completed sync; it holds until invalidated.
	SyncStateSynced SyncState = "SYNCED"
)

// SyncStateRecord is the per-project sync record. One record exists per linked
// project; it is created when the project is linked to a repository and removed
// only when the link itself is removed.
type SyncStateRecord struct {
	ProjectID  ProjectID
	RepoCoords RepoCoordinates
	UpdatedAt  time.Time
	State      SyncState
}

// NewSyncStateRecord creates the record a fresh project link starts with.
func NewSyncStateRecord(projectID ProjectID, repoCoords RepoCoordinates) SyncStateRecord {
	return SyncStateRecord{
		ProjectID:  projectID,
		RepoCoords: repoCoords,
		State:      SyncStateNotSynced,
	}
}

// WithState returns a copy of the record carrying the given state.
func (r SyncStateRecord) WithState(state SyncState) SyncStateRecord {
	r.State = state
	return r
}

// InstallationToken is a scoped, time-limited credential for acting on behalf
// of a GitHub App installation.
type InstallationToken struct {
	Token       string            `json:"token"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Permissions map[string]string `json:"permissions"`
}
