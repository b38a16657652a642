package syncer

import (
	"context"

	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

// EventHandler applies externally delivered change events to the local
// state: single-issue webhook updates and changes to a project's linked
// repository.
type EventHandler struct {
	manager    *Manager
	reconciler Reconciler
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(manager *Manager, reconciler Reconciler) *EventHandler {
	return &EventHandler{manager: manager, reconciler: reconciler}
}

// HandleIssueChanged merges the issues carried by a webhook event into the
// repository's mirror partition without a full refresh.
func (h *EventHandler) HandleIssueChanged(ctx context.Context, repoCoords models.RepoCoordinates, issues []models.GitHubIssue) error {
	logging.Info("handling issue change event",
		"repository", repoCoords.FullName(),
		"issues", len(issues))
	return h.reconciler.Upsert(ctx, repoCoords, issues)
}

// HandleLinkChanged resets a project's link to a new repository, or removes
// it when repoCoords is nil.
func (h *EventHandler) HandleLinkChanged(ctx context.Context, projectID models.ProjectID, repoCoords *models.RepoCoordinates) error {
	if repoCoords == nil {
		logging.Info("removing project link", "project_id", projectID)
		return h.manager.UnlinkProject(ctx, projectID)
	}
	logging.Info("relinking project", "project_id", projectID, "repository", repoCoords.FullName())
	if err := h.manager.UnlinkProject(ctx, projectID); err != nil {
		return err
	}
	return h.manager.LinkProject(ctx, projectID, *repoCoords)
}
