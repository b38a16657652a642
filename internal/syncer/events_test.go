package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlink/issuemirror/pkg/models"
)

func TestHandleIssueChangedUpsertsIntoPartition(t *testing.T) {
	coords := syncerCoords(t)
	reconciler := newFakeReconciler()
	manager := NewManager(newMemStates(), &fakeFetcher{}, reconciler)
	handler := NewEventHandler(manager, reconciler)

	require.NoError(t, reconciler.ReplaceAll(context.Background(), coords, []models.GitHubIssue{
		{NodeID: "I_1", Number: 1, Title: "old"},
	}))

	require.NoError(t, handler.HandleIssueChanged(context.Background(), coords, []models.GitHubIssue{
		{NodeID: "I_1", Number: 1, Title: "updated"},
		{NodeID: "I_2", Number: 2, Title: "brand new"},
	}))

	partition := reconciler.partition(coords)
	require.Len(t, partition, 2)
	assert.Equal(t, "updated", partition[0].Title)
	assert.Equal(t, "brand new", partition[1].Title)
}

func TestHandleLinkChangedRemovesLink(t *testing.T) {
	states := newMemStates()
	manager := NewManager(states, &fakeFetcher{}, newFakeReconciler())
	handler := NewEventHandler(manager, newFakeReconciler())

	require.NoError(t, manager.LinkProject(context.Background(), "proj-1", syncerCoords(t)))
	require.NoError(t, handler.HandleLinkChanged(context.Background(), "proj-1", nil))

	record, err := states.FindSyncState(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestHandleLinkChangedRelinksToNewRepository(t *testing.T) {
	states := newMemStates()
	manager := NewManager(states, &fakeFetcher{}, newFakeReconciler())
	handler := NewEventHandler(manager, newFakeReconciler())

	oldCoords := syncerCoords(t)
	newCoords, err := models.NewRepoCoordinates("acme", "gadgets")
	require.NoError(t, err)

	require.NoError(t, manager.LinkProject(context.Background(), "proj-1", oldCoords))
	require.NoError(t, handler.HandleLinkChanged(context.Background(), "proj-1", &newCoords))

	record, err := states.FindSyncState(context.Background(), "proj-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, newCoords, record.RepoCoords)
	assert.Equal(t, models.SyncStateNotSynced, record.State, "a fresh link starts stale")
}
