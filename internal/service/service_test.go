package service

import (
	"context"
	"testing"

	"blockbase/internal/domain"
	"blockbase/internal/repository"
	"blockbase/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, chan Event) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bus := NewEventBus()
	events := make(chan Event, 16)
	bus.Subscribe(events)

	return New(store, bus), events
}

func drainEvents(ch chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestCreateRepoDefaultsBranch(t *testing.T) {
	svc, _ := newTestService(t)

	repo, err := svc.CreateRepo(context.Background(), "castle", "Castle Build", "")
	require.NoError(t, err)
	assert.Equal(t, "main", repo.DefaultBranch)

	repo, err = svc.CreateRepo(context.Background(), "tower", "Tower", "trunk")
	require.NoError(t, err)
	assert.Equal(t, "trunk", repo.DefaultBranch)
}

func TestMutationEvents(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRepo(ctx, "castle", "Castle Build", "main")
	require.NoError(t, err)

	require.NoError(t, svc.SetReadme(ctx, "castle", "# Castle"))

	commit := &domain.Commit{ID: "c1", Timestamp: "2024-01-01", Changes: []domain.Change{{X: 1, Y: 2, Z: 3}}}
	require.NoError(t, svc.CreateCommit(ctx, "castle", commit))

	require.NoError(t, svc.DeleteRepo(ctx, "castle"))

	got := drainEvents(events)
	require.Len(t, got, 4)
	assert.Equal(t, EventRepoCreated, got[0].Type)
	assert.Equal(t, EventReadmeUpdated, got[1].Type)
	assert.Equal(t, EventCommitCreated, got[2].Type)
	assert.Equal(t, EventRepoDeleted, got[3].Type)

	payload, ok := got[2].Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "castle", payload["repo_id"])
	assert.Equal(t, "c1", payload["commit_id"])
}

func TestNoEventOnFailedMutation(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	err := svc.CreateCommit(ctx, "nope", &domain.Commit{ID: "c1"})
	assert.ErrorIs(t, err, repository.ErrRepoNotFound)

	err = svc.DeleteRepo(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrRepoNotFound)

	assert.Empty(t, drainEvents(events))
}

func TestCommitFlowThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRepo(ctx, "castle", "Castle Build", "main")
	require.NoError(t, err)

	changes := []domain.Change{{X: 1, Y: 2, Z: 3, NewStateID: "minecraft:stone", Type: domain.ChangePlace}}
	require.NoError(t, svc.CreateCommit(ctx, "castle", &domain.Commit{ID: "c1", Timestamp: "2024-01-01", Changes: changes}))

	got, err := svc.GetCommit(ctx, "castle", "c1")
	require.NoError(t, err)
	assert.Equal(t, changes, got.Changes)

	commits, err := svc.ListCommits(ctx, "castle")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "c1", commits[0].ID)
}
