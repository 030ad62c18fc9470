package service

import (
	"context"

	"blockbase/internal/domain"
	"blockbase/internal/repository"
)

// defaultBranch is used when a create request leaves the branch label
// empty. It is stored as metadata only.
const defaultBranch = "main"

// Service coordinates the repository directory and the commit log, and
// publishes an event for every successful mutation.
type Service struct {
	store repository.Store
	bus   *EventBus
}

// New creates a new Service
func New(store repository.Store, bus *EventBus) *Service {
	return &Service{store: store, bus: bus}
}

// CreateRepo creates a new repository record.
func (s *Service) CreateRepo(ctx context.Context, id, name, branch string) (*domain.Repository, error) {
	if branch == "" {
		branch = defaultBranch
	}

	repo, err := s.store.CreateRepo(ctx, id, name, branch)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(Event{
		Type:    EventRepoCreated,
		Payload: map[string]string{"repo_id": repo.ID},
	})
	return repo, nil
}

// GetRepo returns a single repository.
func (s *Service) GetRepo(ctx context.Context, id string) (*domain.Repository, error) {
	return s.store.GetRepo(ctx, id)
}

// ListRepos returns all repositories, newest first.
func (s *Service) ListRepos(ctx context.Context) ([]*domain.Repository, error) {
	return s.store.ListRepos(ctx)
}

// DeleteRepo removes a repository and its whole commit history.
func (s *Service) DeleteRepo(ctx context.Context, id string) error {
	if err := s.store.DeleteRepo(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(Event{
		Type:    EventRepoDeleted,
		Payload: map[string]string{"repo_id": id},
	})
	return nil
}

// GetReadme returns the repository README, empty string if unset.
func (s *Service) GetReadme(ctx context.Context, repoID string) (string, error) {
	return s.store.GetReadme(ctx, repoID)
}

// SetReadme replaces the repository README.
func (s *Service) SetReadme(ctx context.Context, repoID, content string) error {
	if err := s.store.SetReadme(ctx, repoID, content); err != nil {
		return err
	}

	s.bus.Publish(Event{
		Type:    EventReadmeUpdated,
		Payload: map[string]string{"repo_id": repoID},
	})
	return nil
}

// CreateCommit ingests one commit batch. Resubmitting an existing commit
// id succeeds without writing; the event is re-published in that case,
// which is harmless since payloads carry ids only.
func (s *Service) CreateCommit(ctx context.Context, repoID string, commit *domain.Commit) error {
	if err := s.store.CreateCommit(ctx, repoID, commit); err != nil {
		return err
	}

	s.bus.Publish(Event{
		Type: EventCommitCreated,
		Payload: map[string]string{
			"repo_id":   repoID,
			"commit_id": commit.ID,
		},
	})
	return nil
}

// ListCommits returns the repository's commits, newest first.
func (s *Service) ListCommits(ctx context.Context, repoID string) ([]*domain.Commit, error) {
	return s.store.ListCommits(ctx, repoID)
}

// GetCommit returns a commit with its change batch.
func (s *Service) GetCommit(ctx context.Context, repoID, commitID string) (*domain.Commit, error) {
	return s.store.GetCommit(ctx, repoID, commitID)
}
