package repository

import (
	"context"
	"errors"

	"blockbase/internal/domain"
)

// Sentinel errors forming the storage error taxonomy. Implementations
// wrap these with context; callers match with errors.Is.
var (
	ErrRepoNotFound   = errors.New("repository not found")
	ErrRepoExists     = errors.New("repository already exists")
	ErrCommitNotFound = errors.New("commit not found")
)

// Store defines data access for repositories and their commit logs.
type Store interface {
	// Repository directory
	CreateRepo(ctx context.Context, id, name, defaultBranch string) (*domain.Repository, error)
	GetRepo(ctx context.Context, id string) (*domain.Repository, error)
	ListRepos(ctx context.Context) ([]*domain.Repository, error)
	DeleteRepo(ctx context.Context, id string) error
	GetReadme(ctx context.Context, repoID string) (string, error)
	SetReadme(ctx context.Context, repoID, content string) error

	// Commit log
	CreateCommit(ctx context.Context, repoID string, commit *domain.Commit) error
	ListCommits(ctx context.Context, repoID string) ([]*domain.Commit, error)
	GetCommit(ctx context.Context, repoID, commitID string) (*domain.Commit, error)

	// Close releases resources
	Close() error
}
