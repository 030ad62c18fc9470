package domain

import "time"

// Repository is the versioned record of one structure: metadata, an
// optional README, and a commit history.
type Repository struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
}
