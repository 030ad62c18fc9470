package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"blockbase/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver does not export a typed error for this, so match on
// the stable message fragment.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the commits table:
// 1. Add field to commitRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update commitColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Commit
// 5. Add migration in sqlite.go migrate() using addColumnIfNotExists()
// 6. Update relevant tests
//
// CRITICAL: Column order must match between:
// - commitColumns constant
// - scanArgs() return slice
// - All SELECT queries using commitColumns
//
// Same pattern applies to repos.

// repoRow holds all columns from a repository query for scanning
type repoRow struct {
	ID            string
	Name          string
	DefaultBranch string
	CreatedAt     time.Time
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match repoColumns order exactly:
// id, name, default_branch, created_at
func (r *repoRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.Name,
		&r.DefaultBranch,
		&r.CreatedAt,
	}
}

// toDomain converts the scanned row to a domain.Repository
func (r *repoRow) toDomain() *domain.Repository {
	return &domain.Repository{
		ID:            r.ID,
		Name:          r.Name,
		DefaultBranch: r.DefaultBranch,
		CreatedAt:     r.CreatedAt,
	}
}

// repoColumns is the SELECT column list for repository queries
const repoColumns = `id, name, default_branch, created_at`

// commitRow holds all columns from a commit query for scanning
type commitRow struct {
	ID          string
	RepoID      string
	Message     string
	Author      string
	Timestamp   string
	ChangesJSON sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match commitColumns order exactly:
// id, repo_id, message, author, timestamp, changes_json
func (r *commitRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.RepoID,
		&r.Message,
		&r.Author,
		&r.Timestamp,
		&r.ChangesJSON,
	}
}

// toDomain converts the scanned row to a domain.Commit. The change batch
// is decoded separately: which storage generation it comes from is the
// caller's decision.
func (r *commitRow) toDomain() *domain.Commit {
	return &domain.Commit{
		ID:        r.ID,
		RepoID:    r.RepoID,
		Message:   r.Message,
		Author:    r.Author,
		Timestamp: r.Timestamp,
	}
}

// commitColumns is the SELECT column list for commit queries
const commitColumns = `id, repo_id, message, author, timestamp, changes_json`
