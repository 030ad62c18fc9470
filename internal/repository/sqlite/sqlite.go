package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blockbase/internal/domain"
	"blockbase/internal/repository"

	_ "modernc.org/sqlite"
)

// Store implements repository.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and brings the schema to
// the latest layout before returning.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection also keeps
	// :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS repos (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		default_branch TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS commits (
		id TEXT PRIMARY KEY,
		repo_id TEXT NOT NULL,
		message TEXT NOT NULL,
		author TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		FOREIGN KEY (repo_id) REFERENCES repos(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		commit_id TEXT NOT NULL,
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		pos_z INTEGER NOT NULL,
		old_state TEXT,
		new_state TEXT,
		FOREIGN KEY (commit_id) REFERENCES commits(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_commits_repo_time ON commits (repo_id, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_changes_commit ON changes (commit_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Additive migrations only: columns are added when missing, never
	// dropped, renamed, or rewritten. Existing rows stay readable.
	if err := s.addColumnIfNotExists("repos", "readme", "TEXT"); err != nil {
		return err
	}
	return s.addColumnIfNotExists("commits", "changes_json", "TEXT")
}

// addColumnIfNotExists performs one idempotent schema-evolution step.
func (s *Store) addColumnIfNotExists(table, column, colType string) error {
	exists, err := s.columnExists(table, column)
	if err != nil {
		return fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if exists {
		return nil
	}
	if _, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, colType)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// CreateRepo inserts a new repository with a server-assigned creation
// time. The id is caller-chosen; a collision reports ErrRepoExists.
func (s *Store) CreateRepo(ctx context.Context, id, name, defaultBranch string) (*domain.Repository, error) {
	repo := &domain.Repository{
		ID:            id,
		Name:          name,
		DefaultBranch: defaultBranch,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repos (id, name, default_branch, created_at)
		VALUES (?, ?, ?, ?)
	`, repo.ID, repo.Name, repo.DefaultBranch, repo.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("repository %s: %w", id, repository.ErrRepoExists)
		}
		return nil, fmt.Errorf("insert repository: %w", err)
	}

	return repo, nil
}

// GetRepo retrieves a single repository by id.
func (s *Store) GetRepo(ctx context.Context, id string) (*domain.Repository, error) {
	var row repoRow
	err := s.db.QueryRowContext(ctx, `
		SELECT `+repoColumns+` FROM repos WHERE id = ?
	`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repository %s: %w", id, repository.ErrRepoNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query repository: %w", err)
	}

	return row.toDomain(), nil
}

// ListRepos returns all repositories, newest first.
func (s *Store) ListRepos(ctx context.Context) ([]*domain.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+repoColumns+` FROM repos ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	repos := []*domain.Repository{}
	for rows.Next() {
		var row repoRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// DeleteRepo removes a repository together with every commit and legacy
// change row it owns, all in one transaction.
func (s *Store) DeleteRepo(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first: legacy change rows, then commits, then the repo.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM changes WHERE commit_id IN (SELECT id FROM commits WHERE repo_id = ?)
	`, id); err != nil {
		return fmt.Errorf("delete change rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM commits WHERE repo_id = ?`, id); err != nil {
		return fmt.Errorf("delete commits: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM repos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repository %s: %w", id, repository.ErrRepoNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetReadme returns the repository's README content. A repository with no
// README reads as an empty string, never an error.
func (s *Store) GetReadme(ctx context.Context, repoID string) (string, error) {
	var readme sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT readme FROM repos WHERE id = ?`, repoID).Scan(&readme)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("repository %s: %w", repoID, repository.ErrRepoNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query readme: %w", err)
	}
	return nullToString(readme), nil
}

// SetReadme replaces the repository's README content.
func (s *Store) SetReadme(ctx context.Context, repoID, content string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE repos SET readme = ? WHERE id = ?`, content, repoID)
	if err != nil {
		return fmt.Errorf("update readme: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repository %s: %w", repoID, repository.ErrRepoNotFound)
	}
	return nil
}

// CreateCommit ingests one commit with its serialized change batch.
// Ingestion is idempotent on the commit id: an id that is already present
// reports success without writing and without comparing payloads, so a
// retried submission is safe and the first write wins. A concurrent
// retry that slips past the existence check is absorbed the same way via
// the UNIQUE constraint on the commit id.
func (s *Store) CreateCommit(ctx context.Context, repoID string, commit *domain.Commit) error {
	batch, err := domain.EncodeChanges(commit.Changes)
	if err != nil {
		return fmt.Errorf("encode change batch: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM repos WHERE id = ?`, repoID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("repository %s: %w", repoID, repository.ErrRepoNotFound)
	}
	if err != nil {
		return fmt.Errorf("query repository: %w", err)
	}

	err = tx.QueryRowContext(ctx, `SELECT id FROM commits WHERE id = ?`, commit.ID).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query commit: %w", err)
	}

	commit.RepoID = repoID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO commits (id, repo_id, message, author, timestamp, changes_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, commit.ID, commit.RepoID, commit.Message, commit.Author, commit.Timestamp, string(batch))
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("insert commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListCommits returns the repository's commits ordered by their stored
// timestamp descending. Change batches are not loaded for listings.
func (s *Store) ListCommits(ctx context.Context, repoID string) ([]*domain.Commit, error) {
	if err := s.repoExists(ctx, repoID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo_id, message, author, timestamp
		FROM commits WHERE repo_id = ? ORDER BY timestamp DESC
	`, repoID)
	if err != nil {
		return nil, fmt.Errorf("query commits: %w", err)
	}
	defer rows.Close()

	commits := []*domain.Commit{}
	for rows.Next() {
		var row commitRow
		if err := rows.Scan(&row.ID, &row.RepoID, &row.Message, &row.Author, &row.Timestamp); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commits: %w", err)
	}

	return commits, nil
}

// GetCommit retrieves a commit and its change batch. Commits written in
// the serialized-batch generation decode from changes_json; older commits
// fall back to the legacy row-per-change table.
func (s *Store) GetCommit(ctx context.Context, repoID, commitID string) (*domain.Commit, error) {
	var row commitRow
	err := s.db.QueryRowContext(ctx, `
		SELECT `+commitColumns+` FROM commits WHERE id = ? AND repo_id = ?
	`, commitID, repoID).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("commit %s: %w", commitID, repository.ErrCommitNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query commit: %w", err)
	}

	commit := row.toDomain()
	if row.ChangesJSON.Valid {
		commit.Changes = domain.DecodeChanges([]byte(row.ChangesJSON.String))
		return commit, nil
	}

	commit.Changes, err = s.legacyChanges(ctx, commitID)
	if err != nil {
		return nil, err
	}
	return commit, nil
}

// legacyChanges reads the row-per-change storage generation, in insertion
// order.
func (s *Store) legacyChanges(ctx context.Context, commitID string) ([]domain.Change, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pos_x, pos_y, pos_z, old_state, new_state
		FROM changes WHERE commit_id = ? ORDER BY id
	`, commitID)
	if err != nil {
		return nil, fmt.Errorf("query change rows: %w", err)
	}
	defer rows.Close()

	changes := []domain.Change{}
	for rows.Next() {
		var (
			x, y, z            int
			oldState, newState sql.NullString
		)
		if err := rows.Scan(&x, &y, &z, &oldState, &newState); err != nil {
			return nil, fmt.Errorf("scan change row: %w", err)
		}
		changes = append(changes, domain.Change{
			X:          x,
			Y:          y,
			Z:          z,
			OldStateID: nullToString(oldState),
			NewStateID: nullToString(newState),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change rows: %w", err)
	}

	return changes, nil
}

func (s *Store) repoExists(ctx context.Context, repoID string) error {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM repos WHERE id = ?`, repoID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("repository %s: %w", repoID, repository.ErrRepoNotFound)
	}
	if err != nil {
		return fmt.Errorf("query repository: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
