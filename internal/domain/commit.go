package domain

// Commit is one atomic, ordered batch of block changes against a
// repository. Commits are immutable once stored and identified by a
// caller-chosen id that is unique across all repositories.
//
// Timestamp is caller-supplied and stored verbatim; listings order by it
// as a string, so callers are expected to submit a sortable ISO-8601
// form. It is deliberately not the insertion time.
type Commit struct {
	ID        string   `json:"id"`
	RepoID    string   `json:"repo_id"`
	Message   string   `json:"message"`
	Author    string   `json:"author"`
	Timestamp string   `json:"timestamp"`
	Changes   []Change `json:"changes,omitempty"`
}
