package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blockbase/internal/domain"
	"blockbase/internal/repository/sqlite"
	"blockbase/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.New(store, service.NewEventBus())
	mux := http.NewServeMux()
	New(svc, zap.NewNop()).Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createRepo(t *testing.T, mux *http.ServeMux, id string) {
	t.Helper()
	rec := doJSON(t, mux, "POST", "/api/repos", map[string]string{"id": id, "name": "Repo " + id})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateRepoHTTP(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, "POST", "/api/repos", map[string]string{"id": "castle", "name": "Castle Build"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var repo domain.Repository
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repo))
	assert.Equal(t, "castle", repo.ID)
	assert.Equal(t, "main", repo.DefaultBranch)
	assert.False(t, repo.CreatedAt.IsZero())

	// Duplicate id
	rec = doJSON(t, mux, "POST", "/api/repos", map[string]string{"id": "castle", "name": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing required fields
	rec = doJSON(t, mux, "POST", "/api/repos", map[string]string{"name": "No ID"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed body
	req := httptest.NewRequest("POST", "/api/repos", bytes.NewBufferString("{nope"))
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestGetAndListRepos(t *testing.T) {
	mux := newTestMux(t)
	createRepo(t, mux, "castle")

	rec := doJSON(t, mux, "GET", "/api/repos/castle", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, "GET", "/api/repos/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, "GET", "/api/repos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var repos []domain.Repository
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repos))
	assert.Len(t, repos, 1)
}

func TestDeleteRepoHTTP(t *testing.T) {
	mux := newTestMux(t)
	createRepo(t, mux, "castle")

	rec := doJSON(t, mux, "DELETE", "/api/repos/castle", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, "GET", "/api/repos/castle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, "DELETE", "/api/repos/castle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadmeHTTP(t *testing.T) {
	mux := newTestMux(t)
	createRepo(t, mux, "castle")

	rec := doJSON(t, mux, "GET", "/api/repos/castle/readme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "", body["content"])

	rec = doJSON(t, mux, "PUT", "/api/repos/castle/readme", map[string]string{"content": "hello"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, "GET", "/api/repos/castle/readme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hello", body["content"])

	rec = doJSON(t, mux, "GET", "/api/repos/nope/readme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, mux, "PUT", "/api/repos/nope/readme", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommitHTTPFlow(t *testing.T) {
	mux := newTestMux(t)
	createRepo(t, mux, "castle")

	commit := map[string]any{
		"id":        "c1",
		"message":   "walls",
		"author":    "steve",
		"timestamp": "2024-02-01T00:00:00Z",
		"changes": []map[string]any{
			{"x": 1, "y": 64, "z": -3, "new_state_id": "minecraft:stone", "type": "place"},
		},
	}

	rec := doJSON(t, mux, "POST", "/api/repos/castle/commits", commit)
	require.Equal(t, http.StatusCreated, rec.Code)
	var ack map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, true, ack["ok"])
	assert.Equal(t, "c1", ack["id"])

	// Resubmission with a different payload is an idempotent success
	commit["message"] = "different"
	rec = doJSON(t, mux, "POST", "/api/repos/castle/commits", commit)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, "GET", "/api/repos/castle/commits/c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Commit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "walls", got.Message)
	require.Len(t, got.Changes, 1)
	assert.Equal(t, domain.Change{X: 1, Y: 64, Z: -3, NewStateID: "minecraft:stone", Type: domain.ChangePlace}, got.Changes[0])

	// Unknown repository or commit
	rec = doJSON(t, mux, "POST", "/api/repos/nope/commits", commit)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, mux, "GET", "/api/repos/castle/commits/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing commit id
	rec = doJSON(t, mux, "POST", "/api/repos/castle/commits", map[string]any{"message": "no id"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCommitsHTTPOrder(t *testing.T) {
	mux := newTestMux(t)
	createRepo(t, mux, "castle")

	for i, ts := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		rec := doJSON(t, mux, "POST", "/api/repos/castle/commits", map[string]any{
			"id":        []string{"c1", "c2", "c3"}[i],
			"timestamp": ts,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, mux, "GET", "/api/repos/castle/commits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var commits []domain.Commit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commits))
	require.Len(t, commits, 3)
	assert.Equal(t, "2024-03-01", commits[0].Timestamp)
	assert.Equal(t, "2024-02-01", commits[1].Timestamp)
	assert.Equal(t, "2024-01-01", commits[2].Timestamp)
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
