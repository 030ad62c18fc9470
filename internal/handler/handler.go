package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"blockbase/internal/domain"
	"blockbase/internal/repository"
	"blockbase/internal/service"

	"go.uber.org/zap"
)

// Handler handles the repository and commit-log API requests.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New creates a new Handler
func New(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/repos", h.createRepo)
	mux.HandleFunc("GET /api/repos", h.listRepos)
	mux.HandleFunc("GET /api/repos/{id}", h.getRepo)
	mux.HandleFunc("DELETE /api/repos/{id}", h.deleteRepo)

	mux.HandleFunc("GET /api/repos/{id}/readme", h.getReadme)
	mux.HandleFunc("PUT /api/repos/{id}/readme", h.putReadme)

	mux.HandleFunc("POST /api/repos/{id}/commits", h.createCommit)
	mux.HandleFunc("GET /api/repos/{id}/commits", h.listCommits)
	mux.HandleFunc("GET /api/repos/{id}/commits/{commitID}", h.getCommit)

	mux.HandleFunc("GET /healthz", h.health)
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type createRepoRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DefaultBranch string `json:"default_branch"`
}

type createCommitRequest struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Author    string          `json:"author"`
	Timestamp string          `json:"timestamp"`
	Changes   []domain.Change `json:"changes"`
}

type ackResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

type readmePayload struct {
	Content string `json:"content"`
}

func (h *Handler) createRepo(w http.ResponseWriter, r *http.Request) {
	var req createRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Name == "" {
		h.writeError(w, "Invalid repository", "id and name are required", http.StatusBadRequest)
		return
	}

	repo, err := h.svc.CreateRepo(r.Context(), req.ID, req.Name, req.DefaultBranch)
	if err != nil {
		h.writeServiceError(w, "create repository", err)
		return
	}

	h.writeJSON(w, repo, http.StatusCreated)
}

func (h *Handler) getRepo(w http.ResponseWriter, r *http.Request) {
	repo, err := h.svc.GetRepo(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "get repository", err)
		return
	}

	h.writeJSON(w, repo, http.StatusOK)
}

func (h *Handler) listRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.svc.ListRepos(r.Context())
	if err != nil {
		h.writeServiceError(w, "list repositories", err)
		return
	}

	h.writeJSON(w, repos, http.StatusOK)
}

func (h *Handler) deleteRepo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRepo(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "delete repository", err)
		return
	}

	h.writeJSON(w, ackResponse{OK: true}, http.StatusOK)
}

func (h *Handler) getReadme(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.GetReadme(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "get readme", err)
		return
	}

	h.writeJSON(w, readmePayload{Content: content}, http.StatusOK)
}

func (h *Handler) putReadme(w http.ResponseWriter, r *http.Request) {
	var req readmePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	repoID := r.PathValue("id")
	if err := h.svc.SetReadme(r.Context(), repoID, req.Content); err != nil {
		h.writeServiceError(w, "set readme", err)
		return
	}

	h.writeJSON(w, readmePayload{Content: req.Content}, http.StatusOK)
}

func (h *Handler) createCommit(w http.ResponseWriter, r *http.Request) {
	var req createCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		h.writeError(w, "Invalid commit", "id is required", http.StatusBadRequest)
		return
	}

	repoID := r.PathValue("id")
	commit := &domain.Commit{
		ID:        req.ID,
		Message:   req.Message,
		Author:    req.Author,
		Timestamp: req.Timestamp,
		Changes:   req.Changes,
	}
	if err := h.svc.CreateCommit(r.Context(), repoID, commit); err != nil {
		h.writeServiceError(w, "create commit", err)
		return
	}

	h.writeJSON(w, ackResponse{OK: true, ID: req.ID}, http.StatusCreated)
}

func (h *Handler) listCommits(w http.ResponseWriter, r *http.Request) {
	commits, err := h.svc.ListCommits(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "list commits", err)
		return
	}

	h.writeJSON(w, commits, http.StatusOK)
}

func (h *Handler) getCommit(w http.ResponseWriter, r *http.Request) {
	commit, err := h.svc.GetCommit(r.Context(), r.PathValue("id"), r.PathValue("commitID"))
	if err != nil {
		h.writeServiceError(w, "get commit", err)
		return
	}

	h.writeJSON(w, commit, http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, map[string]any{"ok": true, "service": "blockbase"}, http.StatusOK)
}

// writeServiceError maps the storage error taxonomy to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrRepoNotFound), errors.Is(err, repository.ErrCommitNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrRepoExists):
		h.writeError(w, "Already exists", err.Error(), http.StatusConflict)
	default:
		h.logger.Error("internal error", zap.String("op", op), zap.Error(err))
		h.writeError(w, "Internal error", err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message, details string, status int) {
	h.writeJSON(w, ErrorResponse{Error: message, Details: details}, status)
}
