// Package rest exposes the to-do API over HTTP.
package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
}

type TaskService interface {
	List(ctx context.Context, userID int64) ([]models.Task, error)
	Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	users  UserService
	tasks  TaskService
	db     Pinger
	logger logging.Logger
}

func NewHandler(us UserService, ts TaskService, db Pinger, l logging.Logger) *Handler {
	return &Handler{users: us, tasks: ts, db: db, logger: l}
}

const taskNotFound = "Task not found"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Todo API is running!"))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	h.logger.Info(r.Context(), "user registered", "user_id", id)
	respondJSON(w, http.StatusCreated, messageResponse{Message: "User registered", ID: id})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	profile, err := h.users.Profile(r.Context(), id.UserID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	list, err := h.tasks.List(r.Context(), id.UserID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, taskNotFound)
		return
	}
	if list == nil {
		list = []models.Task{}
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var in models.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	task, err := h.tasks.Create(r.Context(), id.UserID, in)
	if err != nil {
		respondServiceError(w, r, h.logger, err, taskNotFound)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	taskID, ok := taskIDParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, taskNotFound)
		return
	}

	var patch models.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	task, err := h.tasks.Update(r.Context(), id.UserID, taskID, patch)
	if err != nil {
		respondServiceError(w, r, h.logger, err, taskNotFound)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	taskID, ok := taskIDParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, taskNotFound)
		return
	}

	if err := h.tasks.Delete(r.Context(), id.UserID, taskID); err != nil {
		respondServiceError(w, r, h.logger, err, taskNotFound)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Task deleted"})
}

// identity returns the caller set by RequireAuth. Handlers using it are only
// ever mounted behind that middleware.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

func taskIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
