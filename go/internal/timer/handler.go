package timer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/httpx"
	"github.com/grouptick/grouptick/go/internal/models"
)

// Handler handles HTTP requests for timer operations, mounted under a group
type Handler struct {
	app *App
}

// NewHandler creates a new timer handler
func NewHandler(app *App) *Handler {
	return &Handler{app: app}
}

// Routes returns the router for timer endpoints. It expects to be mounted
// under /groups/{groupID}/timers.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/{timerID}/pause", h.Pause)
	r.Post("/{timerID}/resume", h.Resume)
	r.Post("/{timerID}/reset", h.Reset)
	r.Post("/{timerID}/add-time", h.AddTime)
	r.Delete("/{timerID}", h.Delete)

	return r
}

// Create handles POST /groups/{groupID}/timers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	var req CreateTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.app.CreateTimer(r.Context(), callerID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, t)
}

// List handles GET /groups/{groupID}/timers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	timers, err := h.app.ListTimers(r.Context(), callerID, chi.URLParam(r, "groupID"))
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, timers)
}

// Pause handles POST /groups/{groupID}/timers/{timerID}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.instantOp(w, r, h.app.PauseTimer)
}

// Resume handles POST /groups/{groupID}/timers/{timerID}/resume
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.instantOp(w, r, h.app.ResumeTimer)
}

// Reset handles POST /groups/{groupID}/timers/{timerID}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.instantOp(w, r, h.app.ResetTimer)
}

// AddTime handles POST /groups/{groupID}/timers/{timerID}/add-time
func (h *Handler) AddTime(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	t, err := h.app.AddTime(r.Context(), callerID, chi.URLParam(r, "groupID"), chi.URLParam(r, "timerID"))
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, t)
}

// Delete handles DELETE /groups/{groupID}/timers/{timerID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	if err := h.app.DeleteTimer(r.Context(), callerID, chi.URLParam(r, "groupID"), chi.URLParam(r, "timerID")); err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, nil)
}

type instantOpFunc func(ctx context.Context, callerID, groupID, timerID string, req InstantRequest) (*models.Timer, error)

// instantOp handles the shared shape of pause/resume/reset: an optional
// client instant in the body, a timer back out.
func (h *Handler) instantOp(w http.ResponseWriter, r *http.Request, op instantOpFunc) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	var req InstantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httpx.BadRequest(w, "invalid request body")
		return
	}

	t, err := op(r.Context(), callerID, chi.URLParam(r, "groupID"), chi.URLParam(r, "timerID"), req)
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, t)
}
