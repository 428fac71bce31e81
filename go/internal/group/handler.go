package group

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/httpx"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	app *App
}

// NewHandler creates a new group handler
func NewHandler(app *App) *Handler {
	return &Handler{app: app}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{groupID}", h.Get)

	return r
}

// Create handles POST /groups
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}

	g, err := h.app.CreateGroup(r.Context(), callerID, req)
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, CreateGroupResponse{GroupID: g.ID})
}

// List handles GET /groups
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	summaries, err := h.app.ListGroups(r.Context(), callerID)
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, summaries)
}

// Get handles GET /groups/{groupID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		httpx.Unauthorized(w, "caller identity required")
		return
	}

	view, err := h.app.GetGroupView(r.Context(), callerID, chi.URLParam(r, "groupID"))
	if err != nil {
		httpx.FromError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, view)
}
