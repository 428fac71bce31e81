package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for group connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleGroupConnection handles WebSocket connections for a specific group
func (h *WebSocketHandler) HandleGroupConnection(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	if groupID == "" {
		http.Error(w, "group_id is required", http.StatusBadRequest)
		return
	}

	// The member id travels as a query parameter; it identifies the
	// connection in logs and is not an authorization boundary here
	memberID := r.URL.Query().Get("member_id")
	if memberID == "" {
		memberID = "anonymous"
	}

	if err := h.connectionManager.UpgradeConnection(w, r, memberID, groupID); err != nil {
		log.Error().
			Err(err).
			Str("group_id", groupID).
			Str("member_id", memberID).
			Msg("failed to upgrade WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/group", h.HandleGroupConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
