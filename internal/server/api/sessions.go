package api

import (
	"net/http"

	"github.com/ayusman/handthrottle/internal/store"
)

// SessionsHandler handles HTTP requests for control session telemetry.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

type sessionResponse struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at,omitempty"`
	Frames        int64  `json:"frames"`
	HandFrames    int64  `json:"hand_frames"`
	Accelerations int64  `json:"accelerations"`
	Brakes        int64  `json:"brakes"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

// ServeHTTP handles GET /api/sessions and returns all recorded sessions.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		resp := sessionResponse{
			ID:            s.ID,
			StartedAt:     s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			Frames:        s.Frames,
			HandFrames:    s.HandFrames,
			Accelerations: s.Accelerations,
			Brakes:        s.Brakes,
		}
		if s.EndedAt != nil {
			resp.EndedAt = s.EndedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		response.Sessions = append(response.Sessions, resp)
	}

	writeJSON(w, http.StatusOK, response)
}
