package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/handthrottle/internal/store"
)

// Recorder controls live capture of labeled training samples.
type Recorder interface {
	StartRecording(label string) error
	StopRecording()
}

// SamplesHandler handles HTTP requests for training samples.
type SamplesHandler struct {
	store    *store.Store
	recorder Recorder
}

// NewSamplesHandler creates a new SamplesHandler. recorder may be nil
// when no live pipeline is attached; recording requests then fail.
func NewSamplesHandler(s *store.Store, recorder Recorder) *SamplesHandler {
	return &SamplesHandler{store: s, recorder: recorder}
}

// ServeHTTP implements the http.Handler interface.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.counts(w, r)
	case http.MethodPost:
		h.record(w, r)
	case http.MethodDelete:
		h.deleteAll(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type recordRequest struct {
	Action string `json:"action"` // "start" or "stop"
	Label  string `json:"label"`  // required for "start"
}

type sampleCountsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// counts handles GET /api/samples and returns per-label sample counts.
func (h *SamplesHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Samples().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}

	response := sampleCountsResponse{Counts: counts}
	for _, n := range counts {
		response.Total += n
	}
	writeJSON(w, http.StatusOK, response)
}

// record handles POST /api/samples and starts or stops live recording.
func (h *SamplesHandler) record(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "No pipeline attached")
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch req.Action {
	case "start":
		if err := h.recorder.StartRecording(req.Label); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case "stop":
		h.recorder.StopRecording()
	default:
		writeError(w, http.StatusBadRequest, "Action must be start or stop")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"action": req.Action})
}

// deleteAll handles DELETE /api/samples and clears the training set.
func (h *SamplesHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Samples().DeleteAll(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
