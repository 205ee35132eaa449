package api

import (
	"log"
	"net/http"

	"github.com/ayusman/handthrottle/internal/gesture"
	"github.com/ayusman/handthrottle/internal/store"
)

// TrainHandler trains the gesture model from stored samples.
type TrainHandler struct {
	store     *store.Store
	modelPath string
}

// NewTrainHandler creates a new TrainHandler. The trained model is
// written to modelPath.
func NewTrainHandler(s *store.Store, modelPath string) *TrainHandler {
	return &TrainHandler{store: s, modelPath: modelPath}
}

type trainResponse struct {
	Samples   int     `json:"samples"`
	Open      int     `json:"open"`
	Closed    int     `json:"closed"`
	Accuracy  float64 `json:"accuracy"`
	ModelPath string  `json:"model_path"`
}

// ServeHTTP handles POST /api/train.
func (h *TrainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.modelPath == "" {
		writeError(w, http.StatusServiceUnavailable, "No model path configured")
		return
	}

	stored, err := h.store.Samples().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load samples")
		return
	}

	samples := make([]gesture.TrainingSample, 0, len(stored))
	var open, closed int
	for _, s := range stored {
		var label gesture.Label
		switch s.Label {
		case "open":
			label = gesture.LabelOpen
			open++
		case "closed":
			label = gesture.LabelClosed
			closed++
		default:
			continue
		}
		samples = append(samples, gesture.TrainingSample{Features: s.Features, Label: label})
	}

	model, err := gesture.NewTrainer().Train(samples)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := model.Save(h.modelPath); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save model")
		return
	}

	// Training-set accuracy, as a sanity signal for the UI.
	correct := 0
	for _, s := range samples {
		result, err := model.Predict(s.Features)
		if err == nil && result.Gesture == s.Label {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(samples))

	log.Printf("Trained model on %d samples (%.1f%% training accuracy)", len(samples), accuracy*100)

	writeJSON(w, http.StatusOK, trainResponse{
		Samples:   len(samples),
		Open:      open,
		Closed:    closed,
		Accuracy:  accuracy,
		ModelPath: h.modelPath,
	})
}
