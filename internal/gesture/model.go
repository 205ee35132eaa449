package gesture

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// Model is a trained binary logistic classifier over the Features vector.
// The positive class is LabelOpen. Inputs are standardized with the means
// and standard deviations captured at training time.
type Model struct {
	Means     []float64 `json:"means"`
	Stds      []float64 `json:"stds"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// LoadModel reads a model weights file written by Trainer or Save.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes the model weights file.
func (m *Model) Save(path string) error {
	if err := m.validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}

func (m *Model) validate() error {
	if len(m.Weights) != NumFeatures {
		return fmt.Errorf("model has %d weights, want %d", len(m.Weights), NumFeatures)
	}
	if len(m.Means) != NumFeatures || len(m.Stds) != NumFeatures {
		return fmt.Errorf("model scaler has %d/%d entries, want %d", len(m.Means), len(m.Stds), NumFeatures)
	}
	return nil
}

// Predict classifies a feature vector. Confidence is the probability of
// the predicted class. A malformed vector returns an error so the caller
// can fall back to the rule-based path.
func (m *Model) Predict(features []float64) (Result, error) {
	if len(features) != NumFeatures {
		return Result{}, fmt.Errorf("got %d features, want %d", len(features), NumFeatures)
	}

	scaled := make([]float64, NumFeatures)
	for i, f := range features {
		std := m.Stds[i]
		if std <= 0 {
			std = 1
		}
		scaled[i] = (f - m.Means[i]) / std
	}

	logit := floats.Dot(scaled, m.Weights) + m.Intercept
	pOpen := sigmoid(logit)

	if math.IsNaN(pOpen) {
		return Result{}, fmt.Errorf("inference produced NaN probability")
	}

	if pOpen >= 0.5 {
		return Result{Gesture: LabelOpen, Confidence: pOpen}, nil
	}
	return Result{Gesture: LabelClosed, Confidence: 1 - pOpen}, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
