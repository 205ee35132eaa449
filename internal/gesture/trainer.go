package gesture

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrainingSample is one labeled feature vector recorded during a
// labeling session. Label must be LabelOpen or LabelClosed.
type TrainingSample struct {
	Features []float64
	Label    Label
}

// Trainer fits a logistic model to recorded samples using batch gradient
// descent on standardized features.
type Trainer struct {
	LearningRate float64
	Epochs       int
}

// NewTrainer returns a Trainer with default hyperparameters.
func NewTrainer() *Trainer {
	return &Trainer{
		LearningRate: 0.1,
		Epochs:       500,
	}
}

// Train fits a model to the samples. It requires at least one sample of
// each class; a single-class dataset would push the intercept to
// infinity and the model would never disagree with itself.
func (t *Trainer) Train(samples []TrainingSample) (*Model, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	var open, closed int
	for i, s := range samples {
		if len(s.Features) != NumFeatures {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(s.Features), NumFeatures)
		}
		switch s.Label {
		case LabelOpen:
			open++
		case LabelClosed:
			closed++
		default:
			return nil, fmt.Errorf("sample %d has label %s, want open or closed", i, s.Label)
		}
	}
	if open == 0 || closed == 0 {
		return nil, fmt.Errorf("need samples of both classes, got %d open and %d closed", open, closed)
	}

	n := len(samples)

	// Per-feature standardization, captured in the model so inference
	// scales inputs identically.
	means := make([]float64, NumFeatures)
	stds := make([]float64, NumFeatures)
	column := make([]float64, n)
	for j := 0; j < NumFeatures; j++ {
		for i, s := range samples {
			column[i] = s.Features[j]
		}
		means[j] = stat.Mean(column, nil)
		stds[j] = stat.PopStdDev(column, nil)
		if stds[j] <= 0 {
			stds[j] = 1
		}
	}

	scaled := make([][]float64, n)
	targets := make([]float64, n)
	for i, s := range samples {
		row := make([]float64, NumFeatures)
		for j, f := range s.Features {
			row[j] = (f - means[j]) / stds[j]
		}
		scaled[i] = row
		if s.Label == LabelOpen {
			targets[i] = 1
		}
	}

	weights := make([]float64, NumFeatures)
	intercept := 0.0
	gradW := make([]float64, NumFeatures)

	for epoch := 0; epoch < t.Epochs; epoch++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range scaled {
			p := sigmoid(floats.Dot(row, weights) + intercept)
			residual := p - targets[i]
			for j, x := range row {
				gradW[j] += residual * x
			}
			gradB += residual
		}

		step := t.LearningRate / float64(n)
		floats.AddScaled(weights, -step, gradW)
		intercept -= step * gradB
	}

	return &Model{
		Means:     means,
		Stds:      stds,
		Weights:   weights,
		Intercept: intercept,
	}, nil
}
