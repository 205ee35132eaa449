package gesture

import (
	"path/filepath"
	"testing"
)

// syntheticSamples builds a linearly separable training set: open hands
// have large normalized fingertip distances, closed hands small ones.
func syntheticSamples(perClass int) []TrainingSample {
	var samples []TrainingSample

	for i := 0; i < perClass; i++ {
		jitter := float64(i) * 0.01

		open := make([]float64, NumFeatures)
		open[0] = 0.6 + jitter  // mean distance / height
		open[1] = 0.01          // variance
		open[2] = 0.9           // aspect ratio
		for j := 3; j < NumFeatures; j++ {
			open[j] = 0.55 + jitter
		}
		samples = append(samples, TrainingSample{Features: open, Label: LabelOpen})

		closed := make([]float64, NumFeatures)
		closed[0] = 0.2 - jitter
		closed[1] = 0.005
		closed[2] = 0.7
		for j := 3; j < NumFeatures; j++ {
			closed[j] = 0.18 - jitter
		}
		samples = append(samples, TrainingSample{Features: closed, Label: LabelClosed})
	}

	return samples
}

func TestTrainer_SeparatesClasses(t *testing.T) {
	samples := syntheticSamples(10)

	model, err := NewTrainer().Train(samples)
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	for i, s := range samples {
		res, err := model.Predict(s.Features)
		if err != nil {
			t.Fatalf("predict failed on sample %d: %v", i, err)
		}
		if res.Gesture != s.Label {
			t.Errorf("sample %d: predicted %s, labeled %s", i, res.Gesture, s.Label)
		}
	}
}

func TestTrainer_ModelRoundTrip(t *testing.T) {
	model, err := NewTrainer().Train(syntheticSamples(5))
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	probe := syntheticSamples(1)
	for _, s := range probe {
		want, _ := model.Predict(s.Features)
		got, err := loaded.Predict(s.Features)
		if err != nil {
			t.Fatalf("predict failed: %v", err)
		}
		if got.Gesture != want.Gesture {
			t.Error("loaded model disagrees with trained model")
		}
	}
}

func TestTrainer_RejectsBadInput(t *testing.T) {
	trainer := NewTrainer()

	if _, err := trainer.Train(nil); err == nil {
		t.Error("expected error for empty training set")
	}

	oneClass := []TrainingSample{
		{Features: make([]float64, NumFeatures), Label: LabelOpen},
		{Features: make([]float64, NumFeatures), Label: LabelOpen},
	}
	if _, err := trainer.Train(oneClass); err == nil {
		t.Error("expected error for single-class training set")
	}

	shortVec := []TrainingSample{
		{Features: []float64{1, 2}, Label: LabelOpen},
		{Features: make([]float64, NumFeatures), Label: LabelClosed},
	}
	if _, err := trainer.Train(shortVec); err == nil {
		t.Error("expected error for wrong-length feature vector")
	}

	badLabel := []TrainingSample{
		{Features: make([]float64, NumFeatures), Label: LabelUncertain},
		{Features: make([]float64, NumFeatures), Label: LabelClosed},
	}
	if _, err := trainer.Train(badLabel); err == nil {
		t.Error("expected error for uncertain label in training set")
	}
}
