package detector

import (
	"errors"
	"math"
	"testing"
)

func validMetrics() Metrics {
	return Metrics{
		PalmCenter:      Point2D{X: 320, Y: 400},
		FingerDistances: []float64{80, 120, 130, 115, 90},
		FingersExtended: []bool{true, true, true, true, true},
		ExtendedCount:   5,
		HandWidth:       180,
		HandHeight:      240,
	}
}

func TestExtractMetrics_OpenPalm(t *testing.T) {
	hand := OpenPalmLandmarks()
	m := ExtractMetrics(&hand, 640, 480)

	if err := m.Validate(); err != nil {
		t.Fatalf("open palm metrics failed validation: %v", err)
	}

	if m.ExtendedCount != 5 {
		t.Errorf("expected 5 extended fingers for open palm, got %d", m.ExtendedCount)
	}

	// Fingertips should sit well away from the palm on an open hand.
	for i, d := range m.FingerDistances {
		if d <= 0 {
			t.Errorf("finger %d distance should be positive, got %f", i, d)
		}
	}

	if m.HandHeight <= 0 || m.HandWidth <= 0 {
		t.Errorf("expected positive bounding box, got %fx%f", m.HandWidth, m.HandHeight)
	}
}

func TestExtractMetrics_ClosedFist(t *testing.T) {
	hand := ClosedFistLandmarks()
	m := ExtractMetrics(&hand, 640, 480)

	if err := m.Validate(); err != nil {
		t.Fatalf("closed fist metrics failed validation: %v", err)
	}

	// No finger should register as extended on a fist.
	for i, extended := range m.FingersExtended {
		if extended {
			t.Errorf("finger %d should be curled on a closed fist", i)
		}
	}
	if m.ExtendedCount != 0 {
		t.Errorf("expected 0 extended fingers, got %d", m.ExtendedCount)
	}
}

func TestExtractMetrics_ScalesToFrame(t *testing.T) {
	hand := OpenPalmLandmarks()
	small := ExtractMetrics(&hand, 320, 240)
	large := ExtractMetrics(&hand, 640, 480)

	// Doubling the frame doubles every pixel-space measurement.
	if math.Abs(large.HandHeight-2*small.HandHeight) > 1e-9 {
		t.Errorf("hand height did not scale with frame: %f vs %f", small.HandHeight, large.HandHeight)
	}
	for i := range small.FingerDistances {
		if math.Abs(large.FingerDistances[i]-2*small.FingerDistances[i]) > 1e-9 {
			t.Errorf("finger %d distance did not scale with frame", i)
		}
	}
}

func TestMetricsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Metrics)
		wantErr bool
	}{
		{"valid", func(m *Metrics) {}, false},
		{"short distances", func(m *Metrics) { m.FingerDistances = m.FingerDistances[:3] }, true},
		{"short extension flags", func(m *Metrics) { m.FingersExtended = m.FingersExtended[:4] }, true},
		{"zero height", func(m *Metrics) { m.HandHeight = 0 }, true},
		{"negative width", func(m *Metrics) { m.HandWidth = -10 }, true},
		{"negative distance", func(m *Metrics) { m.FingerDistances[2] = -1 }, true},
		{"nan distance", func(m *Metrics) { m.FingerDistances[0] = math.NaN() }, true},
		{"count mismatch", func(m *Metrics) { m.ExtendedCount = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetrics()
			tt.mutate(&m)

			err := m.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, ErrInvalidMetrics) {
					t.Errorf("error should wrap ErrInvalidMetrics, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
