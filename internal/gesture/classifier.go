// Package gesture classifies per-frame hand metrics into discrete gestures
// with a confidence score, and gates that confidence into a trusted label.
package gesture

import (
	"log"
	"math"

	"github.com/ayusman/handthrottle/internal/detector"
	"gonum.org/v1/gonum/stat"
)

// Label is a discrete gesture classification.
type Label int

const (
	// LabelUncertain means the classification did not clear the
	// confidence gate. Only Smooth produces it.
	LabelUncertain Label = iota
	// LabelOpen is an open palm.
	LabelOpen
	// LabelClosed is a closed fist.
	LabelClosed
)

// String returns the label name.
func (l Label) String() string {
	switch l {
	case LabelOpen:
		return "open"
	case LabelClosed:
		return "closed"
	default:
		return "uncertain"
	}
}

// DefaultConfidenceThreshold is the minimum confidence for Smooth to
// trust a classification.
const DefaultConfidenceThreshold = 0.6

// ambiguousDistanceRatio is the fraction of hand height the mean
// fingertip-to-palm distance must exceed to call an ambiguous hand open.
const ambiguousDistanceRatio = 0.35

// Result is the outcome of classifying one frame's hand metrics.
// Gesture is LabelOpen or LabelClosed; Confidence is in [0,1].
type Result struct {
	Gesture    Label   `json:"gesture"`
	Confidence float64 `json:"confidence"`
}

// Config holds constructor-time classifier options.
type Config struct {
	// UseModel selects the trained-model strategy. When the model cannot
	// be loaded the classifier degrades to rules.
	UseModel bool
	// ModelPath is the JSON weights file for the model strategy.
	ModelPath string
}

// Classifier maps one frame's hand metrics to a gesture and confidence.
// It holds no per-frame state; the loaded model is immutable after New.
type Classifier struct {
	model *Model
}

// New creates a Classifier. A missing or unreadable model file is logged
// once and the classifier falls back to the rule-based strategy.
func New(cfg Config) *Classifier {
	c := &Classifier{}

	if cfg.UseModel {
		model, err := LoadModel(cfg.ModelPath)
		if err != nil {
			log.Printf("gesture model unavailable (%v), using rule-based classification", err)
		} else {
			c.model = model
			log.Printf("loaded gesture model from %s", cfg.ModelPath)
		}
	}

	return c
}

// UsesModel reports whether the trained-model strategy is active.
func (c *Classifier) UsesModel() bool {
	return c.model != nil
}

// Classify maps hand metrics to a gesture with a confidence score.
// Malformed metrics fail fast with an error wrapping
// detector.ErrInvalidMetrics rather than producing garbage confidence.
// A per-frame model inference failure falls back to the rules for that
// frame only and never propagates.
func (c *Classifier) Classify(m detector.Metrics) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	if c.model != nil {
		res, err := c.model.Predict(Features(m))
		if err == nil {
			return res, nil
		}
		log.Printf("model inference failed (%v), using rules for this frame", err)
	}

	return classifyWithRules(m), nil
}

// classifyWithRules classifies by counting extended non-thumb fingers.
// The thumb extension test is the least reliable, so it is excluded.
//
//   - 3+ extended: open palm
//   - 0-1 extended: closed fist
//   - exactly 2: ambiguous, decided by mean fingertip distance relative
//     to hand height, reported at fixed 0.5 confidence so the gate can
//     see the evidence is weak
func classifyWithRules(m detector.Metrics) Result {
	nonThumb := 0
	for _, extended := range m.FingersExtended[1:] {
		if extended {
			nonThumb++
		}
	}

	switch {
	case nonThumb >= 3:
		return Result{
			Gesture:    LabelOpen,
			Confidence: math.Min(1.0, 0.5+float64(nonThumb)/8.0),
		}
	case nonThumb <= 1:
		return Result{
			Gesture:    LabelClosed,
			Confidence: math.Min(1.0, 0.6+float64(4-nonThumb)/10.0),
		}
	}

	avgDistance := stat.Mean(m.FingerDistances, nil)
	if avgDistance > ambiguousDistanceRatio*m.HandHeight {
		return Result{Gesture: LabelOpen, Confidence: 0.5}
	}
	return Result{Gesture: LabelClosed, Confidence: 0.5}
}

// Smooth applies the confidence gate: confidence strictly below the
// threshold yields (LabelUncertain, false), anything else passes through
// unchanged. Confidence equal to the threshold counts as confident.
func Smooth(gesture Label, confidence, threshold float64) (Label, bool) {
	if confidence < threshold {
		return LabelUncertain, false
	}
	return gesture, true
}
