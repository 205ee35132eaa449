package detector

import (
	"errors"
	"fmt"
	"math"
)

// NumFingers is the number of fingers tracked per hand, ordered
// thumb, index, middle, ring, pinky.
const NumFingers = 5

// ErrInvalidMetrics is returned when a Metrics value fails validation.
// Callers can branch on it with errors.Is.
var ErrInvalidMetrics = errors.New("invalid hand metrics")

// Point2D is a point in the pixel space of the source frame.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Metrics holds the geometric measurements derived from one frame's hand
// landmarks. It is recomputed every frame and never persisted.
type Metrics struct {
	// PalmCenter is the palm position in pixel space (the wrist landmark).
	PalmCenter Point2D

	// FingerDistances are fingertip-to-palm Euclidean distances in pixels,
	// ordered thumb, index, middle, ring, pinky.
	FingerDistances []float64

	// FingersExtended marks each finger as extended or curled, same order.
	FingersExtended []bool

	// ExtendedCount is the number of true entries in FingersExtended.
	ExtendedCount int

	// HandWidth and HandHeight are the landmark bounding box dimensions
	// in pixels.
	HandWidth  float64
	HandHeight float64
}

// Validate checks that the metrics are usable for classification.
// A degenerate bounding box or malformed finger slices would otherwise
// surface as NaN or runaway confidence values downstream.
func (m Metrics) Validate() error {
	if len(m.FingerDistances) != NumFingers {
		return fmt.Errorf("%w: got %d finger distances, want %d", ErrInvalidMetrics, len(m.FingerDistances), NumFingers)
	}
	if len(m.FingersExtended) != NumFingers {
		return fmt.Errorf("%w: got %d finger extension flags, want %d", ErrInvalidMetrics, len(m.FingersExtended), NumFingers)
	}
	if m.HandHeight <= 0 || m.HandWidth <= 0 {
		return fmt.Errorf("%w: degenerate bounding box %gx%g", ErrInvalidMetrics, m.HandWidth, m.HandHeight)
	}
	for i, d := range m.FingerDistances {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: finger distance %d is %g", ErrInvalidMetrics, i, d)
		}
	}
	extended := 0
	for _, e := range m.FingersExtended {
		if e {
			extended++
		}
	}
	if m.ExtendedCount != extended {
		return fmt.Errorf("%w: extended count %d does not match flags (%d set)", ErrInvalidMetrics, m.ExtendedCount, extended)
	}
	return nil
}

// fingertips and their PIP joints, ordered thumb, index, middle, ring, pinky.
var (
	tipIndices = [NumFingers]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}
	pipIndices = [NumFingers]int{ThumbIP, IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
)

// ExtractMetrics computes hand metrics from detected landmarks, scaled to
// the pixel space of a frameWidth x frameHeight frame.
//
// A finger counts as extended when its tip sits above its PIP joint in
// image coordinates (lower y means higher). The thumb folds sideways
// rather than down, so it instead counts as extended when its tip is
// meaningfully farther from the thumb MCP than its IP joint is.
func ExtractMetrics(hand *HandLandmarks, frameWidth, frameHeight int) Metrics {
	fw := float64(frameWidth)
	fh := float64(frameHeight)

	px := make([]float64, NumLandmarks)
	py := make([]float64, NumLandmarks)
	for i, p := range hand.Points {
		px[i] = p.X * fw
		py[i] = p.Y * fh
	}

	palm := Point2D{X: px[Wrist], Y: py[Wrist]}

	distances := make([]float64, NumFingers)
	for i, tip := range tipIndices {
		distances[i] = distance2D(px[tip], py[tip], palm.X, palm.Y)
	}

	extended := make([]bool, NumFingers)
	tipFromMCP := distance2D(px[ThumbTip], py[ThumbTip], px[ThumbMCP], py[ThumbMCP])
	ipFromMCP := distance2D(px[ThumbIP], py[ThumbIP], px[ThumbMCP], py[ThumbMCP])
	extended[0] = tipFromMCP > ipFromMCP*0.8
	for i := 1; i < NumFingers; i++ {
		extended[i] = py[tipIndices[i]] < py[pipIndices[i]]
	}

	count := 0
	for _, e := range extended {
		if e {
			count++
		}
	}

	minX, maxX := px[0], px[0]
	minY, maxY := py[0], py[0]
	for i := 1; i < NumLandmarks; i++ {
		minX = math.Min(minX, px[i])
		maxX = math.Max(maxX, px[i])
		minY = math.Min(minY, py[i])
		maxY = math.Max(maxY, py[i])
	}

	return Metrics{
		PalmCenter:      palm,
		FingerDistances: distances,
		FingersExtended: extended,
		ExtendedCount:   count,
		HandWidth:       maxX - minX,
		HandHeight:      maxY - minY,
	}
}
