package gesture

import (
	"github.com/ayusman/handthrottle/internal/detector"
	"gonum.org/v1/gonum/stat"
)

// NumFeatures is the dimensionality of the model feature vector.
const NumFeatures = 8

// Features extracts the model feature vector from hand metrics. All
// features are normalized by hand height so the vector is scale-free:
//
//	[0] mean fingertip distance / height
//	[1] fingertip distance variance / height²
//	[2] aspect ratio (width / height)
//	[3..7] per-finger fingertip distance / height
//
// Callers must validate the metrics first; a zero height would poison
// every component.
func Features(m detector.Metrics) []float64 {
	h := m.HandHeight

	f := make([]float64, 0, NumFeatures)
	f = append(f, stat.Mean(m.FingerDistances, nil)/h)
	f = append(f, stat.PopVariance(m.FingerDistances, nil)/(h*h))
	f = append(f, m.HandWidth/h)
	for _, d := range m.FingerDistances {
		f = append(f, d/h)
	}
	return f
}
