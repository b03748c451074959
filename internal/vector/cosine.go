// Package vector provides the pairwise similarity computation used to infer
// semantic edges between notes.
package vector

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
//
// Absent vectors, mismatched dimensions, and zero magnitudes are all
// "unrelated" (0), never an error. Pure and deterministic.
func Cosine(a, b []float32) float64 {
	if a == nil || b == nil {
		return 0
	}
	if len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
