package vector

import (
	"math"
	"testing"
)

func TestCosineSelfIsOne(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}
	if got := Cosine(v, v); math.Abs(got-1) > 1e-9 {
		t.Errorf("Cosine(v, v) = %v, want 1", got)
	}
}

func TestCosineZeroVector(t *testing.T) {
	v := []float32{1, 2, 3}
	zero := []float32{0, 0, 0}
	if got := Cosine(v, zero); got != 0 {
		t.Errorf("Cosine(v, zero) = %v, want 0", got)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := []float32{0.1, 0.9, -0.2}
	b := []float32{-0.4, 0.3, 0.7}
	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("Cosine not symmetric: %v vs %v", Cosine(a, b), Cosine(b, a))
	}
}

func TestCosineAbsentVectors(t *testing.T) {
	v := []float32{1, 0}
	if got := Cosine(nil, v); got != 0 {
		t.Errorf("Cosine(nil, v) = %v, want 0", got)
	}
	if got := Cosine(v, nil); got != 0 {
		t.Errorf("Cosine(v, nil) = %v, want 0", got)
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0, 0}
	if got := Cosine(a, b); got != 0 {
		t.Errorf("mismatched dims = %v, want 0", got)
	}
}

func TestCosineOpposite(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	if got := Cosine(a, b); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite vectors = %v, want -1", got)
	}
}

func TestCosineBounded(t *testing.T) {
	a := []float32{3, 4, 5}
	b := []float32{-2, 7, 1}
	got := Cosine(a, b)
	if got < -1 || got > 1 {
		t.Errorf("Cosine out of [-1, 1]: %v", got)
	}
}
