package numeric

import "math"

// #region constants

// Epsilon is the threshold below which a norm or variance is treated as zero.
const Epsilon = 1e-9

// #endregion constants

// #region scalar

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 restricts x to [0, 1].
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Lerp interpolates linearly from a to b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// #endregion scalar

// #region vector

// Zeros returns a fresh zero vector of length n.
func Zeros(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	return make([]float64, n)
}

// Clone returns a copy of v.
func Clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// PadTo returns v extended with trailing zeros to length n.
// Always returns a fresh slice, even when no padding is needed.
func PadTo(v []float64, n int) []float64 {
	if n < len(v) {
		n = len(v)
	}
	out := make([]float64, n)
	copy(out, v)
	return out
}

// Finite reports whether every element of v is a finite number.
func Finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Norm computes the L2 norm of v.
func Norm(v []float64) float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	return math.Sqrt(sumSq)
}

// Cosine computes cosine similarity between two equal-length vectors.
// Returns 0 for empty or mismatched inputs and when the product of the
// norms is smaller than Epsilon.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < Epsilon {
		return 0
	}
	return dot / denom
}

// Mean computes the arithmetic mean of v. Empty input yields 0.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// Variance computes the population variance of v. Empty input yields 0.
func Variance(v []float64) float64 {
	_, variance := MeanVariance(v)
	return variance
}

// MeanVariance computes the mean and population variance of v.
func MeanVariance(v []float64) (mean, variance float64) {
	if len(v) == 0 {
		return 0, 0
	}
	mean = Mean(v)
	for _, x := range v {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(v))
	return mean, variance
}

// #endregion vector
