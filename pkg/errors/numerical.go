package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewModelError(operation, "numerical instability (NaN/Inf)", nil)
		}
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewModelError(operation, "numerical instability (NaN/Inf)", nil)
	}
	return nil
}

// SafeDivide performs division, returning 0 when the denominator is 0.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ClipValue clips a value into [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClipGradient scales a gradient vector down so its L2 norm does not exceed maxNorm.
func ClipGradient(gradient []float64, maxNorm float64) []float64 {
	norm := 0.0
	for _, g := range gradient {
		norm += g * g
	}
	norm = math.Sqrt(norm)

	if norm <= maxNorm || norm == 0 {
		return gradient
	}

	scale := maxNorm / norm
	clipped := make([]float64, len(gradient))
	for i, g := range gradient {
		clipped[i] = g * scale
	}
	return clipped
}

// StabilizeLog computes log(value) with clipping away from 0 to avoid -Inf.
func StabilizeLog(value float64) float64 {
	const eps = 1e-15
	if value < eps {
		value = eps
	}
	return math.Log(value)
}

// StabilizeExp computes exp(value) with the argument clipped to avoid overflow.
func StabilizeExp(value float64) float64 {
	const maxExp = 700
	if value > maxExp {
		value = maxExp
	} else if value < -maxExp {
		value = -maxExp
	}
	return math.Exp(value)
}
