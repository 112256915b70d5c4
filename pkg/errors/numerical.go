package errors

import (
	"math"
)

// ProbEps is the probability clipping bound used throughout the likelihood
// code. Fitted probabilities are clipped into [ProbEps, 1-ProbEps] before any
// logarithm or division, so that an observation driven to a near-certain
// prediction cannot produce -Inf or NaN in the objective.
const ProbEps = 1e-12

// ClipProbability clips p into [ProbEps, 1-ProbEps].
func ClipProbability(p float64) float64 {
	if p < ProbEps {
		return ProbEps
	}
	if p > 1-ProbEps {
		return 1 - ProbEps
	}
	return p
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// StableSigmoid computes 1/(1+exp(-z)) without overflow. The branch keeps
// the exponent non-positive for either sign of z.
func StableSigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1.0 + ez)
}

// StabilizeLog computes log(max(value, ProbEps)).
func StabilizeLog(value float64) float64 {
	if value < ProbEps {
		return math.Log(ProbEps)
	}
	return math.Log(value)
}

// CheckNumericalStability returns an error if values contain NaN or Inf.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}
