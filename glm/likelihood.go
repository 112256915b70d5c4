package glm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/pkg/errors"
)

// negLogLik evaluates the negative log-likelihood of a binomial GLM at beta.
// xaug is the intercept-augmented design matrix, n x (k+1); beta has length
// k+1. Probabilities are clipped into [ProbEps, 1-ProbEps] before the
// logarithms so that a saturated prediction cannot drive the objective to
// -Inf or NaN.
func negLogLik(y []float64, xaug *mat.Dense, beta []float64, link Link) float64 {
	n, p := xaug.Dims()

	var ll float64
	for i := 0; i < n; i++ {
		var eta float64
		for j := 0; j < p; j++ {
			eta += xaug.At(i, j) * beta[j]
		}
		pr := errors.ClipProbability(link.Probability(eta))
		ll += y[i]*math.Log(pr) + (1-y[i])*math.Log(1-pr)
	}
	return -ll
}

// negLogLikGrad writes the gradient of negLogLik at beta into grad. The
// per-observation weight is (p-y) * phi(eta) / (p(1-p)), which for the logit
// link reduces to p-y since phi = p(1-p) there. The denominator is clipped
// away from zero with the same bound used by negLogLik.
func negLogLikGrad(y []float64, xaug *mat.Dense, beta []float64, link Link, grad []float64) {
	n, p := xaug.Dims()

	for j := range grad {
		grad[j] = 0
	}

	for i := 0; i < n; i++ {
		var eta float64
		for j := 0; j < p; j++ {
			eta += xaug.At(i, j) * beta[j]
		}
		pr := errors.ClipProbability(link.Probability(eta))
		pq := math.Max(pr*(1-pr), errors.ProbEps)
		w := (pr - y[i]) * link.Density(eta) / pq

		for j := 0; j < p; j++ {
			grad[j] += w * xaug.At(i, j)
		}
	}
}
