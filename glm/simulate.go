package glm

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// SimulateBinomial draws n observations from a binomial GLM with the given
// true coefficients (intercept first) under link lt. Covariates are drawn
// independently from the standard normal distribution. The same seed always
// produces the same data.
//
// The returned design matrix has len(coeffs)-1 columns and does not include
// an intercept column, matching what Fit expects.
func SimulateBinomial(n int, coeffs []float64, lt LinkType, seed uint64) (*mat.Dense, []float64) {
	if n <= 0 || len(coeffs) < 2 {
		panic("glm: SimulateBinomial needs n > 0 and an intercept plus at least one slope")
	}

	k := len(coeffs) - 1
	link := NewLink(lt)
	rng := rand.New(rand.NewPCG(seed, seed))

	X := mat.NewDense(n, k, nil)
	y := make([]float64, n)

	for i := 0; i < n; i++ {
		eta := coeffs[0]
		for j := 0; j < k; j++ {
			x := rng.NormFloat64()
			X.Set(i, j, x)
			eta += coeffs[j+1] * x
		}
		if rng.Float64() < link.Probability(eta) {
			y[i] = 1
		}
	}

	return X, y
}
