package glm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/optimize"
	"github.com/YuminosukeSato/glmfit/pkg/errors"
)

// covarianceAt estimates the asymptotic covariance of the parameter
// estimates as the inverse of the negative log-likelihood Hessian at beta.
// The Hessian is approximated by finite differences of the analytic
// gradient. A singular or ill-conditioned Hessian yields a
// SingularMatrixError rather than a matrix of garbage values.
func covarianceAt(gradFn func(grad, x []float64), beta []float64, tol float64) (*mat.SymDense, error) {
	hess := optimize.Hessian(gradFn, beta)
	cov, err := invertTolerant(hess, tol)
	if err != nil {
		return nil, err
	}

	// A negative variance means the Hessian was not positive definite at
	// the returned iterate, which happens when the optimizer stopped short
	// of a true minimum. Report it instead of letting sqrt produce NaN
	// downstream.
	n := cov.SymmetricDim()
	for i := 0; i < n; i++ {
		if cov.At(i, i) < 0 {
			return nil, errors.NewModelError("glm.covariance",
				"Hessian is not positive definite at the returned estimates", errors.ErrSingularMatrix)
		}
	}
	return cov, nil
}

// invertTolerant inverts a symmetric matrix through its SVD, rejecting it
// when the reciprocal condition number (smallest over largest singular
// value) does not exceed tol.
func invertTolerant(h *mat.SymDense, tol float64) (*mat.SymDense, error) {
	n := h.SymmetricDim()

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return nil, errors.NewSingularMatrixError("glm.covariance", 0, tol)
	}

	vals := svd.Values(nil)
	smax := vals[0]
	smin := vals[n-1]
	if smax == 0 {
		return nil, errors.NewSingularMatrixError("glm.covariance", 0, tol)
	}
	rcond := smin / smax
	if rcond <= tol {
		return nil, errors.NewSingularMatrixError("glm.covariance", rcond, tol)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// inv(H) = V * diag(1/s) * U'.
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			scaled.Set(i, j, v.At(i, j)/vals[j])
		}
	}
	var inv mat.Dense
	inv.Mul(scaled, u.T())

	// The inverse of a symmetric matrix is symmetric up to rounding;
	// average the off-diagonal pairs.
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, 0.5*(inv.At(i, j)+inv.At(j, i)))
		}
	}
	return cov, nil
}
