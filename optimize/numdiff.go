package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// fdStep returns a central-difference step scaled to the magnitude of xi.
func fdStep(xi float64) float64 {
	// cbrt(machine epsilon) is the usual central-difference scaling.
	const base = 6.0554544523933429e-6
	return base * math.Max(1, math.Abs(xi))
}

// Gradient writes a central finite-difference approximation of the gradient
// of f at x into grad. x is restored before returning.
func Gradient(f func([]float64) float64, x, grad []float64) {
	for i := range x {
		xi := x[i]
		h := fdStep(xi)

		x[i] = xi + h
		fp := f(x)
		x[i] = xi - h
		fm := f(x)
		x[i] = xi

		grad[i] = (fp - fm) / (2 * h)
	}
}

// Hessian approximates the Hessian of the objective whose gradient is g,
// via central differences of the gradient, and returns the symmetrized
// result. x is restored before returning.
func Hessian(g func(grad, x []float64), x []float64) *mat.SymDense {
	n := len(x)
	gp := make([]float64, n)
	gm := make([]float64, n)

	// Raw finite-difference columns; symmetrized below since the
	// differencing error breaks exact symmetry.
	raw := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		xi := x[i]
		h := fdStep(xi)

		x[i] = xi + h
		g(gp, x)
		x[i] = xi - h
		g(gm, x)
		x[i] = xi

		for j := 0; j < n; j++ {
			raw.Set(i, j, (gp[j]-gm[j])/(2*h))
		}
	}

	hess := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			hess.SetSym(i, j, 0.5*(raw.At(i, j)+raw.At(j, i)))
		}
	}
	return hess
}
