package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Line-search constants. armijoC is the sufficient-decrease constant,
// curvatureC the weak-Wolfe curvature constant; both are the conventional
// quasi-Newton choices. minStep bounds the backtracking so a hopeless
// direction terminates instead of underflowing.
const (
	armijoC    = 1e-4
	curvatureC = 0.9
	minStep    = 1e-16
)

// backtrack searches along d from x for a step satisfying the Armijo
// sufficient-decrease condition, halving from the natural quasi-Newton step
// of 1. On success it writes the accepted point into xNext and returns the
// step length and objective value there. ok is false when no acceptable step
// at or above minStep exists.
func (st *state) backtrack(x []float64, f float64, g, d []float64, xNext []float64) (step, fNext float64, ok bool) {
	gd := floats.Dot(g, d)
	if gd >= 0 {
		// Not a descent direction; nothing along it can decrease f.
		return 0, f, false
	}

	step = 1.0
	for step >= minStep {
		for i := range x {
			xNext[i] = x[i] + step*d[i]
		}
		fNext = st.eval(xNext)

		if !math.IsNaN(fNext) && fNext <= f+armijoC*step*gd {
			return step, fNext, true
		}
		step *= 0.5
	}

	return 0, f, false
}

// curvatureOK reports the weak-Wolfe curvature condition g(x+step*d)'d >=
// c2*g(x)'d. The secant update is skipped when it fails; the s'y guard
// inside the update is a second line of defense.
func curvatureOK(gNext, d []float64, gd float64) bool {
	return floats.Dot(gNext, d) >= curvatureC*gd
}
