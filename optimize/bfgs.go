// Package optimize implements the quasi-Newton (BFGS) minimizer driving all
// model fitting in glmfit. It is written as an explicit state machine:
// convergence, iteration exhaustion, line-search failure, and cancellation
// are first-class terminal statuses carried on the result, not hidden
// library internals. The minimizer never returns a worse point than the best
// iterate it has seen.
package optimize

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/pkg/errors"
)

// Problem describes an unconstrained minimization problem.
type Problem struct {
	// Func evaluates the objective at x. Required.
	Func func(x []float64) float64

	// Grad writes the gradient of the objective at x into grad.
	// Optional; when nil, a central finite-difference approximation is used.
	Grad func(grad, x []float64)
}

// Settings configures a Minimize call. The zero value selects the defaults.
type Settings struct {
	// MaxIterations caps the number of BFGS iterations. Default 100000.
	MaxIterations int

	// GradientTolerance terminates the search once the Euclidean norm of the
	// gradient falls below it. Default 1e-8.
	GradientTolerance float64

	// Cancel, when non-nil, is checked once per iteration. A non-nil return
	// stops the search with StatusCancelled and the best iterate found.
	Cancel func() error
}

const (
	defaultMaxIterations     = 100000
	defaultGradientTolerance = 1e-8
)

// Status is the terminal state of a minimization.
type Status int

const (
	// NotTerminated is the in-progress state; it never appears on a result.
	NotTerminated Status = iota
	// StatusConverged means the gradient norm fell below the tolerance.
	StatusConverged
	// StatusMaxIterations means the iteration cap was reached first.
	StatusMaxIterations
	// StatusLineSearchFailed means no acceptable step existed along the
	// search direction. The last good iterate is retained.
	StatusLineSearchFailed
	// StatusCancelled means the Cancel hook requested a stop.
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case NotTerminated:
		return "NotTerminated"
	case StatusConverged:
		return "Converged"
	case StatusMaxIterations:
		return "MaxIterationsReached"
	case StatusLineSearchFailed:
		return "LineSearchFailed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Result holds the outcome of a minimization.
type Result struct {
	// X is the best iterate found.
	X []float64

	// F is the objective value at X.
	F float64

	// Gradient is the objective gradient at X.
	Gradient []float64

	// Status is the terminal state of the search.
	Status Status

	// Iterations is the number of BFGS iterations performed.
	Iterations int

	// FuncEvaluations counts objective evaluations, including those made by
	// the line search and by finite differencing.
	FuncEvaluations int
}

// Minimize runs BFGS from x0. It returns an error only for unusable inputs
// or a cancellation; degraded terminations (iteration cap, line-search
// failure) are reported through Result.Status with the best iterate found.
func Minimize(p Problem, x0 []float64, s *Settings) (*Result, error) {
	if p.Func == nil {
		return nil, errors.NewValueError("optimize.Minimize", "Problem.Func must not be nil")
	}
	if len(x0) == 0 {
		return nil, errors.NewValueError("optimize.Minimize", "x0 must not be empty")
	}

	if s == nil {
		s = &Settings{}
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	gradTol := s.GradientTolerance
	if gradTol <= 0 {
		gradTol = defaultGradientTolerance
	}

	n := len(x0)

	st := newState(p)

	x := make([]float64, n)
	copy(x, x0)
	f := st.eval(x)
	g := make([]float64, n)
	st.grad(g, x)

	// Best iterate seen so far; returned on any non-converged termination.
	bestX := make([]float64, n)
	copy(bestX, x)
	bestF := f
	bestG := make([]float64, n)
	copy(bestG, g)

	// Inverse-Hessian approximation, started at the identity.
	invH := identity(n)

	d := make([]float64, n)
	xNext := make([]float64, n)
	gNext := make([]float64, n)
	sVec := make([]float64, n)
	yVec := make([]float64, n)

	finish := func(status Status) *Result {
		return &Result{
			X:               bestX,
			F:               bestF,
			Gradient:        bestG,
			Status:          status,
			Iterations:      st.iter,
			FuncEvaluations: st.evals,
		}
	}

	for {
		if floats.Norm(g, 2) < gradTol {
			// The current iterate is the optimum by our criterion; it is
			// also the best seen since every accepted step decreased f.
			copy(bestX, x)
			bestF = f
			copy(bestG, g)
			return finish(StatusConverged), nil
		}

		if st.iter >= maxIter {
			return finish(StatusMaxIterations), nil
		}

		if s.Cancel != nil {
			if cerr := s.Cancel(); cerr != nil {
				return finish(StatusCancelled), errors.Wrap(cerr, "optimize.Minimize: cancelled")
			}
		}

		// Search direction d = -invH * g.
		mulVec(d, invH, g)
		floats.Scale(-1, d)

		// A quasi-Newton direction can lose descent when the curvature
		// approximation degrades; fall back to steepest descent.
		gd := floats.Dot(g, d)
		if gd >= 0 {
			identityInto(invH)
			copy(d, g)
			floats.Scale(-1, d)
			gd = floats.Dot(g, d)
		}

		step, fNext, ok := st.backtrack(x, f, g, d, xNext)
		if !ok {
			return finish(StatusLineSearchFailed), nil
		}

		st.grad(gNext, xNext)

		// s = step*d, y = gNext - g.
		copy(sVec, d)
		floats.Scale(step, sVec)
		copy(yVec, gNext)
		floats.Sub(yVec, g)

		// Skip the secant update when the curvature condition does not
		// hold; updating would break positive definiteness of invH.
		if curvatureOK(gNext, d, gd) {
			updateInverseHessian(invH, sVec, yVec)
		}

		copy(x, xNext)
		f = fNext
		copy(g, gNext)
		st.iter++

		if f < bestF {
			bestF = f
			copy(bestX, x)
			copy(bestG, g)
		}
	}
}

// state carries the evaluation counters and the gradient strategy for one
// Minimize call.
type state struct {
	p     Problem
	iter  int
	evals int
}

func newState(p Problem) *state {
	return &state{p: p}
}

func (st *state) eval(x []float64) float64 {
	st.evals++
	return st.p.Func(x)
}

func (st *state) grad(grad, x []float64) {
	if st.p.Grad != nil {
		st.p.Grad(grad, x)
		return
	}
	st.evals += 2 * len(x)
	Gradient(st.p.Func, x, grad)
}

// updateInverseHessian applies the BFGS rank-two secant update
//
//	H <- H + (s'y + y'Hy)/(s'y)^2 * s s' - (H y s' + s y' H)/(s'y)
//
// in place. The update is skipped when the curvature s'y is too small to
// keep H positive definite.
func updateInverseHessian(invH *mat.Dense, s, y []float64) {
	n := len(s)

	sy := floats.Dot(s, y)
	if sy <= 1e-10*floats.Norm(s, 2)*floats.Norm(y, 2) {
		return
	}

	hy := make([]float64, n)
	mulVec(hy, invH, y)
	yhy := floats.Dot(y, hy)

	c1 := (sy + yhy) / (sy * sy)
	c2 := 1 / sy

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := invH.At(i, j)
			v += c1 * s[i] * s[j]
			v -= c2 * (hy[i]*s[j] + s[i]*hy[j])
			invH.Set(i, j, v)
		}
	}
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func identityInto(m *mat.Dense) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				m.Set(i, j, 1)
			} else {
				m.Set(i, j, 0)
			}
		}
	}
}

// mulVec writes m*v into dst without allocating a mat.VecDense per call.
func mulVec(dst []float64, m *mat.Dense, v []float64) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < len(v); j++ {
			sum += m.At(i, j) * v[j]
		}
		dst[i] = sum
	}
}
