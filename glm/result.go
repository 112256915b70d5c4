package glm

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/glmfit/optimize"
)

// FitResult holds the outcome of a maximum-likelihood fit. All slices are
// owned by the result and must not be mutated by callers; a result is
// immutable once returned.
//
// When CovarianceOK is false the Hessian at the optimum could not be
// inverted: StdErrs, ZScores and PValues are all NaN, CovarianceErr carries
// the cause, and the point estimates remain valid.
type FitResult struct {
	// LinkName is the display name of the link function used.
	LinkName string

	// TermNames holds "(Intercept)" followed by the predictor names in
	// design-matrix column order.
	TermNames []string

	// Estimates are the maximum-likelihood coefficient estimates, aligned
	// with TermNames.
	Estimates []float64

	// StdErrs are the asymptotic standard errors.
	StdErrs []float64

	// ZScores are Estimates / StdErrs.
	ZScores []float64

	// PValues are two-sided p-values 2*(1 - Phi(|z|)), unrounded. Rounding
	// happens only in Summary for display.
	PValues []float64

	// FittedProbs are the fitted probabilities, one per input row.
	FittedProbs []float64

	// NegLogLik is the negative log-likelihood at the estimates.
	NegLogLik float64

	// Status is the optimizer's terminal state.
	Status optimize.Status

	// Iterations is the number of optimizer iterations performed.
	Iterations int

	// CovarianceOK reports whether the covariance matrix was computed.
	CovarianceOK bool

	// CovarianceErr is the inversion failure when CovarianceOK is false.
	CovarianceErr error
}

// Converged reports whether the optimizer reached its convergence criterion.
func (r *FitResult) Converged() bool {
	return r.Status == optimize.StatusConverged
}

// summarize derives the inferential statistics from the estimates and the
// covariance diagonal. covDiag is nil when the covariance is unavailable, in
// which case every derived statistic is NaN by policy, never by accident.
func (r *FitResult) summarize(covDiag []float64) {
	p := len(r.Estimates)
	r.StdErrs = make([]float64, p)
	r.ZScores = make([]float64, p)
	r.PValues = make([]float64, p)

	if covDiag == nil {
		for i := 0; i < p; i++ {
			r.StdErrs[i] = math.NaN()
			r.ZScores[i] = math.NaN()
			r.PValues[i] = math.NaN()
		}
		return
	}

	for i := 0; i < p; i++ {
		r.StdErrs[i] = math.Sqrt(covDiag[i])
		r.ZScores[i] = r.Estimates[i] / r.StdErrs[i]
		r.PValues[i] = 2 * distuv.UnitNormal.CDF(-math.Abs(r.ZScores[i]))
	}
}

// Summary returns a formatted coefficient table. Values are rounded here
// for display only; the slices on the result stay unrounded.
func (r *FitResult) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Binomial GLM (%s link)\n", r.LinkName)
	fmt.Fprintf(&b, "Status: %s after %d iterations, neg. log-likelihood %.4f\n\n",
		r.Status, r.Iterations, r.NegLogLik)

	nameWidth := len("(Intercept)")
	for _, name := range r.TermNames {
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
	}

	fmt.Fprintf(&b, "%-*s  %10s  %10s  %8s  %8s\n",
		nameWidth, "Term", "Estimate", "Std.Error", "z value", "Pr(>|z|)")
	for i, name := range r.TermNames {
		fmt.Fprintf(&b, "%-*s  %10.4f  %10s  %8s  %8s\n",
			nameWidth, name,
			r.Estimates[i],
			fmtOrNA(r.StdErrs[i], 10, 4),
			fmtOrNA(r.ZScores[i], 8, 3),
			fmtOrNA(r.PValues[i], 8, 3))
	}

	if !r.CovarianceOK {
		fmt.Fprintf(&b, "\nStandard errors unavailable: %v\n", r.CovarianceErr)
	}

	return b.String()
}

func fmtOrNA(v float64, width, prec int) string {
	if math.IsNaN(v) {
		return fmt.Sprintf("%*s", width, "NA")
	}
	return fmt.Sprintf("%*.*f", width, prec, v)
}
