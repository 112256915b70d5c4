package glm

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/core/model"
	"github.com/YuminosukeSato/glmfit/core/parallel"
	"github.com/YuminosukeSato/glmfit/optimize"
	"github.com/YuminosukeSato/glmfit/pkg/errors"
	glmlog "github.com/YuminosukeSato/glmfit/pkg/log"
)

// Row counts at or below this threshold are processed sequentially.
const parallelThreshold = 1000

// Fit estimates a binomial GLM by maximum likelihood.
//
// y is the outcome vector with every element 0 or 1. X is the n x k design
// matrix of predictors, without an intercept column; the intercept is added
// internally as the leading term. lt selects the link function.
//
// The optimizer starts from beta = 0 and runs BFGS against the negative
// log-likelihood. Non-convergence (iteration cap, line-search failure) is
// not an error: a ConvergenceWarning is raised and the best-effort result is
// returned with its Status set accordingly. A singular Hessian likewise
// yields a result with CovarianceOK false and NaN standard errors.
//
// Errors are returned only for invalid inputs and cancellation.
func Fit(y []float64, X mat.Matrix, lt LinkType, opts ...Option) (res *FitResult, err error) {
	defer errors.Recover(&err, "glm.Fit")

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	n, k := X.Dims()

	if n == 0 || k == 0 {
		return nil, errors.NewModelError("glm.Fit", "empty design matrix", errors.ErrEmptyData)
	}
	if len(y) != n {
		return nil, errors.NewDimensionError("glm.Fit", n, len(y), 0)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, errors.NewValueError("glm.Fit",
				fmt.Sprintf("outcome must contain only 0 and 1, found %v at row %d", v, i))
		}
	}
	if err := checkColumnVariation(X); err != nil {
		return nil, err
	}

	termNames, err := buildTermNames(cfg.termNames, k)
	if err != nil {
		return nil, err
	}

	link := NewLink(lt)
	xaug := augment(X)

	slog.Debug("starting fit",
		glmlog.ModelNameKey, "BinomialGLM",
		glmlog.LinkKey, link.Name(),
		glmlog.OperationKey, "fit",
		glmlog.SamplesKey, n,
		glmlog.FeaturesKey, k,
	)

	problem := optimize.Problem{
		Func: func(beta []float64) float64 {
			return negLogLik(y, xaug, beta, link)
		},
		Grad: func(grad, beta []float64) {
			negLogLikGrad(y, xaug, beta, link, grad)
		},
	}
	settings := &optimize.Settings{
		MaxIterations:     cfg.maxIterations,
		GradientTolerance: cfg.gradTol,
		Cancel:            cfg.cancel,
	}

	optRes, err := optimize.Minimize(problem, make([]float64, k+1), settings)
	if err != nil {
		return nil, errors.Wrap(err, "glm.Fit: optimization aborted")
	}

	slog.Debug("optimization finished",
		glmlog.ModelNameKey, "BinomialGLM",
		glmlog.StatusKey, optRes.Status.String(),
		glmlog.IterationsKey, optRes.Iterations,
		glmlog.GradNormKey, floats.Norm(optRes.Gradient, 2),
		glmlog.NegLogLikKey, optRes.F,
	)

	switch optRes.Status {
	case optimize.StatusMaxIterations:
		errors.Warn(errors.NewConvergenceWarning("BFGS", optRes.Iterations, ""))
	case optimize.StatusLineSearchFailed:
		errors.Warn(errors.NewConvergenceWarning("BFGS", optRes.Iterations,
			"line search failed; returning the last good iterate"))
	}

	res = &FitResult{
		LinkName:   link.Name(),
		TermNames:  termNames,
		Estimates:  optRes.X,
		NegLogLik:  optRes.F,
		Status:     optRes.Status,
		Iterations: optRes.Iterations,
	}

	cov, covErr := covarianceAt(problem.Grad, optRes.X, cfg.hessTol)
	if covErr != nil {
		res.CovarianceOK = false
		res.CovarianceErr = covErr
		res.summarize(nil)
	} else {
		res.CovarianceOK = true
		diag := make([]float64, k+1)
		for i := range diag {
			diag[i] = cov.At(i, i)
		}
		res.summarize(diag)
	}

	res.FittedProbs = fittedProbabilities(xaug, optRes.X, link)

	return res, nil
}

// checkColumnVariation rejects predictors without variation. A constant
// column is collinear with the internally added intercept and makes the
// model non-identifiable, so it is refused up front instead of surfacing
// later as a singular Hessian.
func checkColumnVariation(X mat.Matrix) error {
	n, k := X.Dims()
	for j := 0; j < k; j++ {
		first := X.At(0, j)
		constant := true
		for i := 1; i < n; i++ {
			if X.At(i, j) != first {
				constant = false
				break
			}
		}
		if constant {
			return errors.NewValueError("glm.Fit",
				fmt.Sprintf("design-matrix column %d has no variation; drop it (the intercept is added internally)", j))
		}
	}
	return nil
}

func buildTermNames(names []string, k int) ([]string, error) {
	terms := make([]string, 0, k+1)
	terms = append(terms, "(Intercept)")

	if names == nil {
		for j := 1; j <= k; j++ {
			terms = append(terms, fmt.Sprintf("x%d", j))
		}
		return terms, nil
	}

	if len(names) != k {
		return nil, errors.NewValidationError("termNames",
			fmt.Sprintf("expected %d names, one per design-matrix column", k), len(names))
	}
	return append(terms, names...), nil
}

// augment prepends a column of ones to X. The result is built once per fit
// and not modified afterwards.
func augment(X mat.Matrix) *mat.Dense {
	n, k := X.Dims()
	xaug := mat.NewDense(n, k+1, nil)

	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			xaug.Set(i, 0, 1.0)
			for j := 0; j < k; j++ {
				xaug.Set(i, j+1, X.At(i, j))
			}
		}
	})

	return xaug
}

// fittedProbabilities evaluates link.Probability(xaug * beta) for every row.
func fittedProbabilities(xaug *mat.Dense, beta []float64, link Link) []float64 {
	n, p := xaug.Dims()
	probs := make([]float64, n)

	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			var eta float64
			for j := 0; j < p; j++ {
				eta += xaug.At(i, j) * beta[j]
			}
			probs[i] = link.Probability(eta)
		}
	})

	return probs
}

// BinomialGLM is the estimator-style wrapper around Fit, following the
// Fit/Predict/PredictProba convention.
type BinomialGLM struct {
	model.BaseEstimator

	linkType LinkType
	opts     []Option

	result    *FitResult
	nFeatures int
}

var _ model.Classifier = (*BinomialGLM)(nil)

// NewBinomialGLM creates an unfitted binomial GLM with the given link.
func NewBinomialGLM(lt LinkType, opts ...Option) *BinomialGLM {
	return &BinomialGLM{linkType: lt, opts: opts}
}

// Fit estimates the model. y must be an n x 1 matrix of 0/1 outcomes
// aligned with the rows of X.
func (m *BinomialGLM) Fit(X, y mat.Matrix) error {
	ry, cy := y.Dims()
	n, k := X.Dims()

	if cy != 1 {
		return errors.NewValueError("BinomialGLM.Fit", "y must be a column vector")
	}
	if ry != n {
		return errors.NewDimensionError("BinomialGLM.Fit", n, ry, 0)
	}

	yVec := make([]float64, ry)
	for i := 0; i < ry; i++ {
		yVec[i] = y.At(i, 0)
	}

	res, err := Fit(yVec, X, m.linkType, m.opts...)
	if err != nil {
		return err
	}

	m.result = res
	m.nFeatures = k
	m.SetFitted()
	return nil
}

// Result returns the fit result, or a NotFittedError before Fit.
func (m *BinomialGLM) Result() (*FitResult, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("BinomialGLM", "Result")
	}
	return m.result, nil
}

// PredictProba returns an n x 1 matrix of fitted probabilities P(y=1) for
// the rows of X.
func (m *BinomialGLM) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("BinomialGLM", "PredictProba")
	}

	_, k := X.Dims()
	if k != m.nFeatures {
		return nil, errors.NewDimensionError("BinomialGLM.PredictProba", m.nFeatures, k, 1)
	}

	link := NewLink(m.linkType)
	probs := fittedProbabilities(augment(X), m.result.Estimates, link)

	out := mat.NewDense(len(probs), 1, probs)
	return out, nil
}

// Predict returns an n x 1 matrix of 0/1 class labels, thresholding the
// fitted probability at 0.5.
func (m *BinomialGLM) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("BinomialGLM", "Predict")
	}

	probs, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}

	n, _ := probs.Dims()
	labels := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if probs.At(i, 0) >= 0.5 {
			labels.Set(i, 0, 1)
		}
	}
	return labels, nil
}
