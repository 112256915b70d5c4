// Package glmfit is a maximum-likelihood fitting library for binary-outcome
// generalized linear models.
//
// The glm package is the entry point: it fits logit and probit models from
// an outcome vector and a design matrix, producing coefficient estimates,
// asymptotic standard errors, z-statistics, two-sided p-values, and fitted
// probabilities. The optimizer behind it is the hand-written BFGS minimizer
// in the optimize package, built as an explicit state machine so that
// convergence, iteration exhaustion, and line-search failure are observable,
// testable outcomes.
//
// Basic usage:
//
//	res, err := glm.Fit(y, X, glm.LogitLink, glm.WithTermNames("age", "income"))
//	if err != nil {
//	    // invalid input or cancellation
//	}
//	fmt.Println(res.Summary())
//
// Or through the estimator surface:
//
//	m := glm.NewBinomialGLM(glm.ProbitLink)
//	if err := m.Fit(X, y); err != nil { ... }
//	probs, err := m.PredictProba(Xnew)
//
// Degraded fits are not errors: when the iteration cap is hit or the line
// search stalls, the best iterate found is returned with the corresponding
// status and a ConvergenceWarning; when the Hessian at the optimum cannot be
// inverted, point estimates survive and the inferential statistics are
// explicitly marked unavailable.
package glmfit
