package model

import "gonum.org/v1/gonum/mat"

// Fitter is an estimator that learns from a design matrix X and an outcome
// column vector y.
type Fitter interface {
	Fit(X, y mat.Matrix) error
	IsFitted() bool
}

// Predictor produces point predictions for new rows of X.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ProbabilityPredictor produces class probabilities for new rows of X.
// For binary outcomes the returned matrix is n x 1 with P(y=1).
type ProbabilityPredictor interface {
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is the full surface of a fitted classification model.
type Classifier interface {
	Fitter
	Predictor
	ProbabilityPredictor
}
