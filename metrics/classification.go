// Package metrics provides evaluation metrics for binary classifiers that
// emit probabilities, such as fitted GLMs.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/pkg/errors"
)

// validateBinary checks that yTrue and yProb are the same non-zero length
// and that yTrue contains only 0 and 1.
func validateBinary(op string, yTrue, yProb *mat.VecDense) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if yProb.Len() != n {
		return errors.NewDimensionError(op, n, yProb.Len(), 0)
	}
	for i := 0; i < n; i++ {
		if v := yTrue.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be 0 or 1")
		}
	}
	return nil
}

// Accuracy is the fraction of observations whose probability, thresholded
// at 0.5, matches the true label.
func Accuracy(yTrue, yProb *mat.VecDense) (float64, error) {
	if err := validateBinary("Accuracy", yTrue, yProb); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if yProb.AtVec(i) >= 0.5 {
			pred = 1
		}
		if pred == yTrue.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// LogLoss is the mean negative log-likelihood of the labels under the
// predicted probabilities. Probabilities are clipped before the logarithms,
// matching the fitting objective, so a confident wrong prediction yields a
// large finite penalty instead of Inf.
func LogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	if err := validateBinary("LogLoss", yTrue, yProb); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipProbability(yProb.AtVec(i))
		if yTrue.AtVec(i) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}

	return sum / float64(n), nil
}

// BrierScore is the mean squared difference between the predicted
// probability and the true label. Lower is better; 0 is perfect.
func BrierScore(yTrue, yProb *mat.VecDense) (float64, error) {
	if err := validateBinary("BrierScore", yTrue, yProb); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		d := yProb.AtVec(i) - yTrue.AtVec(i)
		sum += d * d
	}

	return sum / float64(n), nil
}
