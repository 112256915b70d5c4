package glm

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/optimize"
	"github.com/YuminosukeSato/glmfit/pkg/errors"
)

// silenceWarnings suppresses the process-wide warning handler for the
// duration of a test that exercises degraded terminations.
func silenceWarnings(t *testing.T) *[]error {
	t.Helper()
	var captured []error
	errors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
	return &captured
}

func TestFitToyExampleSmoke(t *testing.T) {
	// Minimal single-predictor fit: must converge and produce finite,
	// in-range output. The slope sign is deliberately not asserted; the
	// toy data's correlation is too weak to pin it down.
	y := []float64{0, 1, 1, 0}
	X := mat.NewDense(4, 1, []float64{-1, 1, 2, -2})

	res, err := Fit(y, X, LogitLink)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if res.Status != optimize.StatusConverged {
		t.Errorf("status = %v, want Converged", res.Status)
	}
	if len(res.Estimates) != 2 {
		t.Fatalf("got %d estimates, want 2", len(res.Estimates))
	}
	for i, est := range res.Estimates {
		if math.IsNaN(est) || math.IsInf(est, 0) {
			t.Errorf("estimate[%d] = %v, want finite", i, est)
		}
	}
	for i, p := range res.FittedProbs {
		if p <= 0 || p >= 1 {
			t.Errorf("fitted prob[%d] = %v, want strictly inside (0,1)", i, p)
		}
	}
}

func TestFitRecoversKnownCoefficients(t *testing.T) {
	// Simulate from a known logit model and check the estimates fall within
	// a small multiple of their own standard errors of the truth.
	truth := []float64{0.1, 0.2, -0.05, 0.3, 0.95}
	X, y := SimulateBinomial(1000, truth, LogitLink, 42)

	res, err := Fit(y, X, LogitLink, WithTermNames("sex", "age", "edu", "party"))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if res.Status != optimize.StatusConverged {
		t.Fatalf("status = %v, want Converged", res.Status)
	}
	if !res.CovarianceOK {
		t.Fatalf("covariance unavailable: %v", res.CovarianceErr)
	}

	for i, want := range truth {
		got := res.Estimates[i]
		se := res.StdErrs[i]
		if se <= 0 || math.IsNaN(se) {
			t.Fatalf("std error[%d] = %v, want positive", i, se)
		}
		if math.Abs(got-want) > 4*se {
			t.Errorf("%s: estimate %v too far from truth %v (se %v)",
				res.TermNames[i], got, want, se)
		}
	}
}

func TestFitInferentialRanges(t *testing.T) {
	X, y := SimulateBinomial(400, []float64{-0.2, 0.8, 0.5}, LogitLink, 7)

	res, err := Fit(y, X, LogitLink)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !res.CovarianceOK {
		t.Fatalf("covariance unavailable: %v", res.CovarianceErr)
	}

	for i := range res.Estimates {
		if res.StdErrs[i] < 0 {
			t.Errorf("std error[%d] = %v, want non-negative", i, res.StdErrs[i])
		}
		if res.PValues[i] < 0 || res.PValues[i] > 1 {
			t.Errorf("p-value[%d] = %v, out of [0,1]", i, res.PValues[i])
		}
	}
	for i, p := range res.FittedProbs {
		if p <= 0 || p >= 1 {
			t.Errorf("fitted prob[%d] = %v, want strictly inside (0,1)", i, p)
		}
	}
}

func TestFitDeterminism(t *testing.T) {
	X, y := SimulateBinomial(300, []float64{0.3, -0.7, 1.1}, LogitLink, 99)

	r1, err := Fit(y, X, LogitLink)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Fit(y, X, LogitLink)
	if err != nil {
		t.Fatal(err)
	}

	if r1.Iterations != r2.Iterations || r1.NegLogLik != r2.NegLogLik {
		t.Errorf("runs differ: (%d, %v) vs (%d, %v)",
			r1.Iterations, r1.NegLogLik, r2.Iterations, r2.NegLogLik)
	}
	for i := range r1.Estimates {
		if r1.Estimates[i] != r2.Estimates[i] {
			t.Errorf("estimate[%d] differs: %v vs %v", i, r1.Estimates[i], r2.Estimates[i])
		}
		if r1.StdErrs[i] != r2.StdErrs[i] {
			t.Errorf("std error[%d] differs: %v vs %v", i, r1.StdErrs[i], r2.StdErrs[i])
		}
	}
}

func TestLogitProbitThresholdAgreement(t *testing.T) {
	// The two links parameterize similar decision boundaries; on
	// well-separated data their 0.5-threshold classifications should agree
	// for the large majority of observations.
	X, y := SimulateBinomial(400, []float64{0, 3}, LogitLink, 11)

	logitRes, err := Fit(y, X, LogitLink)
	if err != nil {
		t.Fatal(err)
	}
	probitRes, err := Fit(y, X, ProbitLink)
	if err != nil {
		t.Fatal(err)
	}

	agree := 0
	for i := range logitRes.FittedProbs {
		a := logitRes.FittedProbs[i] >= 0.5
		b := probitRes.FittedProbs[i] >= 0.5
		if a == b {
			agree++
		}
	}
	if frac := float64(agree) / float64(len(y)); frac < 0.9 {
		t.Errorf("threshold agreement %v, want >= 0.9", frac)
	}
}

func TestFitRejectsConstantColumn(t *testing.T) {
	y := []float64{0, 1, 0, 1}
	X := mat.NewDense(4, 2, []float64{
		1.0, 5,
		-0.5, 5,
		0.3, 5,
		2.0, 5,
	})

	_, err := Fit(y, X, LogitLink)
	if err == nil {
		t.Fatal("constant column not rejected")
	}
	var ve *errors.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "no variation") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestFitInvalidInputs(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{-1, 0, 1})

	t.Run("row mismatch", func(t *testing.T) {
		_, err := Fit([]float64{0, 1}, X, LogitLink)
		var de *errors.DimensionError
		if !errors.As(err, &de) {
			t.Fatalf("expected DimensionError, got %T: %v", err, err)
		}
	})

	t.Run("non-binary outcome", func(t *testing.T) {
		_, err := Fit([]float64{0, 1, 2}, X, LogitLink)
		var ve *errors.ValueError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValueError, got %T: %v", err, err)
		}
	})

	t.Run("wrong term name count", func(t *testing.T) {
		_, err := Fit([]float64{0, 1, 1}, X, LogitLink, WithTermNames("a", "b"))
		var ve *errors.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %T: %v", err, err)
		}
	})
}

func TestFitSingularHessianMarksCovariance(t *testing.T) {
	silenceWarnings(t)

	// Exactly collinear predictors: each column varies, so validation
	// passes, but the Hessian at the optimum is singular. Point estimates
	// must still come back, with every inferential statistic explicitly NaN
	// and the failure recorded.
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i%7) - 3
		X.Set(i, 0, v)
		X.Set(i, 1, 2*v)
		if i%3 == 0 {
			y[i] = 1
		}
	}

	res, err := Fit(y, X, LogitLink, WithHessianSolveTolerance(1e-9))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if res.CovarianceOK {
		t.Fatal("covariance reported OK for a singular Hessian")
	}
	if res.CovarianceErr == nil {
		t.Fatal("CovarianceErr not set")
	}
	for i := range res.Estimates {
		if math.IsNaN(res.Estimates[i]) {
			t.Errorf("estimate[%d] is NaN, point estimates must survive", i)
		}
		if !math.IsNaN(res.StdErrs[i]) || !math.IsNaN(res.ZScores[i]) || !math.IsNaN(res.PValues[i]) {
			t.Errorf("inferential statistics at %d not marked NaN", i)
		}
	}
}

func TestFitMaxIterationsBestEffort(t *testing.T) {
	captured := silenceWarnings(t)

	X, y := SimulateBinomial(200, []float64{0.2, 1.5}, LogitLink, 5)

	res, err := Fit(y, X, LogitLink, WithMaxIterations(2))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if res.Status != optimize.StatusMaxIterations {
		t.Errorf("status = %v, want MaxIterationsReached", res.Status)
	}
	for i, est := range res.Estimates {
		if math.IsNaN(est) {
			t.Errorf("estimate[%d] is NaN; best iterate must be returned", i)
		}
	}

	found := false
	for _, w := range *captured {
		var cw *errors.ConvergenceWarning
		if errors.As(w, &cw) {
			found = true
		}
	}
	if !found {
		t.Error("no ConvergenceWarning raised")
	}
}

func TestFitCancel(t *testing.T) {
	X, y := SimulateBinomial(200, []float64{0.2, 1.5}, LogitLink, 5)

	cancelErr := errors.New("context deadline exceeded")
	_, err := Fit(y, X, LogitLink, WithCancel(func() error { return cancelErr }))
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, cancelErr) {
		t.Errorf("error %v does not wrap the cancel cause", err)
	}
}

func TestFitTermNames(t *testing.T) {
	X, y := SimulateBinomial(100, []float64{0, 0.5, -0.5}, LogitLink, 3)

	res, err := Fit(y, X, LogitLink, WithTermNames("age", "income"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"(Intercept)", "age", "income"}
	for i, name := range want {
		if res.TermNames[i] != name {
			t.Errorf("term[%d] = %q, want %q", i, res.TermNames[i], name)
		}
	}
}

func TestFitSummaryFormatting(t *testing.T) {
	X, y := SimulateBinomial(150, []float64{0.1, 0.9}, ProbitLink, 21)

	res, err := Fit(y, X, ProbitLink, WithTermNames("score"))
	if err != nil {
		t.Fatal(err)
	}

	s := res.Summary()
	for _, want := range []string{"Probit", "(Intercept)", "score", "Std.Error", "Pr(>|z|)"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestBinomialGLMEstimator(t *testing.T) {
	X, y := SimulateBinomial(300, []float64{0, 2}, LogitLink, 13)
	yCol := mat.NewDense(len(y), 1, y)

	m := NewBinomialGLM(LogitLink)

	if _, err := m.Predict(X); err == nil {
		t.Error("Predict before Fit must fail")
	}
	var nfe *errors.NotFittedError
	_, err := m.PredictProba(X)
	if !errors.As(err, &nfe) {
		t.Errorf("expected NotFittedError, got %T: %v", err, err)
	}

	if err := m.Fit(X, yCol); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !m.IsFitted() {
		t.Error("estimator not marked fitted")
	}

	res, err := m.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if !res.Converged() {
		t.Errorf("status = %v, want Converged", res.Status)
	}

	probs, err := m.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	labels, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	n, _ := probs.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		p := probs.At(i, 0)
		if p <= 0 || p >= 1 {
			t.Errorf("prob[%d] = %v, out of (0,1)", i, p)
		}
		l := labels.At(i, 0)
		if l != 0 && l != 1 {
			t.Errorf("label[%d] = %v, want 0 or 1", i, l)
		}
		if l == y[i] {
			correct++
		}
	}
	// Slope 2 separates well; training accuracy should be comfortably
	// above chance.
	if acc := float64(correct) / float64(n); acc < 0.7 {
		t.Errorf("training accuracy %v, want >= 0.7", acc)
	}
}

func TestBinomialGLMValidation(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{-1, 0, 1})

	m := NewBinomialGLM(LogitLink)

	yWide := mat.NewDense(3, 2, nil)
	if err := m.Fit(X, yWide); err == nil {
		t.Error("non-column y not rejected")
	}

	yShort := mat.NewDense(2, 1, []float64{0, 1})
	if err := m.Fit(X, yShort); err == nil {
		t.Error("row mismatch not rejected")
	}
}

func TestSimulateBinomialDeterminism(t *testing.T) {
	X1, y1 := SimulateBinomial(50, []float64{0.1, 0.5}, LogitLink, 8)
	X2, y2 := SimulateBinomial(50, []float64{0.1, 0.5}, LogitLink, 8)

	if !mat.Equal(X1, X2) {
		t.Error("design matrices differ for the same seed")
	}
	for i := range y1 {
		if y1[i] != y2[i] {
			t.Errorf("y[%d] differs: %v vs %v", i, y1[i], y2[i])
		}
	}
}
