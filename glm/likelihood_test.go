package glm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glmfit/optimize"
)

func testData() ([]float64, *mat.Dense) {
	y := []float64{0, 1, 1, 0, 1, 0}
	X := mat.NewDense(6, 3, []float64{
		1, -1.0, 0.5,
		1, 1.2, -0.3,
		1, 2.1, 0.8,
		1, -2.0, 1.1,
		1, 0.4, -1.4,
		1, -0.6, 0.2,
	})
	return y, X
}

func TestNegLogLikAtZero(t *testing.T) {
	// At beta = 0 every fitted probability is 0.5, so the negative
	// log-likelihood is n*log(2) for any link.
	y, xaug := testData()
	want := 6 * math.Log(2)

	for _, lt := range []LinkType{LogitLink, ProbitLink} {
		link := NewLink(lt)
		got := negLogLik(y, xaug, []float64{0, 0, 0}, link)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("%s: negLogLik(0) = %v, want %v", link.Name(), got, want)
		}
	}
}

func TestNegLogLikFiniteUnderSaturation(t *testing.T) {
	// Extreme coefficients drive probabilities to the clipping bounds; the
	// objective must stay finite thanks to the clipping policy.
	y, xaug := testData()
	beta := []float64{500, -800, 900}

	for _, lt := range []LinkType{LogitLink, ProbitLink} {
		link := NewLink(lt)
		got := negLogLik(y, xaug, beta, link)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("%s: negLogLik = %v under saturation, want finite", link.Name(), got)
		}
	}
}

func TestNegLogLikGradMatchesFiniteDifference(t *testing.T) {
	y, xaug := testData()
	beta := []float64{0.3, -0.5, 0.2}

	for _, lt := range []LinkType{LogitLink, ProbitLink} {
		link := NewLink(lt)

		analytic := make([]float64, 3)
		negLogLikGrad(y, xaug, beta, link, analytic)

		numeric := make([]float64, 3)
		optimize.Gradient(func(b []float64) float64 {
			return negLogLik(y, xaug, b, link)
		}, beta, numeric)

		for j := range analytic {
			if math.Abs(analytic[j]-numeric[j]) > 1e-6 {
				t.Errorf("%s: grad[%d] analytic %v vs numeric %v",
					link.Name(), j, analytic[j], numeric[j])
			}
		}
	}
}

func TestNegLogLikGradLogitReduction(t *testing.T) {
	// For the logit link the generic weight collapses to p - y; verify the
	// generic path reproduces X'(p - y) exactly.
	y, xaug := testData()
	beta := []float64{0.1, 0.4, -0.2}
	link := NewLink(LogitLink)

	got := make([]float64, 3)
	negLogLikGrad(y, xaug, beta, link, got)

	want := make([]float64, 3)
	for i := 0; i < 6; i++ {
		var eta float64
		for j := 0; j < 3; j++ {
			eta += xaug.At(i, j) * beta[j]
		}
		p := link.Probability(eta)
		for j := 0; j < 3; j++ {
			want[j] += (p - y[i]) * xaug.At(i, j)
		}
	}

	for j := range got {
		if math.Abs(got[j]-want[j]) > 1e-9 {
			t.Errorf("grad[%d] = %v, want %v", j, got[j], want[j])
		}
	}
}
