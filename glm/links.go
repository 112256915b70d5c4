package glm

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/glmfit/pkg/errors"
)

// Link maps a real-valued linear predictor to a probability in (0,1).
// Implementations are stateless and safe to share across concurrent fits.
type Link interface {
	// Name returns the display name of the link.
	Name() string

	// Probability returns P(y=1) for the linear predictor eta. It is
	// strictly increasing in eta, defined for all real eta, and equals 0.5
	// at eta = 0.
	Probability(eta float64) float64

	// Density returns the derivative of Probability with respect to eta.
	Density(eta float64) float64
}

// LinkType selects a link function.
type LinkType uint8

// The supported link functions.
const (
	LogitLink LinkType = iota
	ProbitLink
)

// String returns the link name.
func (lt LinkType) String() string {
	switch lt {
	case LogitLink:
		return "Logit"
	case ProbitLink:
		return "Probit"
	default:
		return fmt.Sprintf("LinkType(%d)", lt)
	}
}

// NewLink returns the link function for the given type code. The returned
// values are shared singletons. Unknown codes panic.
func NewLink(lt LinkType) Link {
	switch lt {
	case LogitLink:
		return logit{}
	case ProbitLink:
		return probit{}
	default:
		panic(fmt.Sprintf("glm: unknown link type: %v", lt))
	}
}

// logit is the logistic link: p = 1 / (1 + exp(-eta)).
type logit struct{}

func (logit) Name() string { return "Logit" }

func (logit) Probability(eta float64) float64 {
	return errors.StableSigmoid(eta)
}

func (logit) Density(eta float64) float64 {
	p := errors.StableSigmoid(eta)
	return p * (1 - p)
}

// probit is the standard normal CDF link: p = Phi(eta).
type probit struct{}

func (probit) Name() string { return "Probit" }

func (probit) Probability(eta float64) float64 {
	return distuv.UnitNormal.CDF(eta)
}

func (probit) Density(eta float64) float64 {
	return distuv.UnitNormal.Prob(eta)
}
