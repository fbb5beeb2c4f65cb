package pricing

import (
	"math"

	"github.com/quantkit/option-engine/pkg/models"
)

const (
	// mertonMaxTerms caps the jump-count series regardless of lambda*t
	mertonMaxTerms = 50
	// mertonTermTol truncates the series once a term's relative
	// contribution drops below it
	mertonTermTol = 1e-12
)

// MertonParams are the jump-process inputs of the Merton model: Lambda is
// the jump intensity per year, MeanJump the mean of the log jump size,
// JumpVol its standard deviation. They are model-level configuration; the
// per-contract diffusion inputs come from OptionParams.
type MertonParams struct {
	Lambda   float64
	MeanJump float64
	JumpVol  float64
}

// Merton prices European options under a jump-diffusion: the value is a
// Poisson-weighted sum of Black-Scholes prices at jump-adjusted variance
// and drift.
type Merton struct {
	params MertonParams
}

// NewMerton returns a Merton kernel with the given jump parameters
func NewMerton(params MertonParams) *Merton {
	if params.Lambda < 0 {
		params.Lambda = 0
	}
	if params.JumpVol < 0 {
		params.JumpVol = 0
	}
	return &Merton{params: params}
}

// Name returns the kernel name
func (*Merton) Name() string { return models.ModelMerton.String() }

// UniformCost reports vectorization-class cost: the series is capped, so
// per-element cost is bounded and treated as uniform.
func (*Merton) UniformCost() bool { return true }

// Price returns the jump-diffusion value of the option
func (m *Merton) Price(p models.OptionParams) (float64, bool) {
	if p.T < minMaturity || p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return discountedIntrinsic(p), true
	}
	if m.params.Lambda == 0 {
		return bsPrice(p), true
	}

	jump := m.jumpDrift()
	lt := jump.lambdaPrime * p.T

	sum := 0.0
	for n := 0; n < mertonMaxTerms; n++ {
		w := poissonWeight(lt, n)
		term := w * bsPrice(m.adjusted(p, n, jump))
		sum += term
		if n > 0 && math.Abs(term) < mertonTermTol*math.Abs(sum) && float64(n) > lt {
			break
		}
	}
	return sum, true
}

// Greeks returns analytic sensitivities as Poisson-weighted sums of the
// per-term Black-Scholes Greeks. Vega and theta apply the chain rule
// through the jump-adjusted volatility and drift.
func (m *Merton) Greeks(p models.OptionParams) models.Greeks {
	if p.T < minMaturity || p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return degenerateGreeks(p)
	}
	bs := BlackScholes{}
	if m.params.Lambda == 0 {
		return bs.Greeks(p)
	}

	jump := m.jumpDrift()
	lt := jump.lambdaPrime * p.T
	delta2 := m.params.JumpVol * m.params.JumpVol

	var g models.Greeks
	for n := 0; n < mertonMaxTerms; n++ {
		w := poissonWeight(lt, n)
		if w < 1e-16 && float64(n) > lt {
			break
		}
		pn := m.adjusted(p, n, jump)
		gn := bs.Greeks(pn)
		price := bsPrice(pn)

		g.Delta += w * gn.Delta
		g.Gamma += w * gn.Gamma
		g.Rho += w * gn.Rho
		// dSigmaN/dSigma = sigma/sigmaN
		g.Vega += w * gn.Vega * p.Sigma / pn.Sigma

		// theta = -dP/dT; the weight, the jump-adjusted volatility and
		// the jump-adjusted drift all depend on T.
		fn := float64(n)
		dwdT := w * (fn/p.T - jump.lambdaPrime)
		dSigmaNdT := -fn * delta2 / (2 * pn.Sigma * p.T * p.T)
		dRNdT := -fn * jump.logOnePlusM / (p.T * p.T)
		g.Theta += w*gn.Theta - dwdT*price - w*(gn.Vega*dSigmaNdT+gn.Rho*dRNdT)
	}
	return g
}

// Vega returns the analytic dPrice/dSigma
func (m *Merton) Vega(p models.OptionParams) float64 {
	if p.T < minMaturity || p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return 0
	}
	bs := BlackScholes{}
	if m.params.Lambda == 0 {
		return bs.Vega(p)
	}
	jump := m.jumpDrift()
	lt := jump.lambdaPrime * p.T

	sum := 0.0
	for n := 0; n < mertonMaxTerms; n++ {
		w := poissonWeight(lt, n)
		if w < 1e-16 && float64(n) > lt {
			break
		}
		pn := m.adjusted(p, n, jump)
		sum += w * bs.Vega(pn) * p.Sigma / pn.Sigma
	}
	return sum
}

type jumpDrift struct {
	m           float64 // expected relative jump size E[J]-1
	lambdaPrime float64 // risk-adjusted intensity lambda*(1+m)
	logOnePlusM float64
}

func (m *Merton) jumpDrift() jumpDrift {
	em := math.Expm1(m.params.MeanJump + 0.5*m.params.JumpVol*m.params.JumpVol)
	return jumpDrift{
		m:           em,
		lambdaPrime: m.params.Lambda * (1 + em),
		logOnePlusM: math.Log1p(em),
	}
}

// adjusted returns the contract parameters conditioned on n jumps: variance
// picks up n jump variances spread over the maturity, drift compensates the
// expected jump.
func (m *Merton) adjusted(p models.OptionParams, n int, jump jumpDrift) models.OptionParams {
	fn := float64(n)
	pn := p
	pn.Sigma = math.Sqrt(p.Sigma*p.Sigma + fn*m.params.JumpVol*m.params.JumpVol/p.T)
	pn.R = p.R - m.params.Lambda*jump.m + fn*jump.logOnePlusM/p.T
	return pn
}

// poissonWeight computes e^{-lt} lt^n / n! in log space so large lambda*t
// cannot overflow the power or the factorial.
func poissonWeight(lt float64, n int) float64 {
	if lt <= 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	lg, _ := math.Lgamma(float64(n) + 1)
	return math.Exp(-lt + float64(n)*math.Log(lt) - lg)
}
