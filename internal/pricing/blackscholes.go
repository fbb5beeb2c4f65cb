package pricing

import (
	"math"

	"github.com/quantkit/option-engine/internal/mathutil"
	"github.com/quantkit/option-engine/pkg/models"
)

const (
	// minTotalVol is the sigma*sqrt(t) floor below which the closed form is
	// ill-conditioned; the discounted intrinsic value is exact there.
	minTotalVol = 1e-12
	// minMaturity is the maturity floor below which a contract is treated
	// as expiring immediately.
	minMaturity = 1e-12
)

// BlackScholes prices European options under geometric Brownian motion with
// a continuous dividend yield q.
type BlackScholes struct{}

// NewBlackScholes returns the Black-Scholes kernel
func NewBlackScholes() BlackScholes {
	return BlackScholes{}
}

// Name returns the kernel name
func (BlackScholes) Name() string { return models.ModelBlackScholes.String() }

// UniformCost reports vectorization eligibility
func (BlackScholes) UniformCost() bool { return true }

// Price returns the Black-Scholes value of the option
func (bs BlackScholes) Price(p models.OptionParams) (float64, bool) {
	return bsPrice(p), true
}

// Greeks returns the analytic sensitivities, in natural units
func (bs BlackScholes) Greeks(p models.OptionParams) models.Greeks {
	if p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return degenerateGreeks(p)
	}

	sqrtT := math.Sqrt(p.T)
	d1, d2 := dPair(p.S, p.K, p.T, p.R, p.Q, p.Sigma)
	df := math.Exp(-p.R * p.T)
	dq := math.Exp(-p.Q * p.T)
	pdf := mathutil.NormPDF(d1)

	g := models.Greeks{
		Gamma: dq * pdf / (p.S * p.Sigma * sqrtT),
		Vega:  p.S * dq * pdf * sqrtT,
	}

	diffusion := -p.S * dq * pdf * p.Sigma / (2 * sqrtT)
	if p.Type == models.OptionTypeCall {
		nd1 := mathutil.NormCDF(d1)
		nd2 := mathutil.NormCDF(d2)
		g.Delta = dq * nd1
		g.Theta = diffusion - p.R*p.K*df*nd2 + p.Q*p.S*dq*nd1
		g.Rho = p.K * p.T * df * nd2
	} else {
		nmd1 := mathutil.NormCDF(-d1)
		nmd2 := mathutil.NormCDF(-d2)
		g.Delta = -dq * nmd1
		g.Theta = diffusion + p.R*p.K*df*nmd2 - p.Q*p.S*dq*nmd1
		g.Rho = -p.K * p.T * df * nmd2
	}
	return g
}

// Vega returns the analytic dPrice/dSigma
func (bs BlackScholes) Vega(p models.OptionParams) float64 {
	if p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return 0
	}
	d1, _ := dPair(p.S, p.K, p.T, p.R, p.Q, p.Sigma)
	return p.S * math.Exp(-p.Q*p.T) * mathutil.NormPDF(d1) * math.Sqrt(p.T)
}

func bsPrice(p models.OptionParams) float64 {
	if p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return discountedIntrinsic(p)
	}
	d1, d2 := dPair(p.S, p.K, p.T, p.R, p.Q, p.Sigma)
	df := math.Exp(-p.R * p.T)
	dq := math.Exp(-p.Q * p.T)
	if p.Type == models.OptionTypeCall {
		return p.S*dq*mathutil.NormCDF(d1) - p.K*df*mathutil.NormCDF(d2)
	}
	return p.K*df*mathutil.NormCDF(-d2) - p.S*dq*mathutil.NormCDF(-d1)
}

// dPair returns d1 and d2 of the Black-Scholes formula
func dPair(s, k, t, r, q, sigma float64) (float64, float64) {
	vt := sigma * math.Sqrt(t)
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / vt
	return d1, d1 - vt
}

// discountedIntrinsic values the option on the discounted forward payoff,
// the exact limit of the closed form as sigma*sqrt(t) -> 0.
func discountedIntrinsic(p models.OptionParams) float64 {
	fwd := p.S*math.Exp(-p.Q*p.T) - p.K*math.Exp(-p.R*p.T)
	if p.Type == models.OptionTypeCall {
		return math.Max(fwd, 0)
	}
	return math.Max(-fwd, 0)
}

// intrinsic is the immediate-exercise payoff
func intrinsic(p models.OptionParams) float64 {
	if p.Type == models.OptionTypeCall {
		return math.Max(p.S-p.K, 0)
	}
	return math.Max(p.K-p.S, 0)
}

// degenerateGreeks handles the sigma*sqrt(t) -> 0 limit: delta steps at the
// discounted-forward moneyness, all other sensitivities vanish.
func degenerateGreeks(p models.OptionParams) models.Greeks {
	dq := math.Exp(-p.Q * p.T)
	fwd := p.S*dq - p.K*math.Exp(-p.R*p.T)
	var g models.Greeks
	if p.Type == models.OptionTypeCall && fwd > 0 {
		g.Delta = dq
	} else if p.Type == models.OptionTypePut && fwd < 0 {
		g.Delta = -dq
	}
	return g
}
