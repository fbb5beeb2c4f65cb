package pricing

import (
	"math"

	"github.com/quantkit/option-engine/internal/mathutil"
	"github.com/quantkit/option-engine/pkg/models"
)

// Black76 prices European options on a forward. The S field of the
// parameters is interpreted as the forward price; q is unused because the
// forward already reflects the cost of carry, and r only discounts.
type Black76 struct{}

// NewBlack76 returns the Black76 kernel
func NewBlack76() Black76 {
	return Black76{}
}

// Name returns the kernel name
func (Black76) Name() string { return models.ModelBlack76.String() }

// UniformCost reports vectorization eligibility
func (Black76) UniformCost() bool { return true }

// Price returns the Black76 value of the option
func (b Black76) Price(p models.OptionParams) (float64, bool) {
	return b76Price(p), true
}

func b76Price(p models.OptionParams) float64 {
	df := math.Exp(-p.R * p.T)
	if p.Sigma*math.Sqrt(p.T) < minTotalVol {
		if p.Type == models.OptionTypeCall {
			return df * math.Max(p.S-p.K, 0)
		}
		return df * math.Max(p.K-p.S, 0)
	}
	d1, d2 := b76DPair(p.S, p.K, p.T, p.Sigma)
	if p.Type == models.OptionTypeCall {
		return df * (p.S*mathutil.NormCDF(d1) - p.K*mathutil.NormCDF(d2))
	}
	return df * (p.K*mathutil.NormCDF(-d2) - p.S*mathutil.NormCDF(-d1))
}

// Greeks returns the analytic sensitivities. Delta and gamma are with
// respect to the forward; rho reflects discounting only.
func (b Black76) Greeks(p models.OptionParams) models.Greeks {
	price := b76Price(p)
	if p.Sigma*math.Sqrt(p.T) < minTotalVol {
		df := math.Exp(-p.R * p.T)
		var g models.Greeks
		if p.Type == models.OptionTypeCall && p.S > p.K {
			g.Delta = df
		} else if p.Type == models.OptionTypePut && p.S < p.K {
			g.Delta = -df
		}
		g.Theta = p.R * price
		g.Rho = -p.T * price
		return g
	}

	sqrtT := math.Sqrt(p.T)
	d1, _ := b76DPair(p.S, p.K, p.T, p.Sigma)
	df := math.Exp(-p.R * p.T)
	pdf := mathutil.NormPDF(d1)

	g := models.Greeks{
		Gamma: df * pdf / (p.S * p.Sigma * sqrtT),
		Vega:  p.S * df * pdf * sqrtT,
		Theta: p.R*price - p.S*df*pdf*p.Sigma/(2*sqrtT),
		Rho:   -p.T * price,
	}
	if p.Type == models.OptionTypeCall {
		g.Delta = df * mathutil.NormCDF(d1)
	} else {
		g.Delta = -df * mathutil.NormCDF(-d1)
	}
	return g
}

// Vega returns the analytic dPrice/dSigma
func (b Black76) Vega(p models.OptionParams) float64 {
	if p.Sigma*math.Sqrt(p.T) < minTotalVol {
		return 0
	}
	d1, _ := b76DPair(p.S, p.K, p.T, p.Sigma)
	return p.S * math.Exp(-p.R*p.T) * mathutil.NormPDF(d1) * math.Sqrt(p.T)
}

func b76DPair(f, k, t, sigma float64) (float64, float64) {
	vt := sigma * math.Sqrt(t)
	d1 := (math.Log(f/k) + 0.5*sigma*sigma*t) / vt
	return d1, d1 - vt
}
