package pricing

import (
	"math"

	"github.com/quantkit/option-engine/pkg/models"
)

const (
	defaultIVPriceTol = 1e-8
	defaultIVSigmaTol = 1e-10
	defaultIVMaxIter  = 50
	defaultIVLo       = 1e-6
	defaultIVHi       = 5.0

	// minVega is the derivative floor below which Newton is abandoned for a
	// bisection step
	minVega = 1e-10
)

// IVSolver inverts a pricing kernel for volatility: Newton-Raphson on the
// analytic vega, safeguarded by a maintained bracket with bisection
// fallback. Prices outside the attainable range at the volatility bounds
// fail fast instead of converging to a bound.
type IVSolver struct {
	PriceTol float64
	SigmaTol float64
	MaxIter  int
	Lo       float64
	Hi       float64
}

// NewIVSolver returns a solver with default tolerances and bounds
func NewIVSolver() *IVSolver {
	return &IVSolver{
		PriceTol: defaultIVPriceTol,
		SigmaTol: defaultIVSigmaTol,
		MaxIter:  defaultIVMaxIter,
		Lo:       defaultIVLo,
		Hi:       defaultIVHi,
	}
}

// Solve returns the volatility at which the kernel reproduces the target
// price. On failure it returns NaN and false.
func (iv *IVSolver) Solve(k Kernel, target float64, p models.OptionParams) (float64, bool) {
	if !(target >= 0) || math.IsInf(target, 0) {
		return math.NaN(), false
	}

	lo, hi := iv.Lo, iv.Hi
	pLo := iv.priceAt(k, p, lo)
	pHi := iv.priceAt(k, p, hi)

	// attainable-range pre-check: the price must bracket between the bounds
	if target < pLo-iv.PriceTol || target > pHi+iv.PriceTol {
		return math.NaN(), false
	}
	if math.Abs(pLo-target) <= iv.PriceTol {
		return lo, true
	}
	if math.Abs(pHi-target) <= iv.PriceTol {
		return hi, true
	}

	sigma := iv.seed(target, p)

	for i := 0; i < iv.MaxIter; i++ {
		price := iv.priceAt(k, p, sigma)
		diff := price - target
		if math.Abs(diff) <= iv.PriceTol {
			return sigma, true
		}

		// price is increasing in sigma, so the sign of the residual tells
		// which side of the root we are on
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}

		vega := iv.vegaAt(k, p, sigma)
		var next float64
		if vega > minVega {
			next = sigma - diff/vega
		}
		if vega <= minVega || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}

		if math.Abs(next-sigma) <= iv.SigmaTol {
			// stalled in sigma; accept only if the price is close enough
			sigma = next
			return sigma, math.Abs(iv.priceAt(k, p, sigma)-target) <= 100*iv.PriceTol
		}
		sigma = next
	}

	if math.Abs(iv.priceAt(k, p, sigma)-target) <= iv.PriceTol {
		return sigma, true
	}
	return math.NaN(), false
}

// seed is the Brenner-Subrahmanyam at-the-money approximation, clamped to
// the solver bounds
func (iv *IVSolver) seed(target float64, p models.OptionParams) float64 {
	s := math.Sqrt(2*math.Pi/p.T) * target / p.S
	if s < iv.Lo {
		return iv.Lo
	}
	if s > iv.Hi {
		return iv.Hi
	}
	return s
}

func (iv *IVSolver) priceAt(k Kernel, p models.OptionParams, sigma float64) float64 {
	p.Sigma = sigma
	v, _ := k.Price(p)
	return v
}

func (iv *IVSolver) vegaAt(k Kernel, p models.OptionParams, sigma float64) float64 {
	p.Sigma = sigma
	if vk, ok := k.(VegaKernel); ok {
		return vk.Vega(p)
	}
	// numeric fallback for kernels without an analytic vega
	h := 1e-5 * math.Max(sigma, 1e-3)
	up, dn := p, p
	up.Sigma = sigma + h
	dn.Sigma = math.Max(sigma-h, iv.Lo/2)
	vu, _ := k.Price(up)
	vd, _ := k.Price(dn)
	return (vu - vd) / (up.Sigma - dn.Sigma)
}
