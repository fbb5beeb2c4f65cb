package pricing

import (
	"math"

	"github.com/quantkit/option-engine/pkg/models"
)

// defaultGreekBump is the relative finite-difference step
const defaultGreekBump = 1e-4

// GreeksCalculator produces sensitivities for any kernel: analytic when the
// kernel implements AnalyticGreeker, central finite differences otherwise.
type GreeksCalculator struct {
	Bump float64
}

// NewGreeksCalculator returns a calculator with the default bump size
func NewGreeksCalculator() *GreeksCalculator {
	return &GreeksCalculator{Bump: defaultGreekBump}
}

// NewGreeksCalculatorWith returns a calculator with an explicit bump size
func NewGreeksCalculatorWith(bump float64) *GreeksCalculator {
	if bump <= 0 {
		bump = defaultGreekBump
	}
	return &GreeksCalculator{Bump: bump}
}

// Compute returns the Greeks for the contract under the given kernel. The
// bool reports convergence of every underlying price evaluation.
func (gc *GreeksCalculator) Compute(k Kernel, p models.OptionParams) (models.Greeks, bool) {
	if ag, ok := k.(AnalyticGreeker); ok {
		return ag.Greeks(p), true
	}
	return gc.finiteDifference(k, p)
}

// step is the absolute bump for an input of magnitude x, relative above 1
// and absolute below so bumps never vanish near zero.
func (gc *GreeksCalculator) step(x float64) float64 {
	return gc.Bump * math.Max(math.Abs(x), 1)
}

func (gc *GreeksCalculator) finiteDifference(k Kernel, p models.OptionParams) (models.Greeks, bool) {
	var g models.Greeks
	ok := true
	eval := func(q models.OptionParams) float64 {
		v, conv := k.Price(q)
		if !conv {
			ok = false
		}
		return v
	}

	base := eval(p)

	// delta and gamma share the spot bump in a 3-point stencil
	hs := gc.step(p.S)
	up, dn := p, p
	up.S = p.S + hs
	dn.S = p.S - hs
	pu, pd := eval(up), eval(dn)
	g.Delta = (pu - pd) / (2 * hs)
	g.Gamma = (pu - 2*base + pd) / (hs * hs)

	// vega: halve the bump until sigma-h stays positive
	hv := gc.step(p.Sigma)
	for p.Sigma-hv <= 0 && hv > 1e-12 {
		hv /= 2
	}
	up, dn = p, p
	up.Sigma = p.Sigma + hv
	dn.Sigma = p.Sigma - hv
	g.Vega = (eval(up) - eval(dn)) / (2 * hv)

	// theta = -dP/dT; one-sided forward difference when the contract is too
	// close to expiry for a downward bump
	ht := gc.step(p.T)
	if p.T-ht > minMaturity {
		up, dn = p, p
		up.T = p.T + ht
		dn.T = p.T - ht
		g.Theta = -(eval(up) - eval(dn)) / (2 * ht)
	} else {
		up = p
		up.T = p.T + ht
		g.Theta = -(eval(up) - base) / ht
	}

	hr := gc.step(p.R)
	up, dn = p, p
	up.R = p.R + hr
	dn.R = p.R - hr
	g.Rho = (eval(up) - eval(dn)) / (2 * hr)

	return g, ok
}
