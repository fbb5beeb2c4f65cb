// Package pricing implements the option pricing kernels: the closed-form
// models (Black-Scholes, Black76, Merton jump-diffusion), the American
// early-exercise engine, the Greeks calculator and the implied-volatility
// solver. Kernels are pure: all state lives in the parameters, so a kernel
// value can be shared across goroutines.
package pricing

import (
	"github.com/quantkit/option-engine/pkg/models"
)

// Kernel is the pricing capability every model variant implements.
// Price returns the option value and a convergence flag; closed-form models
// always converge, the American engine reports iteration exhaustion.
type Kernel interface {
	Name() string
	// UniformCost reports whether per-element cost is uniform and
	// branch-free, which makes the kernel eligible for the vectorized
	// batch path. Data-dependent solvers (American, implied vol) are not.
	UniformCost() bool
	Price(p models.OptionParams) (float64, bool)
}

// AnalyticGreeker is implemented by kernels with closed-form sensitivities.
// Kernels without it (the American engine) get finite-difference Greeks
// from the GreeksCalculator.
type AnalyticGreeker interface {
	Greeks(p models.OptionParams) models.Greeks
}

// VegaKernel exposes the analytic price sensitivity to volatility, used as
// the Newton derivative by the implied-volatility solver.
type VegaKernel interface {
	Vega(p models.OptionParams) float64
}

// ColumnKernel prices a whole batch column-wise, applying the elementwise
// formula over contiguous arrays. Only uniform-cost kernels implement it.
type ColumnKernel interface {
	PriceColumns(in *models.BatchInput, out []float64)
}

// ForModel returns the canonical kernel for a model variant. The table is
// closed: an unknown kind returns false.
func ForModel(kind models.ModelKind, merton MertonParams) (Kernel, bool) {
	switch kind {
	case models.ModelBlackScholes:
		return BlackScholes{}, true
	case models.ModelBlack76:
		return Black76{}, true
	case models.ModelMerton:
		return NewMerton(merton), true
	case models.ModelAmerican:
		return NewAmerican(), true
	}
	return nil, false
}
