package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/option-engine/pkg/models"
)

func TestIVSolverRoundTrip(t *testing.T) {
	bs := NewBlackScholes()
	iv := NewIVSolver()

	for _, sigma := range []float64{0.05, 0.15, 0.3, 0.8, 2.0} {
		for _, k := range []float64{70, 100, 130} {
			for _, typ := range []models.OptionType{models.OptionTypeCall, models.OptionTypePut} {
				p := models.OptionParams{S: 100, K: k, T: 0.5, R: 0.03, Q: 0.01, Sigma: sigma, Type: typ}
				target, _ := bs.Price(p)

				got, conv := iv.Solve(bs, target, p)
				require.True(t, conv, "sigma=%v k=%v type=%v", sigma, k, typ)
				assert.InDelta(t, sigma, got, 1e-6, "sigma=%v k=%v type=%v", sigma, k, typ)
			}
		}
	}
}

func TestIVSolverBlack76RoundTrip(t *testing.T) {
	b := NewBlack76()
	iv := NewIVSolver()

	p := models.OptionParams{S: 100, K: 105, T: 1, R: 0.05, Sigma: 0.35, Type: models.OptionTypeCall}
	target, _ := b.Price(p)

	got, conv := iv.Solve(b, target, p)
	require.True(t, conv)
	assert.InDelta(t, 0.35, got, 1e-6)
}

func TestIVSolverUnattainablePrices(t *testing.T) {
	bs := NewBlackScholes()
	iv := NewIVSolver()
	p := models.OptionParams{S: 100, K: 100, T: 1, R: 0.05, Type: models.OptionTypeCall}

	// below the zero-vol floor
	sigma, conv := iv.Solve(bs, 0.5, p)
	assert.False(t, conv)
	assert.True(t, math.IsNaN(sigma))

	// above the spot value
	sigma, conv = iv.Solve(bs, 101, p)
	assert.False(t, conv)
	assert.True(t, math.IsNaN(sigma))

	// negative and non-finite targets
	_, conv = iv.Solve(bs, -1, p)
	assert.False(t, conv)
	_, conv = iv.Solve(bs, math.Inf(1), p)
	assert.False(t, conv)
	_, conv = iv.Solve(bs, math.NaN(), p)
	assert.False(t, conv)
}

func TestIVSolverDeepOTMLowVega(t *testing.T) {
	// far out of the money the vega is tiny and Newton alone would
	// overshoot; the bracket keeps the solve on track
	bs := NewBlackScholes()
	iv := NewIVSolver()

	p := models.OptionParams{S: 100, K: 300, T: 0.1, R: 0.02, Sigma: 0.6, Type: models.OptionTypeCall}
	target, _ := bs.Price(p)
	require.Greater(t, target, 0.0)

	got, conv := iv.Solve(bs, target, p)
	require.True(t, conv)

	// verify in price space; sigma itself is ill-conditioned out here
	p.Sigma = got
	price, _ := bs.Price(p)
	assert.InDelta(t, target, price, 1e-6)
}

func TestIVSolverNumericVegaFallback(t *testing.T) {
	// the American kernel has no analytic vega; the solver differentiates
	// numerically
	a := NewAmerican()
	iv := NewIVSolver()

	p := models.OptionParams{S: 100, K: 100, T: 1, R: 0.05, Q: 0, Sigma: 0.3, Type: models.OptionTypePut}
	target, _ := a.Price(p)

	got, conv := iv.Solve(a, target, p)
	require.True(t, conv)
	assert.InDelta(t, 0.3, got, 1e-4)
}
