package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/option-engine/pkg/models"
)

var testJumps = MertonParams{Lambda: 0.5, MeanJump: -0.08, JumpVol: 0.25}

func TestMertonZeroIntensityReducesToBlackScholes(t *testing.T) {
	m := NewMerton(MertonParams{})
	bs := NewBlackScholes()

	for _, typ := range []models.OptionType{models.OptionTypeCall, models.OptionTypePut} {
		p := models.OptionParams{S: 100, K: 95, T: 1, R: 0.05, Q: 0.01, Sigma: 0.2, Type: typ}
		want, _ := bs.Price(p)
		got, conv := m.Price(p)
		require.True(t, conv)
		assert.Equal(t, want, got)
		assert.Equal(t, bs.Greeks(p), m.Greeks(p))
	}
}

func TestMertonPutCallParity(t *testing.T) {
	// the risk-neutral drift compensation makes the discounted forward
	// identical to the no-jump case, so parity holds exactly
	m := NewMerton(testJumps)

	for _, k := range []float64{80, 100, 125} {
		cp := models.OptionParams{S: 100, K: k, T: 1, R: 0.05, Q: 0.02, Sigma: 0.2, Type: models.OptionTypeCall}
		pp := cp
		pp.Type = models.OptionTypePut

		call, _ := m.Price(cp)
		put, _ := m.Price(pp)
		fwd := 100*math.Exp(-0.02) - k*math.Exp(-0.05)
		assert.InDelta(t, fwd, call-put, 1e-9, "k=%v", k)
	}
}

func TestMertonJumpsAddValueOverBlackScholes(t *testing.T) {
	// extra jump variance makes an ATM option worth more than its pure
	// diffusion value
	m := NewMerton(testJumps)
	bs := NewBlackScholes()

	p := models.OptionParams{S: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2, Type: models.OptionTypeCall}
	jump, _ := m.Price(p)
	diffusion, _ := bs.Price(p)
	assert.Greater(t, jump, diffusion)
}

func TestMertonSeriesConvergesForLargeIntensity(t *testing.T) {
	m := NewMerton(MertonParams{Lambda: 8, MeanJump: -0.02, JumpVol: 0.1})
	p := models.OptionParams{S: 100, K: 100, T: 2, R: 0.05, Sigma: 0.2, Type: models.OptionTypeCall}
	price, conv := m.Price(p)
	require.True(t, conv)
	assert.True(t, price > 0 && price < 100)
	assert.False(t, math.IsNaN(price))
}

func TestMertonGreeksAgainstFiniteDifference(t *testing.T) {
	m := NewMerton(testJumps)
	h := 1e-5

	price := func(p models.OptionParams) float64 {
		v, _ := m.Price(p)
		return v
	}

	cases := []models.OptionParams{
		{S: 100, K: 100, T: 1, R: 0.05, Q: 0.01, Sigma: 0.2, Type: models.OptionTypeCall},
		{S: 90, K: 105, T: 0.5, R: 0.03, Q: 0, Sigma: 0.3, Type: models.OptionTypePut},
	}

	for _, p := range cases {
		g := m.Greeks(p)

		up, dn := p, p
		up.S += h
		dn.S -= h
		assert.InDelta(t, (price(up)-price(dn))/(2*h), g.Delta, 1e-4)

		hg := 1e-3
		up, dn = p, p
		up.S += hg
		dn.S -= hg
		assert.InDelta(t, (price(up)-2*price(p)+price(dn))/(hg*hg), g.Gamma, 1e-4)

		up, dn = p, p
		up.Sigma += h
		dn.Sigma -= h
		assert.InDelta(t, (price(up)-price(dn))/(2*h), g.Vega, 1e-4)

		up, dn = p, p
		up.T += h
		dn.T -= h
		assert.InDelta(t, -(price(up)-price(dn))/(2*h), g.Theta, 1e-4)

		up, dn = p, p
		up.R += h
		dn.R -= h
		assert.InDelta(t, (price(up)-price(dn))/(2*h), g.Rho, 1e-4)
	}
}

func TestMertonVegaMatchesGreeks(t *testing.T) {
	m := NewMerton(testJumps)
	p := models.OptionParams{S: 100, K: 110, T: 1, R: 0.04, Sigma: 0.25, Type: models.OptionTypeCall}
	assert.InDelta(t, m.Greeks(p).Vega, m.Vega(p), 1e-12)
}

func TestMertonNegativeParamsClamped(t *testing.T) {
	m := NewMerton(MertonParams{Lambda: -1, JumpVol: -0.5})
	bs := NewBlackScholes()
	p := models.OptionParams{S: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2, Type: models.OptionTypeCall}
	want, _ := bs.Price(p)
	got, _ := m.Price(p)
	assert.Equal(t, want, got)
}
