package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/option-engine/pkg/utils/errors"
)

func TestParseOptionType(t *testing.T) {
	for _, s := range []string{"call", "CALL", "c", "C"} {
		typ, ok := ParseOptionType(s)
		assert.True(t, ok, s)
		assert.Equal(t, OptionTypeCall, typ)
	}
	for _, s := range []string{"put", "PUT", "p", "P"} {
		typ, ok := ParseOptionType(s)
		assert.True(t, ok, s)
		assert.Equal(t, OptionTypePut, typ)
	}
	_, ok := ParseOptionType("straddle")
	assert.False(t, ok)
}

func TestParseModelKind(t *testing.T) {
	cases := map[string]ModelKind{
		"black-scholes": ModelBlackScholes,
		"bs":            ModelBlackScholes,
		"black76":       ModelBlack76,
		"merton":        ModelMerton,
		"american":      ModelAmerican,
	}
	for s, want := range cases {
		kind, ok := ParseModelKind(s)
		require.True(t, ok, s)
		assert.Equal(t, want, kind, s)
	}
	_, ok := ParseModelKind("heston")
	assert.False(t, ok)
}

func TestModelKindStringRoundTrip(t *testing.T) {
	for _, kind := range []ModelKind{ModelBlackScholes, ModelBlack76, ModelMerton, ModelAmerican} {
		parsed, ok := ParseModelKind(kind.String())
		require.True(t, ok)
		assert.Equal(t, kind, parsed)
	}
}

func TestPriceBatchRequestToBatchInput(t *testing.T) {
	req := PriceBatchRequest{
		Model: "black-scholes",
		S:     []float64{100, 100},
		K:     []float64{95, 105},
		T:     []float64{1, 1},
		Sigma: []float64{0.2, 0.25},
		Types: []string{"call", "put"},
	}

	kind, in, err := req.ToBatchInput()
	require.NoError(t, err)
	assert.Equal(t, ModelBlackScholes, kind)
	assert.Equal(t, 2, in.Len())

	// omitted rate and yield columns default to zero
	assert.Equal(t, []float64{0, 0}, in.R)
	assert.Equal(t, []float64{0, 0}, in.Q)

	assert.Equal(t, OptionTypeCall, in.TypeAt(0))
	assert.Equal(t, OptionTypePut, in.TypeAt(1))
}

func TestPriceBatchRequestRejectsUnknownModel(t *testing.T) {
	req := PriceBatchRequest{Model: "heston", S: []float64{100}, Types: []string{"call"}}
	_, _, err := req.ToBatchInput()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestPriceBatchRequestRejectsUnknownType(t *testing.T) {
	req := PriceBatchRequest{Model: "bs", S: []float64{100}, Types: []string{"call", "x"}}
	_, _, err := req.ToBatchInput()
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "types", appErr.Field)
	assert.Equal(t, 1, appErr.Row)
}

func TestIVBatchRequestToBatchInput(t *testing.T) {
	req := IVBatchRequest{
		Model: "black76",
		Price: []float64{5},
		S:     []float64{100},
		K:     []float64{100},
		T:     []float64{1},
		Types: []string{"call"},
	}
	kind, in, err := req.ToBatchInput()
	require.NoError(t, err)
	assert.Equal(t, ModelBlack76, kind)
	assert.Equal(t, 1, in.Len())
	assert.Equal(t, []float64{0}, in.R)
}

func TestBatchInputRow(t *testing.T) {
	in := &BatchInput{
		S:     []float64{100, 90},
		K:     []float64{95, 105},
		T:     []float64{1, 2},
		R:     []float64{0.05, 0.04},
		Q:     []float64{0, 0.01},
		Sigma: []float64{0.2, 0.3},
		Types: []OptionType{OptionTypeCall, OptionTypePut},
	}
	assert.False(t, in.Uniform())
	p := in.Row(1)
	assert.Equal(t, OptionParams{S: 90, K: 105, T: 2, R: 0.04, Q: 0.01, Sigma: 0.3, Type: OptionTypePut}, p)
}

func TestOptionParamsInvalidField(t *testing.T) {
	valid := OptionParams{S: 100, K: 100, T: 1, R: 0.05, Q: 0, Sigma: 0.2}
	assert.Equal(t, "", valid.InvalidField())

	p := valid
	p.S = -1
	assert.Equal(t, "s", p.InvalidField())

	p = valid
	p.T = -0.5
	assert.Equal(t, "t", p.InvalidField())

	p = valid
	p.Sigma = 0
	assert.Equal(t, "sigma", p.InvalidField())

	// zero maturity is legal; the kernels price it as expiring now
	p = valid
	p.T = 0
	assert.Equal(t, "", p.InvalidField())
}
