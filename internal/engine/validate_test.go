package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/option-engine/pkg/models"
	"github.com/quantkit/option-engine/pkg/utils/errors"
)

func validInput(n int) *models.BatchInput {
	in := &models.BatchInput{
		S:     make([]float64, n),
		K:     make([]float64, n),
		T:     make([]float64, n),
		R:     make([]float64, n),
		Q:     make([]float64, n),
		Sigma: make([]float64, n),
		Types: []models.OptionType{models.OptionTypeCall},
	}
	for i := 0; i < n; i++ {
		in.S[i] = 100
		in.K[i] = 100
		in.T[i] = 1
		in.R[i] = 0.05
		in.Sigma[i] = 0.2
	}
	return in
}

func requireValidationError(t *testing.T, err error, field string, row int) {
	t.Helper()
	require.Error(t, err)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, field, appErr.Field)
	assert.Equal(t, row, appErr.Row)
}

func TestValidatePriceBatch(t *testing.T) {
	assert.NoError(t, validatePriceBatch(validInput(5)))
}

func TestValidatePriceBatchEmpty(t *testing.T) {
	err := validatePriceBatch(&models.BatchInput{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidatePriceBatchLengthMismatch(t *testing.T) {
	in := validInput(5)
	in.K = in.K[:4]
	err := validatePriceBatch(in)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidatePriceBatchTypesCardinality(t *testing.T) {
	in := validInput(5)
	in.Types = make([]models.OptionType, 3)
	err := validatePriceBatch(in)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidatePriceBatchFirstBadRowWins(t *testing.T) {
	in := validInput(5)
	in.Sigma[2] = -0.1
	in.S[4] = math.NaN()
	requireValidationError(t, validatePriceBatch(in), "sigma", 2)
}

func TestValidatePriceBatchFieldNames(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*models.BatchInput)
	}{
		{"s", func(in *models.BatchInput) { in.S[1] = 0 }},
		{"k", func(in *models.BatchInput) { in.K[1] = -5 }},
		{"t", func(in *models.BatchInput) { in.T[1] = -1 }},
		{"r", func(in *models.BatchInput) { in.R[1] = math.Inf(1) }},
		{"q", func(in *models.BatchInput) { in.Q[1] = math.NaN() }},
		{"sigma", func(in *models.BatchInput) { in.Sigma[1] = 0 }},
	}
	for _, tc := range cases {
		in := validInput(3)
		tc.mutate(in)
		requireValidationError(t, validatePriceBatch(in), tc.field, 1)
	}
}

func TestValidateIVBatch(t *testing.T) {
	in := &models.IVBatchInput{
		Price: []float64{5, 10},
		S:     []float64{100, 100},
		K:     []float64{100, 110},
		T:     []float64{1, 1},
		R:     []float64{0.05, 0.05},
		Q:     []float64{0, 0},
		Types: []models.OptionType{models.OptionTypeCall},
	}
	assert.NoError(t, validateIVBatch(in))

	in.Price[1] = -3
	requireValidationError(t, validateIVBatch(in), "price", 1)

	in.Price[1] = math.Inf(1)
	requireValidationError(t, validateIVBatch(in), "price", 1)

	in.Price[1] = 10
	in.K[0] = 0
	requireValidationError(t, validateIVBatch(in), "k", 0)
}
