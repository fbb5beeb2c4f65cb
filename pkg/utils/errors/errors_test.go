package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationfCarriesFieldAndRow(t *testing.T) {
	err := Validationf("sigma", 3, "invalid sigma at row %d", 3)

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "sigma", appErr.Field)
	assert.Equal(t, 3, appErr.Row)
	assert.True(t, IsValidation(err))
}

func TestWrapPreservesType(t *testing.T) {
	inner := Validation("bad input")
	wrapped := Wrapf(inner, "pricing batch %d", 7)

	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, "pricing batch 7: bad input", wrapped.Error())

	var appErr *AppError
	require.True(t, As(wrapped, &appErr))
	assert.Equal(t, inner, appErr.Unwrap())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorTypeConvergence, TypeOf(Convergence("no convergence")))
	assert.Equal(t, ErrorTypeUnsupported, TypeOf(Unsupported("unknown model")))
}

func TestIsDelegatesToChain(t *testing.T) {
	base := fmt.Errorf("base")
	wrapped := Wrap(base, "context")
	assert.True(t, Is(wrapped, base))
	assert.False(t, Is(wrapped, fmt.Errorf("other")))
}
