package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormCDF(t *testing.T) {
	assert.Equal(t, 0.5, NormCDF(0))
	assert.InDelta(t, 0.8413447460685429, NormCDF(1), 1e-12)
	assert.InDelta(t, 0.9750021048517795, NormCDF(1.959963984540054), 1e-12)

	// symmetry
	for _, x := range []float64{0.1, 0.7, 1.3, 2.5, 4.0} {
		assert.InDelta(t, 1.0, NormCDF(x)+NormCDF(-x), 1e-15, "x=%v", x)
	}

	// deep tails stay positive instead of rounding to zero
	assert.Greater(t, NormCDF(-20), 0.0)
	assert.Less(t, NormCDF(-20), 1e-80)
}

func TestNormPDF(t *testing.T) {
	assert.InDelta(t, 0.3989422804014327, NormPDF(0), 1e-15)
	assert.InDelta(t, NormPDF(1.5), NormPDF(-1.5), 1e-16)

	// pdf is the derivative of the cdf
	h := 1e-6
	for _, x := range []float64{-2, -0.5, 0, 0.5, 2} {
		numeric := (NormCDF(x+h) - NormCDF(x-h)) / (2 * h)
		assert.InDelta(t, NormPDF(x), numeric, 1e-8, "x=%v", x)
	}
}

func TestNormQuantileRoundTrip(t *testing.T) {
	for _, p := range []float64{0.01, 0.1, 0.5, 0.9, 0.99} {
		x := NormQuantile(p)
		assert.InDelta(t, p, NormCDF(x), 1e-12, "p=%v", p)
	}
}

func TestSliceVariantsMatchScalar(t *testing.T) {
	xs := []float64{-3.2, -1.0, -0.1, 0, 0.1, 1.0, 3.2}
	cdf := make([]float64, len(xs))
	pdf := make([]float64, len(xs))

	NormCDFSlice(cdf, xs)
	NormPDFSlice(pdf, xs)

	for i, x := range xs {
		require.Equal(t, NormCDF(x), cdf[i], "cdf x=%v", x)
		require.Equal(t, NormPDF(x), pdf[i], "pdf x=%v", x)
	}
}

func TestNormCDFSliceInPlace(t *testing.T) {
	xs := []float64{-1, 0, 1}
	want := []float64{NormCDF(-1), NormCDF(0), NormCDF(1)}
	NormCDFSlice(xs, xs)
	assert.Equal(t, want, xs)
}
