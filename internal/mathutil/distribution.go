// Package mathutil provides the distribution primitives the pricing kernels
// are built on: standard normal CDF/PDF as pure scalar functions plus
// slice-mapped variants for the columnar batch path.
package mathutil

import (
	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// NormCDF returns the standard normal cumulative distribution function at x.
// The implementation is erfc-based, so deep tails keep relative accuracy
// instead of rounding to 0 or 1 prematurely.
func NormCDF(x float64) float64 {
	return stdNormal.CDF(x)
}

// NormPDF returns the standard normal probability density function at x
func NormPDF(x float64) float64 {
	return stdNormal.Prob(x)
}

// NormQuantile returns the inverse CDF of the standard normal at p
func NormQuantile(p float64) float64 {
	return stdNormal.Quantile(p)
}

// NormCDFSlice writes NormCDF(x[i]) into dst[i]. dst and x must have equal
// length; elements are independent.
func NormCDFSlice(dst, x []float64) {
	for i, v := range x {
		dst[i] = stdNormal.CDF(v)
	}
}

// NormPDFSlice writes NormPDF(x[i]) into dst[i]
func NormPDFSlice(dst, x []float64) {
	for i, v := range x {
		dst[i] = stdNormal.Prob(v)
	}
}
