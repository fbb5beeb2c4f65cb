package pricing

import (
	"math"

	"github.com/quantkit/option-engine/internal/mathutil"
	"github.com/quantkit/option-engine/pkg/models"
	"github.com/quantkit/option-engine/pkg/utils/pools"
)

// scratchPool recycles the d1/d2 work arrays of the columnar path
var scratchPool = pools.NewFloat64SlicePool(8192)

// PriceColumns prices the batch column-wise. Every row evaluates the same
// expressions in the same order as the scalar Price, so the two paths agree
// bitwise.
func (bs BlackScholes) PriceColumns(in *models.BatchInput, out []float64) {
	n := in.Len()
	d1 := scratchPool.Get(n)
	d2 := scratchPool.Get(n)
	defer scratchPool.Put(d1)
	defer scratchPool.Put(d2)

	for i := 0; i < n; i++ {
		vt := in.Sigma[i] * math.Sqrt(in.T[i])
		if vt < minTotalVol {
			d1[i], d2[i] = 0, 0
			continue
		}
		a, b := dPair(in.S[i], in.K[i], in.T[i], in.R[i], in.Q[i], in.Sigma[i])
		// puts consume N(-d1), N(-d2); negate up front so a single CDF map
		// serves both payoffs
		if in.TypeAt(i) == models.OptionTypePut {
			a, b = -a, -b
		}
		d1[i], d2[i] = a, b
	}

	mathutil.NormCDFSlice(d1, d1)
	mathutil.NormCDFSlice(d2, d2)

	for i := 0; i < n; i++ {
		p := in.Row(i)
		if p.Sigma*math.Sqrt(p.T) < minTotalVol {
			out[i] = discountedIntrinsic(p)
			continue
		}
		df := math.Exp(-p.R * p.T)
		dq := math.Exp(-p.Q * p.T)
		if p.Type == models.OptionTypeCall {
			out[i] = p.S*dq*d1[i] - p.K*df*d2[i]
		} else {
			out[i] = p.K*df*d2[i] - p.S*dq*d1[i]
		}
	}
}

// PriceColumns prices the batch column-wise, mirroring the scalar Price
// expression ordering exactly.
func (b Black76) PriceColumns(in *models.BatchInput, out []float64) {
	n := in.Len()
	d1 := scratchPool.Get(n)
	d2 := scratchPool.Get(n)
	defer scratchPool.Put(d1)
	defer scratchPool.Put(d2)

	for i := 0; i < n; i++ {
		if in.Sigma[i]*math.Sqrt(in.T[i]) < minTotalVol {
			d1[i], d2[i] = 0, 0
			continue
		}
		a, bb := b76DPair(in.S[i], in.K[i], in.T[i], in.Sigma[i])
		if in.TypeAt(i) == models.OptionTypePut {
			a, bb = -a, -bb
		}
		d1[i], d2[i] = a, bb
	}

	mathutil.NormCDFSlice(d1, d1)
	mathutil.NormCDFSlice(d2, d2)

	for i := 0; i < n; i++ {
		p := in.Row(i)
		df := math.Exp(-p.R * p.T)
		if p.Sigma*math.Sqrt(p.T) < minTotalVol {
			if p.Type == models.OptionTypeCall {
				out[i] = df * math.Max(p.S-p.K, 0)
			} else {
				out[i] = df * math.Max(p.K-p.S, 0)
			}
			continue
		}
		if p.Type == models.OptionTypeCall {
			out[i] = df * (p.S*d1[i] - p.K*d2[i])
		} else {
			out[i] = df * (p.K*d2[i] - p.S*d1[i])
		}
	}
}
