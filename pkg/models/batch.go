package models

// BatchInput carries equal-length parallel arrays of option parameters.
// Types holds either a single entry (uniform across the batch) or one entry
// per row.
type BatchInput struct {
	S     []float64
	K     []float64
	T     []float64
	R     []float64
	Q     []float64
	Sigma []float64
	Types []OptionType
}

// Len returns the number of rows in the batch
func (b *BatchInput) Len() int {
	return len(b.S)
}

// Uniform reports whether the batch carries a single option type for all rows
func (b *BatchInput) Uniform() bool {
	return len(b.Types) == 1
}

// TypeAt returns the option type for row i
func (b *BatchInput) TypeAt(i int) OptionType {
	if len(b.Types) == 1 {
		return b.Types[0]
	}
	return b.Types[i]
}

// Row materializes the parameters of row i
func (b *BatchInput) Row(i int) OptionParams {
	return OptionParams{
		S:     b.S[i],
		K:     b.K[i],
		T:     b.T[i],
		R:     b.R[i],
		Q:     b.Q[i],
		Sigma: b.Sigma[i],
		Type:  b.TypeAt(i),
	}
}

// BatchResult holds index-aligned outputs for a pricing batch. Greek arrays
// are nil unless Greeks were requested. Failed[i] marks rows whose solve did
// not converge; their price is the solver's best estimate.
type BatchResult struct {
	Prices       []float64 `json:"prices"`
	Delta        []float64 `json:"delta,omitempty"`
	Gamma        []float64 `json:"gamma,omitempty"`
	Vega         []float64 `json:"vega,omitempty"`
	Theta        []float64 `json:"theta,omitempty"`
	Rho          []float64 `json:"rho,omitempty"`
	Failed       []bool    `json:"failed"`
	FailureCount int       `json:"failure_count"`
	Mode         string    `json:"mode"`
}

// HasGreeks reports whether the result carries Greek arrays
func (r *BatchResult) HasGreeks() bool {
	return r.Delta != nil
}

// IVBatchInput carries target market prices plus the option parameters minus
// sigma, as equal-length parallel arrays.
type IVBatchInput struct {
	Price []float64
	S     []float64
	K     []float64
	T     []float64
	R     []float64
	Q     []float64
	Types []OptionType
}

// Len returns the number of rows in the batch
func (b *IVBatchInput) Len() int {
	return len(b.Price)
}

// TypeAt returns the option type for row i
func (b *IVBatchInput) TypeAt(i int) OptionType {
	if len(b.Types) == 1 {
		return b.Types[0]
	}
	return b.Types[i]
}

// Row materializes the parameters of row i. Sigma is left zero; the solver
// owns the volatility variable.
func (b *IVBatchInput) Row(i int) OptionParams {
	return OptionParams{
		S:    b.S[i],
		K:    b.K[i],
		T:    b.T[i],
		R:    b.R[i],
		Q:    b.Q[i],
		Type: b.TypeAt(i),
	}
}

// IVBatchResult holds the recovered volatilities. Failed rows carry NaN in
// Sigma and true in Failed; the batch itself still succeeds.
type IVBatchResult struct {
	Sigma        []float64 `json:"sigma"`
	Failed       []bool    `json:"failed"`
	FailureCount int       `json:"failure_count"`
	Mode         string    `json:"mode"`
}

// WireSafe returns a result whose NaN sentinels are replaced with zero.
// JSON cannot carry NaN; failed rows are already marked in Failed.
func (r *IVBatchResult) WireSafe() *IVBatchResult {
	if r.FailureCount == 0 {
		return r
	}
	out := *r
	out.Sigma = make([]float64, len(r.Sigma))
	copy(out.Sigma, r.Sigma)
	for i, failed := range r.Failed {
		if failed {
			out.Sigma[i] = 0
		}
	}
	return &out
}
