package models

import (
	"github.com/quantkit/option-engine/pkg/utils/errors"
)

// PriceBatchRequest is the wire form of a pricing batch, shared by the HTTP
// API and the Kafka worker. R and Q may be omitted and default to zero.
type PriceBatchRequest struct {
	ID     string    `json:"id,omitempty"`
	Model  string    `json:"model"`
	Greeks bool      `json:"greeks"`
	S      []float64 `json:"s" binding:"required"`
	K      []float64 `json:"k" binding:"required"`
	T      []float64 `json:"t" binding:"required"`
	R      []float64 `json:"r"`
	Q      []float64 `json:"q"`
	Sigma  []float64 `json:"sigma" binding:"required"`
	Types  []string  `json:"types" binding:"required"`
}

// ToBatchInput converts the wire form into the engine's columnar input
func (r *PriceBatchRequest) ToBatchInput() (ModelKind, *BatchInput, error) {
	kind, ok := ParseModelKind(r.Model)
	if !ok {
		return 0, nil, errors.Validationf("model", -1, "unknown model %q", r.Model)
	}
	types, err := parseTypes(r.Types)
	if err != nil {
		return 0, nil, err
	}
	n := len(r.S)
	return kind, &BatchInput{
		S:     r.S,
		K:     r.K,
		T:     r.T,
		R:     defaultColumn(r.R, n),
		Q:     defaultColumn(r.Q, n),
		Sigma: r.Sigma,
		Types: types,
	}, nil
}

// PriceBatchResponse pairs a batch result with the request ID for
// correlation on async transports
type PriceBatchResponse struct {
	ID     string       `json:"id,omitempty"`
	Model  string       `json:"model"`
	Result *BatchResult `json:"result"`
}

// IVBatchRequest is the wire form of an implied-volatility batch
type IVBatchRequest struct {
	ID    string    `json:"id,omitempty"`
	Model string    `json:"model"`
	Price []float64 `json:"price" binding:"required"`
	S     []float64 `json:"s" binding:"required"`
	K     []float64 `json:"k" binding:"required"`
	T     []float64 `json:"t" binding:"required"`
	R     []float64 `json:"r"`
	Q     []float64 `json:"q"`
	Types []string  `json:"types" binding:"required"`
}

// ToBatchInput converts the wire form into the solver's columnar input
func (r *IVBatchRequest) ToBatchInput() (ModelKind, *IVBatchInput, error) {
	kind, ok := ParseModelKind(r.Model)
	if !ok {
		return 0, nil, errors.Validationf("model", -1, "unknown model %q", r.Model)
	}
	types, err := parseTypes(r.Types)
	if err != nil {
		return 0, nil, err
	}
	n := len(r.Price)
	return kind, &IVBatchInput{
		Price: r.Price,
		S:     r.S,
		K:     r.K,
		T:     r.T,
		R:     defaultColumn(r.R, n),
		Q:     defaultColumn(r.Q, n),
		Types: types,
	}, nil
}

// IVBatchResponse pairs a solver result with the request ID
type IVBatchResponse struct {
	ID     string         `json:"id,omitempty"`
	Model  string         `json:"model"`
	Result *IVBatchResult `json:"result"`
}

func parseTypes(raw []string) ([]OptionType, error) {
	types := make([]OptionType, len(raw))
	for i, s := range raw {
		t, ok := ParseOptionType(s)
		if !ok {
			return nil, errors.Validationf("types", i, "unknown option type %q at row %d", s, i)
		}
		types[i] = t
	}
	return types, nil
}

func defaultColumn(col []float64, n int) []float64 {
	if col != nil {
		return col
	}
	return make([]float64, n)
}
