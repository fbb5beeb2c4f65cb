package models

import "math"

// OptionType identifies the side of an option contract
type OptionType uint8

const (
	// OptionTypeCall represents a call option
	OptionTypeCall OptionType = iota
	// OptionTypePut represents a put option
	OptionTypePut
)

// String returns a human-readable name for the option type
func (t OptionType) String() string {
	if t == OptionTypePut {
		return "put"
	}
	return "call"
}

// ParseOptionType parses an option type from its wire representation
func ParseOptionType(s string) (OptionType, bool) {
	switch s {
	case "call", "CALL", "c", "C":
		return OptionTypeCall, true
	case "put", "PUT", "p", "P":
		return OptionTypePut, true
	}
	return OptionTypeCall, false
}

// ModelKind identifies a pricing model variant. The set is closed: every
// dispatch site switches exhaustively over these four values.
type ModelKind uint8

const (
	// ModelBlackScholes is the Black-Scholes model with continuous dividend yield
	ModelBlackScholes ModelKind = iota
	// ModelBlack76 prices options on a forward; q is unused and r only discounts
	ModelBlack76
	// ModelMerton is the Merton jump-diffusion model
	ModelMerton
	// ModelAmerican is the American early-exercise model
	ModelAmerican
)

// String returns the wire name of the model
func (m ModelKind) String() string {
	switch m {
	case ModelBlack76:
		return "black76"
	case ModelMerton:
		return "merton"
	case ModelAmerican:
		return "american"
	default:
		return "black-scholes"
	}
}

// ParseModelKind parses a model selector from its wire representation
func ParseModelKind(s string) (ModelKind, bool) {
	switch s {
	case "black-scholes", "blackscholes", "bs":
		return ModelBlackScholes, true
	case "black76", "black-76", "b76":
		return ModelBlack76, true
	case "merton", "jump-diffusion":
		return ModelMerton, true
	case "american":
		return ModelAmerican, true
	}
	return ModelBlackScholes, false
}

// OptionParams holds the inputs for pricing a single option contract.
// S is the spot (or forward, for Black76), K the strike, T the time to
// maturity in years, R the continuously compounded risk-free rate, Q the
// dividend yield / cost of carry, Sigma the annualized volatility.
type OptionParams struct {
	S     float64
	K     float64
	T     float64
	R     float64
	Q     float64
	Sigma float64
	Type  OptionType
}

// InvalidField returns the name of the first domain constraint the
// parameters violate, or "" when all constraints hold. Constraints:
// s>0, k>0, t>=0, sigma>0, all fields finite.
func (p OptionParams) InvalidField() string {
	switch {
	case !(p.S > 0) || math.IsInf(p.S, 0):
		return "s"
	case !(p.K > 0) || math.IsInf(p.K, 0):
		return "k"
	case p.T < 0 || math.IsNaN(p.T) || math.IsInf(p.T, 0):
		return "t"
	case math.IsNaN(p.R) || math.IsInf(p.R, 0):
		return "r"
	case math.IsNaN(p.Q) || math.IsInf(p.Q, 0):
		return "q"
	case !(p.Sigma > 0) || math.IsInf(p.Sigma, 0):
		return "sigma"
	}
	return ""
}

// Greeks holds the first- and second-order sensitivities of an option price.
// All values are in natural units: delta per unit of spot, gamma per unit of
// spot squared, vega per unit of volatility, theta per year, rho per unit of
// rate.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// PricingResult is the outcome of pricing a single contract
type PricingResult struct {
	Price     float64 `json:"price"`
	Greeks    *Greeks `json:"greeks,omitempty"`
	Converged bool    `json:"converged"`
}

// ExerciseBoundary is the early-exercise trigger price solved for an
// American contract, together with the state of the free-boundary iteration.
type ExerciseBoundary struct {
	Price      float64
	Converged  bool
	Iterations int
}
