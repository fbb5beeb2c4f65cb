package engine

import (
	"math"

	"github.com/quantkit/option-engine/pkg/models"
	"github.com/quantkit/option-engine/pkg/utils/errors"
)

// validatePriceBatch rejects a batch before any pricing work. The first
// violation wins; the error names the field and row.
func validatePriceBatch(in *models.BatchInput) error {
	n := in.Len()
	if n == 0 {
		return errors.Validation("empty batch")
	}
	if len(in.K) != n || len(in.T) != n || len(in.R) != n || len(in.Q) != n || len(in.Sigma) != n {
		return errors.Validation("parameter arrays have mismatched lengths")
	}
	if len(in.Types) != 1 && len(in.Types) != n {
		return errors.Validation("types must carry one entry or one per row")
	}
	for i := 0; i < n; i++ {
		p := in.Row(i)
		if field := p.InvalidField(); field != "" {
			return errors.Validationf(field, i, "invalid %s at row %d", field, i)
		}
	}
	return nil
}

// validateIVBatch applies the pricing checks minus sigma, plus the target
// price itself.
func validateIVBatch(in *models.IVBatchInput) error {
	n := in.Len()
	if n == 0 {
		return errors.Validation("empty batch")
	}
	if len(in.S) != n || len(in.K) != n || len(in.T) != n || len(in.R) != n || len(in.Q) != n {
		return errors.Validation("parameter arrays have mismatched lengths")
	}
	if len(in.Types) != 1 && len(in.Types) != n {
		return errors.Validation("types must carry one entry or one per row")
	}
	for i := 0; i < n; i++ {
		if price := in.Price[i]; !(price >= 0) || math.IsInf(price, 0) {
			return errors.Validationf("price", i, "invalid price at row %d", i)
		}
		p := in.Row(i)
		p.Sigma = 1 // placeholder so sigma checks pass; the solver owns sigma
		if field := p.InvalidField(); field != "" {
			return errors.Validationf(field, i, "invalid %s at row %d", field, i)
		}
	}
	return nil
}
