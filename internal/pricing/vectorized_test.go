package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/option-engine/pkg/models"
)

func randomBatch(n int, seed int64) *models.BatchInput {
	rng := rand.New(rand.NewSource(seed))
	in := &models.BatchInput{
		S:     make([]float64, n),
		K:     make([]float64, n),
		T:     make([]float64, n),
		R:     make([]float64, n),
		Q:     make([]float64, n),
		Sigma: make([]float64, n),
		Types: make([]models.OptionType, n),
	}
	for i := 0; i < n; i++ {
		in.S[i] = 50 + 100*rng.Float64()
		in.K[i] = 50 + 100*rng.Float64()
		in.T[i] = 0.05 + 2*rng.Float64()
		in.R[i] = -0.01 + 0.1*rng.Float64()
		in.Q[i] = 0.05 * rng.Float64()
		in.Sigma[i] = 0.05 + 0.7*rng.Float64()
		in.Types[i] = models.OptionType(rng.Intn(2))
	}
	return in
}

func TestBlackScholesColumnsMatchScalarBitwise(t *testing.T) {
	bs := NewBlackScholes()
	in := randomBatch(500, 1)

	out := make([]float64, in.Len())
	bs.PriceColumns(in, out)

	for i := 0; i < in.Len(); i++ {
		want, _ := bs.Price(in.Row(i))
		require.Equal(t, want, out[i], "row %d", i)
	}
}

func TestBlack76ColumnsMatchScalarBitwise(t *testing.T) {
	b := NewBlack76()
	in := randomBatch(500, 2)
	for i := range in.Q {
		in.Q[i] = 0
	}

	out := make([]float64, in.Len())
	b.PriceColumns(in, out)

	for i := 0; i < in.Len(); i++ {
		want, _ := b.Price(in.Row(i))
		require.Equal(t, want, out[i], "row %d", i)
	}
}

func TestColumnsHandleDegenerateRows(t *testing.T) {
	bs := NewBlackScholes()
	in := randomBatch(8, 3)
	in.Sigma[3] = 1e-14
	in.Sigma[6] = 1e-14

	out := make([]float64, in.Len())
	bs.PriceColumns(in, out)

	for _, i := range []int{3, 6} {
		assert.Equal(t, discountedIntrinsic(in.Row(i)), out[i])
	}
}

func TestColumnsUniformTypeColumn(t *testing.T) {
	bs := NewBlackScholes()
	in := randomBatch(64, 4)
	in.Types = []models.OptionType{models.OptionTypePut}

	out := make([]float64, in.Len())
	bs.PriceColumns(in, out)

	for i := 0; i < in.Len(); i++ {
		want, _ := bs.Price(in.Row(i))
		require.Equal(t, want, out[i], "row %d", i)
	}
}
