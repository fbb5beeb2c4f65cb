package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/quantkit/option-engine/internal/pricing"
	"github.com/quantkit/option-engine/pkg/metrics"
	"github.com/quantkit/option-engine/pkg/models"
	"github.com/quantkit/option-engine/pkg/utils/errors"
	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// ProcessingMode is the batch execution strategy
type ProcessingMode uint8

const (
	// Sequential prices rows one by one on the calling goroutine
	Sequential ProcessingMode = iota
	// VectorizedUniform prices the whole batch column-wise in one pass
	VectorizedUniform
	// MultiThreadedChunked fans disjoint chunks out over the worker pool
	MultiThreadedChunked
)

// String returns the wire name of the mode
func (m ProcessingMode) String() string {
	switch m {
	case VectorizedUniform:
		return "vectorized"
	case MultiThreadedChunked:
		return "chunked"
	default:
		return "sequential"
	}
}

// Config holds the orchestration and solver tuning knobs
type Config struct {
	Workers             int
	ChunkSize           int
	SequentialThreshold int
	VectorizedThreshold int

	GreekBump float64

	MertonLambda   float64
	MertonMeanJump float64
	MertonJumpVol  float64

	AmericanTol     float64
	AmericanMaxIter int

	IVMaxIter int
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Workers:             runtime.NumCPU(),
		ChunkSize:           1024,
		SequentialThreshold: 64,
		VectorizedThreshold: 8192,
		GreekBump:           1e-4,
		MertonLambda:        0.1,
		MertonMeanJump:      -0.05,
		MertonJumpVol:       0.15,
		AmericanTol:         1e-6,
		AmericanMaxIter:     100,
		IVMaxIter:           50,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.SequentialThreshold <= 0 {
		c.SequentialThreshold = d.SequentialThreshold
	}
	if c.VectorizedThreshold < c.SequentialThreshold {
		c.VectorizedThreshold = d.VectorizedThreshold
	}
	if c.GreekBump <= 0 {
		c.GreekBump = d.GreekBump
	}
}

// SelectMode picks the execution strategy for a batch of n rows. Uniform-cost
// kernels vectorize in the mid range; data-dependent kernels go straight
// from sequential to chunked because their per-row cost varies.
func SelectMode(n int, uniformCost bool, cfg Config) ProcessingMode {
	if n < cfg.SequentialThreshold {
		return Sequential
	}
	if !uniformCost || n >= cfg.VectorizedThreshold {
		return MultiThreadedChunked
	}
	return VectorizedUniform
}

// Engine prices batches. It is safe for concurrent use: kernels are
// stateless and every batch writes only its own result arrays.
type Engine struct {
	cfg     Config
	pool    *Pool
	kernels map[models.ModelKind]pricing.Kernel
	greeks  *pricing.GreeksCalculator
	iv      *pricing.IVSolver
	rec     *metrics.Recorder
	log     *logger.Logger
}

// New builds an engine on the shared worker pool. rec may be nil; metrics
// recording is then skipped.
func New(cfg Config, rec *metrics.Recorder) *Engine {
	cfg.normalize()

	iv := pricing.NewIVSolver()
	if cfg.IVMaxIter > 0 {
		iv.MaxIter = cfg.IVMaxIter
	}

	return &Engine{
		cfg:  cfg,
		pool: InitPool(cfg.Workers),
		kernels: map[models.ModelKind]pricing.Kernel{
			models.ModelBlackScholes: pricing.NewBlackScholes(),
			models.ModelBlack76:      pricing.NewBlack76(),
			models.ModelMerton: pricing.NewMerton(pricing.MertonParams{
				Lambda:   cfg.MertonLambda,
				MeanJump: cfg.MertonMeanJump,
				JumpVol:  cfg.MertonJumpVol,
			}),
			models.ModelAmerican: pricing.NewAmericanWith(cfg.AmericanTol, cfg.AmericanMaxIter),
		},
		greeks: pricing.NewGreeksCalculatorWith(cfg.GreekBump),
		iv:     iv,
		rec:    rec,
		log:    logger.GetLogger("engine"),
	}
}

// Kernel returns the pricing kernel for a model kind
func (e *Engine) Kernel(kind models.ModelKind) (pricing.Kernel, bool) {
	k, ok := e.kernels[kind]
	return k, ok
}

// PriceBatch prices every row of the batch under the given model, with
// Greeks when requested. Row results are index-aligned with the input;
// non-converged rows are flagged, never dropped.
func (e *Engine) PriceBatch(ctx context.Context, kind models.ModelKind, in *models.BatchInput, withGreeks bool) (*models.BatchResult, error) {
	k, ok := e.kernels[kind]
	if !ok {
		return nil, errors.Unsupported("unknown model " + kind.String())
	}
	if err := validatePriceBatch(in); err != nil {
		e.recordRejection(err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	n := in.Len()
	mode := SelectMode(n, k.UniformCost(), e.cfg)

	// the vectorized path additionally needs a columnar implementation and
	// has no columnar Greeks, so those batches fall back to chunked
	ck, columnar := k.(pricing.ColumnKernel)
	if mode == VectorizedUniform && (!columnar || withGreeks) {
		mode = MultiThreadedChunked
	}

	res := &models.BatchResult{
		Prices: make([]float64, n),
		Failed: make([]bool, n),
		Mode:   mode.String(),
	}
	if withGreeks {
		res.Delta = make([]float64, n)
		res.Gamma = make([]float64, n)
		res.Vega = make([]float64, n)
		res.Theta = make([]float64, n)
		res.Rho = make([]float64, n)
	}

	switch mode {
	case Sequential:
		e.priceRange(k, in, res, 0, n, withGreeks)
	case VectorizedUniform:
		ck.PriceColumns(in, res.Prices)
	case MultiThreadedChunked:
		e.priceChunked(k, in, res, withGreeks)
	}

	for i := 0; i < n; i++ {
		if res.Failed[i] {
			res.FailureCount++
		}
	}

	e.recordBatch(kind.String(), mode.String(), n, res.FailureCount, time.Since(start))
	if res.FailureCount > 0 {
		e.log.Warnw("batch had non-converged rows",
			"model", kind.String(), "rows", n, "failures", res.FailureCount)
	}
	return res, nil
}

// priceRange prices rows [lo, hi) into the result arrays
func (e *Engine) priceRange(k pricing.Kernel, in *models.BatchInput, res *models.BatchResult, lo, hi int, withGreeks bool) {
	for i := lo; i < hi; i++ {
		p := in.Row(i)
		price, conv := k.Price(p)
		res.Prices[i] = price
		if !conv {
			res.Failed[i] = true
		}
		if withGreeks {
			g, gconv := e.greeks.Compute(k, p)
			if !gconv {
				res.Failed[i] = true
			}
			res.Delta[i] = g.Delta
			res.Gamma[i] = g.Gamma
			res.Vega[i] = g.Vega
			res.Theta[i] = g.Theta
			res.Rho[i] = g.Rho
		}
	}
}

// priceChunked fans disjoint chunks out over the shared pool. Each chunk
// writes only its own index range, so no synchronization beyond the join is
// needed.
func (e *Engine) priceChunked(k pricing.Kernel, in *models.BatchInput, res *models.BatchResult, withGreeks bool) {
	n := in.Len()
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += e.cfg.ChunkSize {
		hi := lo + e.cfg.ChunkSize
		if hi > n {
			hi = n
		}
		wg.Add(1)
		lo, hi := lo, hi
		e.pool.Submit(func() {
			defer wg.Done()
			e.priceRange(k, in, res, lo, hi, withGreeks)
		})
	}
	wg.Wait()
}

// ImpliedVolBatch recovers the volatility for each target price under the
// given model. Rows whose price is unattainable or whose solve fails carry
// NaN and a failure flag; the batch itself still succeeds.
func (e *Engine) ImpliedVolBatch(ctx context.Context, kind models.ModelKind, in *models.IVBatchInput) (*models.IVBatchResult, error) {
	k, ok := e.kernels[kind]
	if !ok {
		return nil, errors.Unsupported("unknown model " + kind.String())
	}
	if err := validateIVBatch(in); err != nil {
		e.recordRejection(err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	n := in.Len()

	// root-finding is never uniform-cost, so the choice is sequential or
	// chunked only
	mode := Sequential
	if n >= e.cfg.SequentialThreshold {
		mode = MultiThreadedChunked
	}

	res := &models.IVBatchResult{
		Sigma:  make([]float64, n),
		Failed: make([]bool, n),
		Mode:   mode.String(),
	}

	solveRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			sigma, conv := e.iv.Solve(k, in.Price[i], in.Row(i))
			res.Sigma[i] = sigma
			if !conv {
				res.Failed[i] = true
			}
		}
	}

	if mode == Sequential {
		solveRange(0, n)
	} else {
		var wg sync.WaitGroup
		for lo := 0; lo < n; lo += e.cfg.ChunkSize {
			hi := lo + e.cfg.ChunkSize
			if hi > n {
				hi = n
			}
			wg.Add(1)
			lo, hi := lo, hi
			e.pool.Submit(func() {
				defer wg.Done()
				solveRange(lo, hi)
			})
		}
		wg.Wait()
	}

	for i := 0; i < n; i++ {
		if res.Failed[i] {
			res.FailureCount++
		}
	}

	e.recordBatch("iv-"+kind.String(), mode.String(), n, res.FailureCount, time.Since(start))
	return res, nil
}

func (e *Engine) recordBatch(model, mode string, rows, failures int, latency time.Duration) {
	if e.rec == nil {
		return
	}
	e.rec.RecordBatch(model, mode, rows, failures, latency)
}

func (e *Engine) recordRejection(err error) {
	if e.rec == nil {
		return
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		e.rec.RecordRejection(appErr.Field)
	}
}
