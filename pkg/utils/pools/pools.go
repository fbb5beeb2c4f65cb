// Package pools provides sync.Pool wrappers for the scratch buffers the
// columnar pricing path allocates per batch.
package pools

import (
	"sync"
)

// Float64SlicePool is a pool of float64 slices
type Float64SlicePool struct {
	pool sync.Pool
	size int
}

// NewFloat64SlicePool creates a pool whose fresh slices carry the given
// capacity
func NewFloat64SlicePool(size int) *Float64SlicePool {
	return &Float64SlicePool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, size)
			},
		},
		size: size,
	}
}

// Get retrieves a slice of length n. Contents are unspecified; callers
// overwrite every element before reading.
func (p *Float64SlicePool) Get(n int) []float64 {
	s := p.pool.Get().([]float64)
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

// Put returns a slice to the pool
func (p *Float64SlicePool) Put(f []float64) {
	if cap(f) >= p.size {
		p.pool.Put(f[:0])
	}
	// undersized slices are left to the GC
}
