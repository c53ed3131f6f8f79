// Package audit pools small uapi.Package batch slices, the same
// size-bucketed sync.Pool idiom the teacher used for its I/O buffer pool,
// adapted from byte buffers to uapi.Package batches. The express and
// dispatcher paths allocate their own slices and do not use this pool.
package audit

import (
	"sync"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// bucket sizes chosen to cover the spec's 3-5 item express batch and
// modestly larger belt-drain batches without over-allocating.
var bucketSizes = []int{8, 16, 64}

type pool struct {
	size int
	pool sync.Pool
}

// BatchPool hands out []uapi.Package slices sized to the smallest bucket
// that fits a caller's request, and returns them to the right bucket on
// Put.
type BatchPool struct {
	buckets []*pool
}

// NewBatchPool builds a BatchPool with the default bucket sizes.
func NewBatchPool() *BatchPool {
	bp := &BatchPool{}
	for _, size := range bucketSizes {
		size := size
		bp.buckets = append(bp.buckets, &pool{
			size: size,
			pool: sync.Pool{New: func() any {
				return make([]uapi.Package, 0, size)
			}},
		})
	}
	return bp
}

// Get returns a zero-length slice with capacity >= want, reused from the
// smallest bucket that fits. Requests larger than the biggest bucket
// allocate directly and are never pooled.
func (bp *BatchPool) Get(want int) []uapi.Package {
	for _, b := range bp.buckets {
		if b.size >= want {
			return b.pool.Get().([]uapi.Package)[:0]
		}
	}
	return make([]uapi.Package, 0, want)
}

// Put returns batch to the bucket matching its capacity, if any; batches
// from an oversized request are simply dropped for GC to collect.
func (bp *BatchPool) Put(batch []uapi.Package) {
	c := cap(batch)
	for _, b := range bp.buckets {
		if b.size == c {
			b.pool.Put(batch[:0]) //nolint:staticcheck // reuse underlying array
			return
		}
	}
}
