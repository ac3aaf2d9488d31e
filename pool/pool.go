// Package pool implements the shared allocator for transient numeric
// buffers. Capacity is a fixed byte budget handed out in block-granular
// chunks; allocate and free are safe to call from parallel regions.
package pool

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"fock/linalg"
)

const (
	// DefaultBudget is 256 MB, DefaultBlock a 2 KB block granularity.
	DefaultBudget = 256e6
	DefaultBlock  = 2048
)

type Pool struct {
	mu    sync.Mutex
	free  int64
	block int64
}

// New creates a pool with the given byte budget and block size. Non-positive
// arguments fall back to the defaults.
func New(budget, block int64) *Pool {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if block <= 0 {
		block = DefaultBlock
	}
	return &Pool{free: budget, block: block}
}

// Free reports the remaining capacity in bytes.
func (p *Pool) Free() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.free
}

// Alloc hands out a zeroed buffer of n scalars, charging the pool a
// block-rounded byte count. Exhaustion is fatal for the enclosing
// calculation; the error reports both sides of the failed charge.
func Alloc[T linalg.Scalar](p *Pool, n int) ([]T, error) {
	need := p.charge(int64(n) * int64(unsafe.Sizeof(*new(T))))

	p.mu.Lock()
	defer p.mu.Unlock()
	if need > p.free {
		return nil, errors.Errorf("pool exhausted: need %d bytes, %d free", need, p.free)
	}
	p.free -= need
	return make([]T, n), nil
}

// Release returns a buffer's capacity to the pool. Buffers must be released
// exactly once, on every exit path of the routine that allocated them.
func Release[T linalg.Scalar](p *Pool, buf []T) {
	back := p.charge(int64(cap(buf)) * int64(unsafe.Sizeof(*new(T))))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.free += back
}

func (p *Pool) charge(bytes int64) int64 {
	blocks := (bytes + p.block - 1) / p.block
	return blocks * p.block
}
