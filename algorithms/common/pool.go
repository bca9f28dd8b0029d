package common

import (
	"sync"
)

// ComplexPool hands out zeroed []complex128 scratch buffers keyed by length.
// Time-domain conversion of thousands of elements in parallel would
// otherwise allocate one padded spectrum per element.
type ComplexPool struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// NewComplexPool creates an empty pool.
func NewComplexPool() *ComplexPool {
	return &ComplexPool{pools: make(map[int]*sync.Pool)}
}

func (p *ComplexPool) pool(n int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.pools[n]
	if !ok {
		sp = &sync.Pool{New: func() any {
			buf := make([]complex128, n)
			return &buf
		}}
		p.pools[n] = sp
	}
	return sp
}

// Get returns a zeroed buffer of length n.
func (p *ComplexPool) Get(n int) []complex128 {
	buf := *(p.pool(n).Get().(*[]complex128))
	clear(buf)
	return buf
}

// Put returns buf to the pool. The caller must not use buf afterwards.
func (p *ComplexPool) Put(buf []complex128) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:cap(buf)]
	p.pool(len(buf)).Put(&buf)
}
