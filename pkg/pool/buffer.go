package pool

import (
	"sync"
)

// BufferPool manages a pool of byte slices used as compression scratch
// buffers. Buffers are handed out with zero length and at least the
// requested capacity, so callers can append into them directly.
type BufferPool struct {
	size int       // Nominal capacity of each buffer.
	pool sync.Pool // Thread-safe pool of buffers.
}

// Creates a new buffer pool with a specified nominal buffer size.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, 0, size)
				return &buf
			},
		},
	}
}

// Retrieves a zero-length buffer with capacity of at least minCap.
func (bp *BufferPool) Get(minCap int) []byte {
	buf := (*bp.pool.Get().(*[]byte))[:0]
	if cap(buf) < minCap {
		buf = make([]byte, 0, minCap)
	}
	return buf
}

// Returns a buffer to the pool.
func (bp *BufferPool) Put(buf []byte) {
	// Don't pool buffers that have grown too large.
	if cap(buf) > bp.size*2 {
		return
	}

	buf = buf[:0]
	bp.pool.Put(&buf)
}
