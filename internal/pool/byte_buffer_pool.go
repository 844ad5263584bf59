// Package pool provides pooled byte buffers for snapshot encoding.
package pool

import "sync"

const (
	// ImageBufferDefaultSize fits a header plus one uncompressed map image.
	ImageBufferDefaultSize = 1024 * 4 // 4KiB
	// ImageBufferMaxThreshold is the largest buffer returned to the pool.
	ImageBufferMaxThreshold = 1024 * 64 // 64KiB
)

type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Extend extends the buffer by n bytes, growing it if necessary, and returns
// the newly exposed region.
func (bb *ByteBuffer) Extend(n int) []byte {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]

	return bb.B[start : start+n]
}

// Grow ensures the buffer can hold n more bytes without reallocating.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+max(n, ImageBufferDefaultSize))
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool is a pool of ByteBuffers. Buffers that grew beyond
// maxThreshold are dropped instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var imageDefaultPool = NewByteBufferPool(ImageBufferDefaultSize, ImageBufferMaxThreshold)

// GetImageBuffer retrieves a ByteBuffer from the default image pool.
func GetImageBuffer() *ByteBuffer {
	return imageDefaultPool.Get()
}

// PutImageBuffer returns a ByteBuffer to the default image pool.
func PutImageBuffer(bb *ByteBuffer) {
	imageDefaultPool.Put(bb)
}
