// Package pools provides size-class byte slice pooling for the scratch
// buffers used while framing containers and packing chapter contents.
package pools

import (
	"sync"
)

// Buffer size classes
const (
	HeaderSize   = 128     // container headers
	SectionSize  = 4096    // small chapters and their sections
	ContentsSize = 65536   // contents of typical chapters
	MaxPool      = 1 << 20 // larger buffers are left to the GC
)

// BytePool hands out zero-length slices with at least the requested capacity.
type BytePool struct {
	header   sync.Pool
	section  sync.Pool
	contents sync.Pool
	max      sync.Pool
}

func setSize(pool *sync.Pool, size int) {
	pool.New = func() any {
		b := make([]byte, 0, size)
		return &b
	}
}

// NewBytePool creates an empty pool.
func NewBytePool() *BytePool {
	p := &BytePool{}
	setSize(&p.header, HeaderSize)
	setSize(&p.section, SectionSize)
	setSize(&p.contents, ContentsSize)
	setSize(&p.max, MaxPool)
	return p
}

func (p *BytePool) class(size int) *sync.Pool {
	switch {
	case size <= HeaderSize:
		return &p.header
	case size <= SectionSize:
		return &p.section
	case size <= ContentsSize:
		return &p.contents
	case size <= MaxPool:
		return &p.max
	default:
		return nil
	}
}

// Get returns a slice with length 0 and capacity of at least size.
func (p *BytePool) Get(size int) []byte {
	pool := p.class(size)
	if pool == nil {
		return make([]byte, 0, size)
	}
	bp, ok := pool.Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, size)
	}
	return (*bp)[:0]
}

// Put returns b to the pool. Slices are filed under the largest class their
// capacity satisfies, so Get never sees a slice smaller than its class.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	var pool *sync.Pool
	switch {
	case c > MaxPool:
		return
	case c == MaxPool:
		pool = &p.max
	case c >= ContentsSize:
		pool = &p.contents
	case c >= SectionSize:
		pool = &p.section
	case c >= HeaderSize:
		pool = &p.header
	default:
		return
	}
	b = b[:0]
	pool.Put(&b)
}

var defaultBytePool = NewBytePool()

// GetBytes returns a slice from the default pool.
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// PutBytes returns a slice to the default pool.
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}
