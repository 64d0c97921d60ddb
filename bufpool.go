package speedy

import "sync"

const chunkSize = 32 * 1024

// scratchPool reuses staging buffers for bulk numeric-slice encoding and for
// chunked stream reads. This reduces GC pressure by avoiding an allocation
// per variable-length field.
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, chunkSize)
		return &b
	},
}

func getScratch(n int) (*[]byte, []byte) {
	p := scratchPool.Get().(*[]byte)
	if cap(*p) < n {
		*p = make([]byte, n)
	}
	return p, (*p)[:n]
}

func putScratch(p *[]byte) {
	scratchPool.Put(p)
}
