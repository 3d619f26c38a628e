package extprot

import "sync"

// Size-tiered buffer pools, grounded on the same size classes as the
// teacher's buffer pool: 64, 256, 1024, 4096, 16384, 65536 bytes. Used on
// the write side only, for the scratch buffer in which a composite's body
// is rendered so its byte length is known before its prefix is written.
// Reading a length-delimited payload into memory does not use the pool.
var bufferPools = [6]sync.Pool{
	{New: func() any { return make([]byte, 0, 64) }},
	{New: func() any { return make([]byte, 0, 256) }},
	{New: func() any { return make([]byte, 0, 1024) }},
	{New: func() any { return make([]byte, 0, 4096) }},
	{New: func() any { return make([]byte, 0, 16384) }},
	{New: func() any { return make([]byte, 0, 65536) }},
}

var bufferSizes = [6]int{64, 256, 1024, 4096, 16384, 65536}

func poolIndex(size int) int {
	for i, s := range bufferSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// getBuffer returns a zero-length buffer with at least sizeHint capacity,
// drawn from the pool when sizeHint fits a size class.
func getBuffer(sizeHint int) []byte {
	idx := poolIndex(sizeHint)
	if idx < 0 {
		return make([]byte, 0, sizeHint)
	}
	buf := bufferPools[idx].Get().([]byte)
	return buf[:0]
}

// putBuffer returns buf to the pool matching its capacity. Buffers larger
// than the biggest size class are left for the garbage collector.
func putBuffer(buf []byte) {
	idx := poolIndex(cap(buf))
	if idx >= 0 {
		bufferPools[idx].Put(buf[:0]) //nolint:staticcheck // reused as []byte, not a pointer
	}
}
