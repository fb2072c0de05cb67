package plugin

import (
	"sync/atomic"
	"unsafe"

	"github.com/opd-ai/wirekit/abi"
)

// liveBlocks counts state blocks handed out and not yet released. The
// teardown paths are balanced against it, which is how tests prove a
// failed construction or a torn-down handle left nothing claimed.
var liveBlocks atomic.Int64

// alignedBlock allocates a zeroed state block of the given size whose first
// byte sits on an abi.MaxAlign boundary. Object layouts are opaque to the
// host, so every block gets the maximal fundamental alignment. A size of
// zero still yields a valid, aligned, empty block: length zero but a real
// base pointer, kept by leaving one byte of capacity (SliceData is
// unspecified for zero-capacity slices).
func alignedBlock(size uint32) []byte {
	n := int(size)
	buf := make([]byte, n+abi.MaxAlign)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	off := int((abi.MaxAlign - addr%abi.MaxAlign) % abi.MaxAlign)
	liveBlocks.Add(1)
	if n == 0 {
		return buf[off : off : off+1]
	}
	return buf[off : off+n : off+n]
}

// releaseBlock returns a block to the allocator's accounting. The slice
// must not be used afterwards.
func releaseBlock(block []byte) {
	if block == nil {
		return
	}
	liveBlocks.Add(-1)
}

// blockAligned reports whether the block's data pointer honors the maximal
// alignment. Valid for empty blocks allocated by alignedBlock.
func blockAligned(block []byte) bool {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	return addr%abi.MaxAlign == 0
}
