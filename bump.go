// SPDX-License-Identifier: Apache-2.0

package arena

// DefaultMaxAlign is the base alignment of an arena buffer unless configured otherwise.
// Any request aligned to a power of two up to this value is served from an aligned address.
const DefaultMaxAlign = 16

func isPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

// alignUp rounds off up to the next multiple of align, which must be a power of two.
// It reports false instead of wrapping around.
func alignUp(off, align uintptr) (uintptr, bool) {
	mask := align - 1
	if off > ^uintptr(0)-mask {
		return 0, false
	}
	return (off + mask) &^ mask, true
}

// nextRange returns the range [start, end) a request of size bytes would occupy
// when placed after offset, or false if it does not fit in capacity.
// The start is rounded up to align; the end is not padded.
func nextRange(offset, size, align, capacity uintptr) (start, end uintptr, ok bool) {
	start, ok = alignUp(offset, align)
	if !ok || start > capacity {
		return 0, 0, false
	}
	// capacity-start cannot underflow here, and comparing against it
	// avoids computing start+size for oversized requests.
	if size > capacity-start {
		return 0, 0, false
	}
	return start, start + size, true
}
