// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Backing selects where the buffer of a FixedArena is reserved.
type Backing string

const (
	// BackingHeap reserves the buffer as a single Go heap slab.
	BackingHeap Backing = "heap"
	// BackingMmap reserves the buffer as an anonymous private mapping outside the Go heap.
	// The garbage collector never scans it, so it must not hold the only reference to Go memory.
	BackingMmap Backing = "mmap"
)

// SupportedBackings lists every Backing accepted by Config.
var SupportedBackings = []Backing{BackingHeap, BackingMmap}

// reservation is a buffer of at least capacity bytes whose base is aligned to align.
type reservation struct {
	base    unsafe.Pointer
	slab    []byte
	release func() error
	freed   atomic.Bool
}

// free returns the buffer to its backing. Only the first call has an effect,
// a mapping must never be unmapped twice.
func (r *reservation) free() error {
	if !r.freed.CompareAndSwap(false, true) {
		return nil
	}
	r.slab = nil
	return r.release()
}

func reserve(b Backing, capacity, align uintptr) (*reservation, error) {
	// The slab is over-sized by align so that an aligned base always exists,
	// and so that base stays a valid address even for a zero capacity.
	if capacity > math.MaxInt-align {
		return nil, ErrInvalidCapacity
	}
	size := int(capacity + align)

	switch b {
	case BackingHeap:
		slab := make([]byte, size)
		return newReservation(slab, align, func() error { return nil }), nil
	case BackingMmap:
		if capacity == 0 {
			return nil, ErrInvalidCapacity
		}
		slab, unmap, err := mapAnon(size)
		if err != nil {
			return nil, errors.Wrapf(err, "map %d bytes", size)
		}
		return newReservation(slab, align, unmap), nil
	default:
		return nil, errUnsupportedBacking
	}
}

func newReservation(slab []byte, align uintptr, release func() error) *reservation {
	p := unsafe.Pointer(unsafe.SliceData(slab))
	aligned, _ := alignUp(uintptr(p), align)
	return &reservation{
		base:    unsafe.Add(p, aligned-uintptr(p)),
		slab:    slab,
		release: release,
	}
}
