// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// Layout describes the size and alignment of a memory request.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// LayoutOf returns the layout of a single value of type T.
func LayoutOf[T any]() Layout {
	var x T
	return Layout{Size: unsafe.Sizeof(x), Align: unsafe.Alignof(x)}
}

// ArrayLayout returns the layout of n consecutive values of type T.
// It fails with ErrOutOfMemory if n is negative or the total size overflows.
func ArrayLayout[T any](n int) (Layout, error) {
	l := LayoutOf[T]()
	if n < 0 || (l.Size != 0 && uintptr(n) > math.MaxInt/l.Size) {
		return Layout{}, errors.Wrapf(ErrOutOfMemory, "array of %d elements of size %d", n, l.Size)
	}
	l.Size *= uintptr(n)
	return l, nil
}

// Block is a region granted by an Allocator.
type Block struct {
	Ptr unsafe.Pointer
	Len uintptr // granted size, never smaller than the requested size
}

// Bytes returns the block as a byte slice. It returns nil for an empty block.
func (b Block) Bytes() []byte {
	if b.Len == 0 || b.Ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(b.Ptr), b.Len)
}

// Allocator is the error based surface, passed explicitly to containers
// such as Vec and Buffer.
type Allocator interface {
	// Allocate returns a block satisfying l, or an error wrapping ErrOutOfMemory.
	Allocate(l Layout) (Block, error)
	// Deallocate hands a block back. Bump allocators ignore it.
	Deallocate(ptr unsafe.Pointer, l Layout)
}

// Handle is a scoped Allocator backed by a FixedArena.
type Handle struct {
	arena *FixedArena
}

var _ Allocator = (*Handle)(nil)

// NewHandle reserves a mutex guarded arena of capacity bytes and returns a handle to it.
// Options are applied after the default guard, so WithGuard overrides it.
func NewHandle(capacity int, opts ...FixedArenaOption) (*Handle, error) {
	a, err := NewFixedArena(capacity, append([]FixedArenaOption{WithGuard(GuardMutex)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Handle{arena: a}, nil
}

// HandleOf returns a handle allocating from an existing arena.
func HandleOf(a *FixedArena) *Handle {
	return &Handle{arena: a}
}

// Allocate satisfies the Allocator interface. The granted length equals l.Size.
func (h *Handle) Allocate(l Layout) (Block, error) {
	ptr, err := h.arena.TryAlloc(l.Size, l.Align)
	if err != nil {
		return Block{}, errors.Wrapf(err, "allocate %d bytes aligned to %d", l.Size, l.Align)
	}
	return Block{Ptr: ptr, Len: l.Size}, nil
}

// Deallocate satisfies the Allocator interface. It is a no-op.
func (h *Handle) Deallocate(ptr unsafe.Pointer, l Layout) {
	h.arena.Dealloc(ptr, l.Size)
}

// Arena returns the arena behind the handle.
func (h *Handle) Arena() *FixedArena {
	return h.arena
}

// Release releases the arena behind the handle. Nothing allocated through it may be used afterwards.
func (h *Handle) Release() error {
	return h.arena.Close()
}
