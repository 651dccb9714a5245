// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"
)

// Arena is an interface that describes a memory allocation arena.
// It is the sentinel based surface: exhaustion is signalled with a nil pointer.
type Arena interface {
	// Alloc allocates memory of the given size and returns a pointer to it,
	// or nil when the arena cannot fit the request.
	// The alignment parameter specifies the alignment of the allocated memory.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Dealloc hands memory back to the arena. Bump arenas ignore it.
	Dealloc(ptr unsafe.Pointer, size uintptr)

	// Reset resets the arena's state without releasing the underlying memory.
	// After invoking this method any pointer previously returned by Alloc becomes immediately invalid.
	// The arena can be reused for new allocations.
	Reset()

	// Release releases the arena's underlying memory back to the system.
	// After invoking this method, the arena should not be used for further allocations.
	Release()

	// Len returns the total number of bytes currently allocated in the arena.
	Len() int

	// Cap returns the total capacity (maximum bytes) that can be allocated in the arena.
	Cap() int

	// Peak returns the peak number of bytes that have been allocated in the arena.
	// This value is not reset when Reset is called, allowing tracking of maximum usage.
	Peak() int
}

// Allocate allocates memory for a zero value of type T using the provided Arena.
// If the arena is nil, it allocates memory using Go's built-in new function.
// If the arena is exhausted, it returns nil.
func Allocate[T any](a Arena) *T {
	if a == nil {
		return new(T)
	}
	var x T
	return (*T)(a.Alloc(unsafe.Sizeof(x), unsafe.Alignof(x)))
}
