// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"
)

const growThreshold = 256

// AllocateSlice creates a slice of type T with a given length and capacity,
// using the provided Allocator for memory allocation.
// If the allocator is nil, it returns a slice using Go's built-in make function.
// It panics if len is negative or larger than cap, like make does.
func AllocateSlice[T any](a Allocator, len, cap int) ([]T, error) {
	if len < 0 || len > cap {
		panic("arena: slice len out of range")
	}
	if a == nil {
		return make([]T, len, cap), nil
	}
	l, err := ArrayLayout[T](cap)
	if err != nil {
		return nil, err
	}
	b, err := a.Allocate(l)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(b.Ptr), cap)[:len], nil
}

// CopySlice allocates a slice of len(src) elements from a and copies src into it.
func CopySlice[T any](a Allocator, src []T) ([]T, error) {
	dst, err := AllocateSlice[T](a, len(src), len(src))
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return dst, nil
}

// SliceAppend appends elements to a slice of type T using a provided Allocator
// for memory allocation if needed. When the allocator cannot grow the slice,
// s is returned unchanged together with the error.
func SliceAppend[T any](a Allocator, s []T, data ...T) ([]T, error) {
	if a == nil {
		return append(s, data...), nil
	}
	grown, err := growSlice(a, s, len(data))
	if err != nil {
		return s, err
	}
	return append(grown, data...), nil
}

// growSlice returns s, or a copy of s in a larger allocation, with room for dataLen more elements.
// The replaced backing array is handed back to the allocator.
func growSlice[T any](a Allocator, s []T, dataLen int) ([]T, error) {
	newLen := len(s) + dataLen
	newCap := cap(s)
	if newLen <= newCap {
		return s, nil
	}

	if newCap > 0 {
		for newLen > newCap {
			if newCap < growThreshold {
				newCap *= 2
			} else {
				newCap += newCap / 4
			}
		}
	} else {
		newCap = dataLen
	}

	s2, err := AllocateSlice[T](a, len(s), newCap)
	if err != nil {
		return nil, err
	}
	copy(s2, s)
	if a != nil && cap(s) > 0 {
		if l, err := ArrayLayout[T](cap(s)); err == nil {
			a.Deallocate(unsafe.Pointer(unsafe.SliceData(s)), l)
		}
	}
	return s2, nil
}
