// SPDX-License-Identifier: Apache-2.0

package arena

// Vec is a growable sequence whose storage comes from an explicit Allocator.
// Growing copies the elements into a larger block; the old block is handed
// back with Deallocate, which bump allocators ignore.
type Vec[T any] struct {
	alloc Allocator
	items []T
}

// NewVec returns an empty Vec with room for capacity elements allocated from a.
func NewVec[T any](a Allocator, capacity int) (*Vec[T], error) {
	items, err := AllocateSlice[T](a, 0, capacity)
	if err != nil {
		return nil, err
	}
	return &Vec[T]{alloc: a, items: items}, nil
}

// Push appends x. On failure the Vec is unchanged.
func (v *Vec[T]) Push(x T) error {
	return v.Extend(x)
}

// Extend appends all of xs, or none of them on failure.
func (v *Vec[T]) Extend(xs ...T) error {
	items, err := SliceAppend(v.alloc, v.items, xs...)
	if err != nil {
		return err
	}
	v.items = items
	return nil
}

// At returns the element at index i. It panics if i is out of range.
func (v *Vec[T]) At(i int) T {
	return v.items[i]
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int {
	return len(v.items)
}

// Cap returns the number of elements the current block can hold.
func (v *Vec[T]) Cap() int {
	return cap(v.items)
}

// Slice returns the elements. The slice aliases the Vec storage and is
// valid until the next Push or Extend that grows the Vec.
func (v *Vec[T]) Slice() []T {
	return v.items
}
