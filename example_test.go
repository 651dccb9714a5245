// SPDX-License-Identifier: Apache-2.0

package arena_test

import (
	"fmt"

	arena "github.com/wundergraph/go-bump-arena"
)

func ExampleFixedArena() {
	a, err := arena.NewFixedArena(1024, arena.WithGuard(arena.GuardSpin))
	if err != nil {
		panic(err)
	}
	defer a.Release()

	for _, size := range []uintptr{10, 20, 5} {
		a.Alloc(size, 16)
		fmt.Println(a.Len())
	}
	// Output:
	// 10
	// 36
	// 53
}

func ExampleVec() {
	h, err := arena.NewHandle(1024)
	if err != nil {
		panic(err)
	}
	defer h.Release()

	v, err := arena.NewVec[uint8](h, 1)
	if err != nil {
		panic(err)
	}
	for i := 0; i < 5; i++ {
		if err := v.Push(uint8(i + 1)); err != nil {
			panic(err)
		}
	}
	fmt.Println(v.Slice(), h.Arena().Len())
	// Output: [1 2 3 4 5] 15
}

func ExampleCopySlice() {
	h, err := arena.NewHandle(64)
	if err != nil {
		panic(err)
	}
	defer h.Release()

	numbers, err := arena.CopySlice(h, []int{1, 2, 3, 4, 5})
	if err != nil {
		panic(err)
	}
	fmt.Println(numbers)
	// Output: [1 2 3 4 5]
}
