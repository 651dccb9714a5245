// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, x := range []uintptr{1, 2, 4, 8, 16, 4096, 1 << 40} {
		require.True(t, isPowerOfTwo(x), x)
	}
	for _, x := range []uintptr{0, 3, 6, 12, 4095, ^uintptr(0)} {
		require.False(t, isPowerOfTwo(x), x)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		off, align, want uintptr
	}{
		{0, 16, 0},
		{1, 16, 16},
		{10, 16, 16},
		{16, 16, 16},
		{36, 16, 48},
		{7, 1, 7},
		{9, 8, 16},
	}
	for _, tt := range tests {
		got, ok := alignUp(tt.off, tt.align)
		require.True(t, ok)
		require.Equal(t, tt.want, got, "alignUp(%d, %d)", tt.off, tt.align)
	}

	_, ok := alignUp(^uintptr(0)-2, 8)
	require.False(t, ok, "rounding past the top of the address space must not wrap")
}

func TestNextRange(t *testing.T) {
	start, end, ok := nextRange(10, 20, 16, 1024)
	require.True(t, ok)
	require.Equal(t, uintptr(16), start)
	require.Equal(t, uintptr(36), end)

	// Exact fit.
	start, end, ok = nextRange(1000, 24, 8, 1024)
	require.True(t, ok)
	require.Equal(t, uintptr(1000), start)
	require.Equal(t, uintptr(1024), end)

	// One byte too many.
	_, _, ok = nextRange(1000, 25, 8, 1024)
	require.False(t, ok)

	// Padding reaches the end, nothing is left for the request.
	_, _, ok = nextRange(1020, 1, 16, 1024)
	require.False(t, ok)

	// Padding alone exceeds the capacity.
	_, _, ok = nextRange(1020, 0, 16, 1023)
	require.False(t, ok)

	// Sizes that would overflow start+size.
	_, _, ok = nextRange(16, ^uintptr(0)-8, 16, 1024)
	require.False(t, ok)
	_, _, ok = nextRange(16, ^uintptr(0), 1, ^uintptr(0))
	require.False(t, ok)
}
