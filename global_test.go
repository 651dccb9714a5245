// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// withFreshGlobal runs the test against a process-wide arena that does not exist yet.
func withFreshGlobal(t *testing.T) {
	t.Helper()
	prev := globalArena.Swap(nil)
	t.Cleanup(func() {
		if a := globalArena.Swap(prev); a != nil {
			a.Release()
		}
	})
}

func TestGlobalLazyDefault(t *testing.T) {
	withFreshGlobal(t)

	ptr := Alloc(16, 16)
	require.NotNil(t, ptr)
	require.Zero(t, uintptr(ptr)%16)

	g := Global()
	require.Equal(t, GuardSpin, g.Guard())
	require.Equal(t, int(DefaultConfig().CapacityBytes), g.Cap())
	require.Equal(t, 16, g.Len())

	require.ErrorIs(t, InitGlobal(DefaultConfig()), ErrGlobalInitialized)
}

func TestInitGlobal(t *testing.T) {
	withFreshGlobal(t)

	cfg := DefaultConfig()
	cfg.CapacityBytes = 64
	cfg.Guard = GuardMutex
	require.NoError(t, InitGlobal(cfg))
	require.ErrorIs(t, InitGlobal(cfg), ErrGlobalInitialized)

	require.Equal(t, GuardSpin, Global().Guard(), "the process-wide arena always spins")
	require.Equal(t, 64, Global().Cap())

	require.NotNil(t, Alloc(60, 4))
	require.Nil(t, Alloc(8, 4), "exhaustion is reported with nil")
	Dealloc(nil, 8, 4)
	require.Equal(t, 60, Global().Len())
}

func TestInitGlobalInvalidConfig(t *testing.T) {
	withFreshGlobal(t)

	cfg := DefaultConfig()
	cfg.MaxAlignment = 12
	require.ErrorIs(t, InitGlobal(cfg), ErrInvalidAlignment)
	require.Nil(t, globalArena.Load())
}

func TestGlobalConcurrentFirstUse(t *testing.T) {
	withFreshGlobal(t)

	const goroutines = 16
	var wg sync.WaitGroup
	arenas := make([]*FixedArena, goroutines)
	wg.Add(goroutines)
	for i := range arenas {
		go func() {
			defer wg.Done()
			require.NotNil(t, Alloc(8, 8))
			arenas[i] = Global()
		}()
	}
	wg.Wait()

	for _, a := range arenas {
		require.Same(t, arenas[0], a)
	}
	require.Equal(t, goroutines*8, Global().Len())
}

func TestGlobalAllocate(t *testing.T) {
	withFreshGlobal(t)

	v := Allocate[[10]int](Global())
	require.NotNil(t, v)
	for i := range v {
		v[i] = i + 1
	}
	require.Equal(t, [10]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, *v)
}
