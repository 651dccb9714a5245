// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpinLockMutualExclusion(t *testing.T) {
	var (
		l       SpinLock
		wg      sync.WaitGroup
		counter int
	)

	const goroutines, iterations = 8, 1000
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines*iterations, counter)
}

func TestSpinLockTryLock(t *testing.T) {
	var l SpinLock
	require.True(t, l.TryLock())
	require.False(t, l.TryLock())
	l.Unlock()
	require.True(t, l.TryLock())
	l.Unlock()
}

func TestSpinLockDoesNotAllocate(t *testing.T) {
	var l SpinLock
	allocs := testing.AllocsPerRun(100, func() {
		l.Lock()
		l.Unlock()
	})
	require.Zero(t, allocs)
}

func TestGuardKindLocker(t *testing.T) {
	tests := map[GuardKind]any{
		GuardMutex:    &sync.Mutex{},
		GuardSpin:     &SpinLock{},
		GuardNone:     nil,
		GuardLockFree: nil,
	}
	for g, want := range tests {
		l, err := g.locker()
		require.NoError(t, err)
		if want == nil {
			require.Nil(t, l, g)
		} else {
			require.IsType(t, want, l, g)
		}
	}

	_, err := GuardKind("rwmutex").locker()
	require.ErrorIs(t, err, errUnsupportedGuard)
}

func TestFixedArenaSpinGuardAllocDoesNotAllocate(t *testing.T) {
	a := newTestArena(t, 1<<20, WithGuard(GuardSpin))
	allocs := testing.AllocsPerRun(100, func() {
		a.Alloc(16, 8)
	})
	require.Zero(t, allocs)
}
