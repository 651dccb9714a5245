// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// GuardKind selects how a FixedArena serializes concurrent allocations.
type GuardKind string

const (
	// GuardNone performs no synchronization. The arena must be used from one goroutine at a time.
	GuardNone GuardKind = "none"
	// GuardMutex serializes allocations with a sync.Mutex. Waiters may be parked.
	GuardMutex GuardKind = "mutex"
	// GuardSpin serializes allocations with a SpinLock. It never allocates,
	// which makes it the guard of the process-wide arena.
	GuardSpin GuardKind = "spin"
	// GuardLockFree commits allocations with a compare-and-swap loop on the offset.
	GuardLockFree GuardKind = "lockfree"
)

// SupportedGuards lists every GuardKind accepted by Config.
var SupportedGuards = []GuardKind{GuardNone, GuardMutex, GuardSpin, GuardLockFree}

// locker returns the lock protecting the offset for lock based guards,
// and nil for GuardNone and GuardLockFree.
func (g GuardKind) locker() (sync.Locker, error) {
	switch g {
	case GuardMutex:
		return &sync.Mutex{}, nil
	case GuardSpin:
		return &SpinLock{}, nil
	case GuardNone, GuardLockFree:
		return nil, nil
	default:
		return nil, errUnsupportedGuard
	}
}

// SpinLock is a sync.Locker acquired by busy waiting on a compare-and-swap flag.
// The zero value is unlocked. Lock and Unlock never allocate.
type SpinLock struct {
	locked atomic.Bool
}

// Lock spins until the lock is acquired, yielding the processor between attempts.
func (l *SpinLock) Lock() {
	for !l.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
func (l *SpinLock) TryLock() bool {
	return l.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking a free SpinLock is a no-op.
func (l *SpinLock) Unlock() {
	l.locked.Store(false)
}
