// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"

	"go.uber.org/atomic"
)

// The process-wide arena. It is built once, either by InitGlobal or lazily by the
// first allocation, and is never torn down.
var globalArena atomic.Pointer[FixedArena]

// InitGlobal builds the process-wide arena from cfg. It must be called before the
// first use of Alloc or Global, and fails with ErrGlobalInitialized afterwards.
// The guard is always GuardSpin regardless of cfg.Guard.
func InitGlobal(cfg Config) error {
	if globalArena.Load() != nil {
		return ErrGlobalInitialized
	}
	a, err := newGlobalArena(cfg)
	if err != nil {
		return err
	}
	if !globalArena.CompareAndSwap(nil, a) {
		_ = a.Close()
		return ErrGlobalInitialized
	}
	return nil
}

func newGlobalArena(cfg Config) (*FixedArena, error) {
	cfg.Guard = GuardSpin
	return NewFixedArenaFromConfig(cfg, nil)
}

// Global returns the process-wide arena, building it from DefaultConfig if
// InitGlobal was never called.
func Global() *FixedArena {
	if a := globalArena.Load(); a != nil {
		return a
	}
	a, err := newGlobalArena(DefaultConfig())
	if err != nil {
		// DefaultConfig reserves from the Go heap, which only fails on an invalid config.
		panic(err)
	}
	if !globalArena.CompareAndSwap(nil, a) {
		_ = a.Close()
	}
	return globalArena.Load()
}

// Alloc allocates size bytes aligned to alignment from the process-wide arena.
// It returns nil once the arena is exhausted; it never panics for lack of space.
// Callers should treat a nil result as fatal since the arena cannot grow.
func Alloc(size, alignment uintptr) unsafe.Pointer {
	return Global().Alloc(size, alignment)
}

// Dealloc is a no-op. Memory from the process-wide arena is never reclaimed.
func Dealloc(ptr unsafe.Pointer, size, _ uintptr) {
	Global().Dealloc(ptr, size)
}
